package domain

import (
	"strings"

	dErrors "patra/pkg/domain-errors"
)

// RegionSpecial marks applicants from regions with relaxed land-record
// documentation. Applicants outside these regions carry RegionNone.
type RegionSpecial string

const (
	RegionNone      RegionSpecial = "none"
	RegionNorthEast RegionSpecial = "north_east"
	RegionManipur   RegionSpecial = "manipur"
	RegionNagaland  RegionSpecial = "nagaland"
	RegionJharkhand RegionSpecial = "jharkhand"
)

var validRegions = map[RegionSpecial]bool{
	RegionNone:      true,
	RegionNorthEast: true,
	RegionManipur:   true,
	RegionNagaland:  true,
	RegionJharkhand: true,
}

// ParseRegionSpecial constructs a RegionSpecial from external input. An empty
// value means the applicant is not under any special provision (RegionNone).
func ParseRegionSpecial(s string) (RegionSpecial, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RegionNone, nil
	}
	r := RegionSpecial(s)
	if !r.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown special region %q", s)
	}
	return r, nil
}

// IsValid checks if the region is one of the supported enum values.
func (r RegionSpecial) IsValid() bool {
	return validRegions[r]
}

// String returns the string representation of the region.
func (r RegionSpecial) String() string {
	return string(r)
}

// CertificateType is a land-claim certificate accepted under a special
// provision. Which types a region accepts is rule data, not a property of the
// type itself.
type CertificateType string

const (
	CertificateVillageAuthority CertificateType = "village_authority_certificate"
	CertificateVillageChief     CertificateType = "village_chief_certificate"
	CertificateVillageCouncil   CertificateType = "village_council_certificate"
	CertificateVanshavali       CertificateType = "vanshavali_certificate"
	CertificateCommunityLand    CertificateType = "community_land_certificate"
)

var validCertificates = map[CertificateType]bool{
	CertificateVillageAuthority: true,
	CertificateVillageChief:     true,
	CertificateVillageCouncil:   true,
	CertificateVanshavali:       true,
	CertificateCommunityLand:    true,
}

// ParseCertificateType constructs a CertificateType from external input.
func ParseCertificateType(s string) (CertificateType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "certificate_type cannot be empty")
	}
	c := CertificateType(s)
	if !c.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown certificate type %q", s)
	}
	return c, nil
}

// IsValid checks if the certificate type is one of the supported enum values.
func (c CertificateType) IsValid() bool {
	return validCertificates[c]
}

// String returns the string representation of the certificate type.
func (c CertificateType) String() string {
	return string(c)
}
