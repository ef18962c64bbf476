// Package applicant holds the applicant snapshot the engine evaluates.
//
// A record arrives as JSON from the API or CLI, is normalized once into an
// immutable Facts view, and is never mutated afterwards. Bad field values are
// not parse errors here; they surface later as failed requirements so a single
// evaluation reports everything that is wrong.
package applicant

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Record is one applicant's data as submitted. Optional numeric fields are
// pointers so a missing value is distinguishable from zero.
type Record struct {
	// Identity
	Name          string `json:"name"`
	Age           *int   `json:"age"`
	Gender        string `json:"gender"`
	PhoneNumber   string `json:"phone_number"`
	AadhaarNumber string `json:"aadhaar_number"`

	// Location
	State            string `json:"state"`
	District         string `json:"district"`
	SubDistrictBlock string `json:"sub_district_block"`
	Village          string `json:"village"`
	Pincode          string `json:"pincode"`

	// Land
	LandSizeAcres        *float64 `json:"land_size_acres"`
	LandOwnership        string   `json:"land_ownership"`
	DateOfLandOwnership  string   `json:"date_of_land_ownership"`
	LandRecordsAvailable bool     `json:"land_records_available"`
	SurveyNumber         string   `json:"survey_number"`

	// Family
	FamilyMembers []FamilyMember `json:"family_members"`

	// Financial
	BankAccountNumber string   `json:"bank_account_number"`
	IFSCCode          string   `json:"ifsc_code"`
	AnnualIncome      *float64 `json:"annual_income"`
	Category          string   `json:"category"`

	// Employment and exclusion flags
	IsGovernmentEmployee    bool     `json:"is_government_employee"`
	GovernmentPost          string   `json:"government_post"`
	IsIncomeTaxPayer        bool     `json:"is_income_tax_payer"`
	IsProfessional          bool     `json:"is_professional"`
	Profession              string   `json:"profession"`
	IsPensioner             bool     `json:"is_pensioner"`
	MonthlyPension          *float64 `json:"monthly_pension"`
	IsNRI                   bool     `json:"is_nri"`
	HoldsConstitutionalPost bool     `json:"holds_constitutional_post"`
	HoldsPoliticalOffice    bool     `json:"holds_political_office"`

	// Special provisions
	RegionSpecial         string `json:"region_special"`
	HasSpecialCertificate bool   `json:"has_special_certificate"`
	CertificateType       string `json:"certificate_type"`
}

// FamilyMember is one entry of the applicant's declared family.
type FamilyMember struct {
	Name     string `json:"name"`
	Relation string `json:"relation"`
	Age      int    `json:"age"`
	Gender   string `json:"gender"`
}

// SubjectID returns the identifier audit records are keyed by: the Aadhaar
// number when present, otherwise name and phone. Callers hash it before it
// leaves the evaluation path.
func (r *Record) SubjectID() string {
	if aadhaar := strings.TrimSpace(r.AadhaarNumber); aadhaar != "" {
		return aadhaar
	}
	return strings.ToLower(strings.TrimSpace(r.Name)) + "|" + strings.TrimSpace(r.PhoneNumber)
}

// Fingerprint returns a stable digest of the full record. Two identical
// submissions share a fingerprint, which keys the decision cache.
func (r *Record) Fingerprint() string {
	data, err := json.Marshal(r)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
