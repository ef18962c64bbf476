package engine

import (
	"fmt"
	"strings"

	"patra/internal/applicant"
	"patra/internal/ruleset"
	"patra/pkg/domain"
)

// ProvisionRule names the finding produced when a special-region applicant
// lacks an accepted certificate.
const ProvisionRule = "special_certificate_required"

// evaluateProvisions resolves the special land-documentation provisions.
// Applicants outside a special region are untouched. Inside one, the scheme's
// provision for that region decides which certificate types stand in for
// standard land records: holding an accepted one applies the provision,
// anything else is a failed conditional requirement.
func evaluateProvisions(rs *ruleset.RuleSet, facts *applicant.Facts) ([]string, []RuleFinding) {
	raw, _ := facts.Str(applicant.FactRegionSpecial)
	region, err := domain.ParseRegionSpecial(raw)
	if err != nil {
		return nil, []RuleFinding{{
			Rule:   ProvisionRule,
			Reason: fmt.Sprintf("unknown special region %q", raw),
		}}
	}
	if region == domain.RegionNone {
		return nil, nil
	}

	accepted := rs.AcceptedCertificates(region)
	if len(accepted) == 0 {
		// The scheme grants this region no special treatment; the standard
		// land-record requirements apply unchanged.
		return nil, nil
	}

	if held, _ := facts.Bool(applicant.FactHasSpecialCertificate); !held {
		return nil, []RuleFinding{{
			Rule: ProvisionRule,
			Reason: fmt.Sprintf("%s applicants must hold a land certificate, accepted types: %s",
				region, certificateList(accepted)),
		}}
	}

	certRaw, _ := facts.Str(applicant.FactCertificateType)
	for _, cert := range accepted {
		if certRaw == string(cert) {
			return []string{region.String()}, nil
		}
	}
	return nil, []RuleFinding{{
		Rule: ProvisionRule,
		Reason: fmt.Sprintf("certificate type %s is not accepted for %s, accepted types: %s",
			facts.Describe(applicant.FactCertificateType), region, certificateList(accepted)),
	}}
}

func certificateList(certs []domain.CertificateType) string {
	parts := make([]string, len(certs))
	for i, c := range certs {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}
