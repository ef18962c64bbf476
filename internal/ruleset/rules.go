// Package ruleset defines scheme eligibility rules as data.
//
// A RuleSet is a declarative document (YAML or JSON): field requirements,
// conditional requirements, exclusions, special provisions and a family rule.
// Everything a scheme decides lives in the document, not in code, so a scheme
// change is a document change. RuleSets are validated once at load time and
// never mutated afterwards; a validated RuleSet is safe to share across
// goroutines.
package ruleset

import (
	"fmt"
	"strings"

	"patra/internal/applicant"
	"patra/pkg/domain"
	dErrors "patra/pkg/domain-errors"
)

// FieldRequirement is an unconditional predicate group on one fact. Every
// applicant must satisfy every check of every requirement.
type FieldRequirement struct {
	Field  string  `yaml:"field" json:"field"`
	Label  string  `yaml:"label,omitempty" json:"label,omitempty"`
	Checks []Check `yaml:"checks" json:"checks"`
}

// ConditionalRequirement applies only when its trigger holds: when When is
// true, Require must also be true. An untriggered conditional is satisfied.
type ConditionalRequirement struct {
	Name    string    `yaml:"name" json:"name"`
	Label   string    `yaml:"label,omitempty" json:"label,omitempty"`
	When    Condition `yaml:"when" json:"when"`
	Require Condition `yaml:"require" json:"require"`
}

// ExclusionRule disqualifies an applicant when When holds, unless the
// optional Unless exemption also holds.
type ExclusionRule struct {
	Name   string     `yaml:"name" json:"name"`
	Label  string     `yaml:"label,omitempty" json:"label,omitempty"`
	When   Condition  `yaml:"when" json:"when"`
	Unless *Condition `yaml:"unless,omitempty" json:"unless,omitempty"`
}

// SpecialProvisionRule lists the certificate types a special region accepts
// in place of standard land records.
type SpecialProvisionRule struct {
	Region       domain.RegionSpecial     `yaml:"region" json:"region"`
	Certificates []domain.CertificateType `yaml:"certificates" json:"certificates"`
}

// FamilyRule configures the family-structure check. AdultAge is the age at
// which a declared child stops counting as a minor.
type FamilyRule struct {
	Enabled       bool `yaml:"enabled" json:"enabled"`
	RequireSpouse bool `yaml:"require_spouse" json:"require_spouse"`
	AdultAge      int  `yaml:"adult_age,omitempty" json:"adult_age,omitempty"`
}

// DefaultAdultAge applies when a family rule omits adult_age.
const DefaultAdultAge = 18

// RuleSet is the complete rule document for one scheme.
type RuleSet struct {
	SchemeCode   domain.SchemeCode        `yaml:"scheme_code" json:"scheme_code"`
	Name         string                   `yaml:"name,omitempty" json:"name,omitempty"`
	Version      string                   `yaml:"version" json:"version"`
	Requirements []FieldRequirement       `yaml:"requirements,omitempty" json:"requirements,omitempty"`
	Conditionals []ConditionalRequirement `yaml:"conditional_requirements,omitempty" json:"conditional_requirements,omitempty"`
	Exclusions   []ExclusionRule          `yaml:"exclusions,omitempty" json:"exclusions,omitempty"`
	Provisions   []SpecialProvisionRule   `yaml:"special_provisions,omitempty" json:"special_provisions,omitempty"`
	Family       FamilyRule               `yaml:"family,omitempty" json:"family,omitempty"`
}

// AcceptedCertificates returns the certificate types the given region accepts,
// or nil when the region has no provision.
func (rs *RuleSet) AcceptedCertificates(region domain.RegionSpecial) []domain.CertificateType {
	for _, p := range rs.Provisions {
		if p.Region == region {
			return p.Certificates
		}
	}
	return nil
}

// Validate checks the whole document. Any problem is a configuration error:
// a scheme with an invalid document must fail at load time, never during an
// evaluation. All problems are reported in one pass.
func (rs *RuleSet) Validate() error {
	var problems []string

	if _, err := domain.ParseSchemeCode(string(rs.SchemeCode)); err != nil {
		problems = append(problems, "scheme_code: "+dErrors.MessageOf(err))
	}
	if strings.TrimSpace(rs.Version) == "" {
		problems = append(problems, "version is required")
	}

	seenFields := make(map[string]bool)
	for i, req := range rs.Requirements {
		at := fmt.Sprintf("requirements[%d]", i)
		if req.Field == "" {
			problems = append(problems, at+": field is required")
			continue
		}
		if !applicant.IsKnownFact(req.Field) {
			problems = append(problems, fmt.Sprintf("%s: unknown field %q", at, req.Field))
			continue
		}
		if seenFields[req.Field] {
			problems = append(problems, fmt.Sprintf("%s: duplicate requirement for field %q", at, req.Field))
		}
		seenFields[req.Field] = true
		if len(req.Checks) == 0 {
			problems = append(problems, at+": at least one check is required")
		}
		for j, check := range req.Checks {
			problems = append(problems, validateCheck(fmt.Sprintf("%s.checks[%d]", at, j), req.Field, check)...)
		}
	}

	seenNames := make(map[string]bool)
	for i, cond := range rs.Conditionals {
		at := fmt.Sprintf("conditional_requirements[%d]", i)
		problems = append(problems, validateRuleName(at, cond.Name, seenNames)...)
		problems = append(problems, validateCondition(at+".when", cond.When)...)
		problems = append(problems, validateCondition(at+".require", cond.Require)...)
	}

	for i, excl := range rs.Exclusions {
		at := fmt.Sprintf("exclusions[%d]", i)
		problems = append(problems, validateRuleName(at, excl.Name, seenNames)...)
		problems = append(problems, validateCondition(at+".when", excl.When)...)
		if excl.Unless != nil {
			problems = append(problems, validateCondition(at+".unless", *excl.Unless)...)
		}
	}

	seenRegions := make(map[domain.RegionSpecial]bool)
	for i, prov := range rs.Provisions {
		at := fmt.Sprintf("special_provisions[%d]", i)
		if !prov.Region.IsValid() || prov.Region == domain.RegionNone {
			problems = append(problems, fmt.Sprintf("%s: invalid region %q", at, prov.Region))
		}
		if seenRegions[prov.Region] {
			problems = append(problems, fmt.Sprintf("%s: duplicate region %q", at, prov.Region))
		}
		seenRegions[prov.Region] = true
		if len(prov.Certificates) == 0 {
			problems = append(problems, at+": at least one certificate type is required")
		}
		for _, cert := range prov.Certificates {
			if !cert.IsValid() {
				problems = append(problems, fmt.Sprintf("%s: unknown certificate type %q", at, cert))
			}
		}
	}

	if rs.Family.Enabled && rs.Family.AdultAge < 0 {
		problems = append(problems, "family.adult_age cannot be negative")
	}

	if len(problems) > 0 {
		return dErrors.Newf(dErrors.CodeRulesetInvalid,
			"ruleset %q invalid: %s", rs.SchemeCode, strings.Join(problems, "; "))
	}
	return nil
}

func validateRuleName(at, name string, seen map[string]bool) []string {
	if strings.TrimSpace(name) == "" {
		return []string{at + ": name is required"}
	}
	if seen[name] {
		return []string{fmt.Sprintf("%s: duplicate rule name %q", at, name)}
	}
	seen[name] = true
	return nil
}

func validateCondition(at string, c Condition) []string {
	composite := len(c.All) > 0 || len(c.Any) > 0
	if composite {
		var problems []string
		if len(c.All) > 0 && len(c.Any) > 0 {
			problems = append(problems, at+": all and any are mutually exclusive")
		}
		if c.Field != "" || c.Op != "" {
			problems = append(problems, at+": composite condition cannot also name a field")
		}
		for i, sub := range c.All {
			problems = append(problems, validateCondition(fmt.Sprintf("%s.all[%d]", at, i), sub)...)
		}
		for i, sub := range c.Any {
			problems = append(problems, validateCondition(fmt.Sprintf("%s.any[%d]", at, i), sub)...)
		}
		return problems
	}

	if c.Field == "" {
		return []string{at + ": field is required"}
	}
	if !applicant.IsKnownFact(c.Field) {
		return []string{fmt.Sprintf("%s: unknown field %q", at, c.Field)}
	}
	return validateCheck(at, c.Field, Check{Op: c.Op, Value: c.Value, Values: c.Values})
}

func validateCheck(at, field string, check Check) []string {
	if !check.Op.IsValid() {
		return []string{fmt.Sprintf("%s: unknown operator %q", at, check.Op)}
	}

	factType := applicant.FactTypeOf(field)
	var problems []string

	switch check.Op {
	case OpNonEmpty:
		if check.Value != nil || len(check.Values) > 0 {
			problems = append(problems, at+": non_empty takes no operand")
		}

	case OpFormat:
		kind, ok := check.Value.(string)
		if !ok || !IsKnownFormat(kind) {
			problems = append(problems, fmt.Sprintf("%s: unknown format kind %v", at, check.Value))
		}
		if factType != applicant.TypeString {
			problems = append(problems, fmt.Sprintf("%s: format applies to string fields, %q is %s", at, field, factType))
		}

	case OpEq, OpNotEq:
		if check.Value == nil {
			problems = append(problems, at+": value is required")
			break
		}
		problems = append(problems, checkOperandType(at, field, factType, check.Value)...)

	case OpGt, OpGte, OpLt, OpLte:
		if check.Value == nil {
			problems = append(problems, at+": value is required")
			break
		}
		if _, isStr := check.Value.(string); isStr {
			if factType != applicant.TypeString {
				problems = append(problems, fmt.Sprintf("%s: string comparison on %s field %q", at, factType, field))
			}
			break
		}
		if _, isNum := asNumber(check.Value); !isNum {
			problems = append(problems, fmt.Sprintf("%s: ordering operand must be a number or string, got %T", at, check.Value))
			break
		}
		if factType != applicant.TypeNumber {
			problems = append(problems, fmt.Sprintf("%s: numeric comparison on %s field %q", at, factType, field))
		}

	case OpBetween:
		if len(check.Values) != 2 {
			problems = append(problems, at+": between requires exactly two values")
			break
		}
		for _, v := range check.Values {
			if _, ok := asNumber(v); !ok {
				problems = append(problems, fmt.Sprintf("%s: between bounds must be numbers, got %T", at, v))
			}
		}
		if factType != applicant.TypeNumber {
			problems = append(problems, fmt.Sprintf("%s: between applies to number fields, %q is %s", at, field, factType))
		}

	case OpIn, OpNotIn:
		if len(check.Values) == 0 {
			problems = append(problems, at+": values are required")
			break
		}
		for _, v := range check.Values {
			problems = append(problems, checkOperandType(at, field, factType, v)...)
		}
	}

	return problems
}

func checkOperandType(at, field, factType string, value any) []string {
	switch value.(type) {
	case bool:
		if factType != applicant.TypeBool {
			return []string{fmt.Sprintf("%s: boolean operand on %s field %q", at, factType, field)}
		}
	case string:
		if factType != applicant.TypeString {
			return []string{fmt.Sprintf("%s: string operand on %s field %q", at, factType, field)}
		}
	default:
		if _, ok := asNumber(value); !ok {
			return []string{fmt.Sprintf("%s: unsupported operand type %T", at, value)}
		}
		if factType != applicant.TypeNumber {
			return []string{fmt.Sprintf("%s: numeric operand on %s field %q", at, factType, field)}
		}
	}
	return nil
}
