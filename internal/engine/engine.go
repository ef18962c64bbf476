package engine

import (
	"time"

	"patra/internal/applicant"
	"patra/internal/ruleset"
)

// Evaluate runs every rule group of rs against the facts and assembles the
// decision. Groups never short-circuit each other: an applicant excluded on
// three grounds with two missing fields sees all five reasons.
func Evaluate(rs *ruleset.RuleSet, facts *applicant.Facts, now time.Time) *Decision {
	d := &Decision{
		SchemeCode:     rs.SchemeCode,
		RulesetVersion: rs.Version,
		EvaluatedAt:    now.UTC(),
	}

	d.FailedRequirements = evaluateRequirements(rs.Requirements, facts)
	d.FailedConditionals = evaluateConditionals(rs.Conditionals, facts)
	d.ActiveExclusions = evaluateExclusions(rs.Exclusions, facts)

	applied, provisionFindings := evaluateProvisions(rs, facts)
	d.AppliedProvisions = applied
	d.FailedConditionals = append(d.FailedConditionals, provisionFindings...)

	d.FamilyValid, d.FamilyDetail = evaluateFamily(rs.Family, facts.Members())

	d.Eligible = d.Clean()
	return d
}
