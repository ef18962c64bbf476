package engine

import (
	"patra/internal/applicant"
	"patra/internal/ruleset"
)

// evaluateRequirements runs every check of every field requirement. A field
// absent from the fact snapshot fails once as missing; a present field fails
// once per check it does not satisfy.
func evaluateRequirements(reqs []ruleset.FieldRequirement, facts *applicant.Facts) []FieldFinding {
	var findings []FieldFinding
	for _, req := range reqs {
		if !facts.Has(req.Field) {
			findings = append(findings, FieldFinding{
				Field:  req.Field,
				Reason: "required value is missing",
			})
			continue
		}
		for _, check := range req.Checks {
			if check.Holds(req.Field, facts) {
				continue
			}
			findings = append(findings, FieldFinding{
				Field:  req.Field,
				Reason: reasonFor(req.Field, check, facts),
			})
		}
	}
	return findings
}
