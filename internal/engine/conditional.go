package engine

import (
	"patra/internal/applicant"
	"patra/internal/ruleset"
)

// evaluateConditionals checks every conditional requirement. A rule whose
// trigger does not hold is satisfied vacuously and leaves no trace in the
// decision. A triggered rule whose requirement fails produces one finding.
func evaluateConditionals(conds []ruleset.ConditionalRequirement, facts *applicant.Facts) []RuleFinding {
	var findings []RuleFinding
	for _, cond := range conds {
		if !cond.When.Holds(facts) {
			continue
		}
		if cond.Require.Holds(facts) {
			continue
		}
		findings = append(findings, RuleFinding{
			Rule:   cond.Name,
			Reason: conditionalReason(cond, facts),
		})
	}
	return findings
}

func conditionalReason(cond ruleset.ConditionalRequirement, facts *applicant.Facts) string {
	if reason, ok := leafReason(cond.Require, facts); ok {
		return reason
	}
	if cond.Label != "" {
		return cond.Label
	}
	return "triggered requirement not satisfied"
}
