package engine

import (
	"patra/internal/applicant"
	"patra/internal/ruleset"
)

// evaluateExclusions collects every exclusion whose trigger holds and whose
// exemption, if any, does not. The full set is always gathered: an applicant
// excluded on three grounds sees all three, in rule-document order.
func evaluateExclusions(rules []ruleset.ExclusionRule, facts *applicant.Facts) []string {
	var active []string
	for _, rule := range rules {
		if !rule.When.Holds(facts) {
			continue
		}
		if rule.Unless != nil && rule.Unless.Holds(facts) {
			continue
		}
		active = append(active, rule.Name)
	}
	return active
}
