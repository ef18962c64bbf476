// Package engine evaluates an applicant's facts against a scheme's rules.
//
// Evaluation is pure: same facts, same rules, same decision. Nothing here
// touches the network, the clock or a database; callers inject the
// evaluation time. Every rule group is always evaluated in full, so a
// decision explains everything that is wrong, not just the first thing.
package engine

import (
	"time"

	"patra/pkg/domain"
)

// FieldFinding is one failed field requirement.
type FieldFinding struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// RuleFinding is one failed named rule (a conditional requirement).
type RuleFinding struct {
	Rule   string `json:"rule"`
	Reason string `json:"reason"`
}

// Decision is the full, explainable outcome of one evaluation.
type Decision struct {
	SchemeCode     domain.SchemeCode `json:"scheme_code"`
	RulesetVersion string            `json:"ruleset_version"`
	Eligible       bool              `json:"eligible"`

	FailedRequirements []FieldFinding `json:"failed_requirements"`
	FailedConditionals []RuleFinding  `json:"failed_conditional_requirements"`
	ActiveExclusions   []string       `json:"active_exclusions"`

	FamilyValid  bool   `json:"family_valid"`
	FamilyDetail string `json:"family_detail,omitempty"`

	AppliedProvisions []string `json:"applied_special_provisions"`

	EvaluatedAt time.Time `json:"evaluated_at"`
}

// Clean reports whether no rule group found a problem.
func (d *Decision) Clean() bool {
	return len(d.FailedRequirements) == 0 &&
		len(d.FailedConditionals) == 0 &&
		len(d.ActiveExclusions) == 0 &&
		d.FamilyValid
}

// ReasonCount totals the problems across all groups, for metrics and logs.
func (d *Decision) ReasonCount() int {
	n := len(d.FailedRequirements) + len(d.FailedConditionals) + len(d.ActiveExclusions)
	if !d.FamilyValid {
		n++
	}
	return n
}
