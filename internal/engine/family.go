package engine

import (
	"fmt"
	"strings"

	"patra/internal/applicant"
	"patra/internal/ruleset"
	"patra/pkg/domain"
)

// evaluateFamily checks the declared family against the scheme's family
// definition: the applicant, at most one spouse, and minor children. Parents,
// siblings and unrecognized relations are outside the family unit and carry
// no weight either way. Every problem is reported, joined into one detail.
func evaluateFamily(rule ruleset.FamilyRule, members []applicant.FamilyMember) (bool, string) {
	if !rule.Enabled || len(members) == 0 {
		return true, ""
	}

	adultAge := rule.AdultAge
	if adultAge <= 0 {
		adultAge = ruleset.DefaultAdultAge
	}

	var problems []string
	selves, spouses := 0, 0
	for _, m := range members {
		if m.Age < 0 {
			problems = append(problems, fmt.Sprintf("%s has an invalid age %d", memberName(m), m.Age))
			continue
		}
		rel := domain.Relation(m.Relation)
		switch {
		case rel.IsSelf():
			selves++
		case rel.IsSpouse():
			spouses++
		case rel.IsChild():
			if m.Age >= adultAge {
				problems = append(problems, fmt.Sprintf(
					"%s (%s, age %d) is an adult and falls outside the family unit",
					memberName(m), m.Relation, m.Age))
			}
		}
	}

	if selves > 1 {
		problems = append(problems, "family declares more than one self entry")
	}
	if spouses > 1 {
		problems = append(problems, "family declares more than one spouse")
	}
	if rule.RequireSpouse && spouses == 0 {
		problems = append(problems, "family must include a spouse")
	}

	if len(problems) > 0 {
		return false, strings.Join(problems, "; ")
	}
	return true, ""
}

func memberName(m applicant.FamilyMember) string {
	if m.Name != "" {
		return m.Name
	}
	return "family member"
}
