package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"patra/internal/applicant"
	"patra/internal/ruleset"
)

func TestEvaluateFamily(t *testing.T) {
	rule := ruleset.FamilyRule{Enabled: true, AdultAge: 18}

	tests := []struct {
		name       string
		members    []applicant.FamilyMember
		wantValid  bool
		wantDetail string
	}{
		{
			name:      "no members declared",
			members:   nil,
			wantValid: true,
		},
		{
			name: "self spouse and minor children",
			members: []applicant.FamilyMember{
				{Name: "Ramesh", Relation: "self", Age: 45},
				{Name: "Sunita", Relation: "wife", Age: 40},
				{Name: "Amit", Relation: "son", Age: 12},
				{Name: "Priya", Relation: "daughter", Age: 9},
			},
			wantValid: true,
		},
		{
			name: "adult child invalidates",
			members: []applicant.FamilyMember{
				{Name: "Ramesh", Relation: "self", Age: 45},
				{Name: "Rohit", Relation: "son", Age: 19},
			},
			wantValid:  false,
			wantDetail: "Rohit (son, age 19) is an adult and falls outside the family unit",
		},
		{
			name: "child at the adult age boundary invalidates",
			members: []applicant.FamilyMember{
				{Name: "Rohit", Relation: "son", Age: 18},
			},
			wantValid:  false,
			wantDetail: "Rohit (son, age 18) is an adult and falls outside the family unit",
		},
		{
			name: "child just under the boundary is fine",
			members: []applicant.FamilyMember{
				{Name: "Rohit", Relation: "son", Age: 17},
			},
			wantValid: true,
		},
		{
			name: "parents and siblings are outside the unit",
			members: []applicant.FamilyMember{
				{Name: "Ramesh", Relation: "self", Age: 45},
				{Name: "Shyam", Relation: "father", Age: 70},
				{Name: "Gita", Relation: "mother", Age: 68},
				{Name: "Mohan", Relation: "brother", Age: 50},
			},
			wantValid: true,
		},
		{
			name: "unrecognized relation is neutral",
			members: []applicant.FamilyMember{
				{Name: "Raju", Relation: "grandson", Age: 30},
			},
			wantValid: true,
		},
		{
			name: "two self entries",
			members: []applicant.FamilyMember{
				{Name: "Ramesh", Relation: "self", Age: 45},
				{Name: "Ramesh", Relation: "self", Age: 45},
			},
			wantValid:  false,
			wantDetail: "family declares more than one self entry",
		},
		{
			name: "two spouses",
			members: []applicant.FamilyMember{
				{Name: "Sunita", Relation: "wife", Age: 40},
				{Name: "Anita", Relation: "spouse", Age: 38},
			},
			wantValid:  false,
			wantDetail: "family declares more than one spouse",
		},
		{
			name: "negative member age",
			members: []applicant.FamilyMember{
				{Name: "Amit", Relation: "son", Age: -2},
			},
			wantValid:  false,
			wantDetail: "Amit has an invalid age -2",
		},
		{
			name: "all problems reported together",
			members: []applicant.FamilyMember{
				{Name: "Ramesh", Relation: "self", Age: 45},
				{Name: "Ramesh", Relation: "self", Age: 45},
				{Name: "Rohit", Relation: "son", Age: 22},
			},
			wantValid:  false,
			wantDetail: "Rohit (son, age 22) is an adult and falls outside the family unit; family declares more than one self entry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, detail := evaluateFamily(rule, tt.members)
			assert.Equal(t, tt.wantValid, valid)
			assert.Equal(t, tt.wantDetail, detail)
		})
	}
}

func TestEvaluateFamilyDisabled(t *testing.T) {
	members := []applicant.FamilyMember{{Name: "Rohit", Relation: "son", Age: 25}}

	valid, detail := evaluateFamily(ruleset.FamilyRule{Enabled: false}, members)

	assert.True(t, valid)
	assert.Empty(t, detail)
}

func TestEvaluateFamilyRequireSpouse(t *testing.T) {
	rule := ruleset.FamilyRule{Enabled: true, RequireSpouse: true}

	valid, detail := evaluateFamily(rule, []applicant.FamilyMember{
		{Name: "Ramesh", Relation: "self", Age: 45},
	})

	assert.False(t, valid)
	assert.Equal(t, "family must include a spouse", detail)
}

func TestEvaluateFamilyDefaultAdultAge(t *testing.T) {
	// adult_age omitted in the document falls back to 18
	rule := ruleset.FamilyRule{Enabled: true}

	valid, _ := evaluateFamily(rule, []applicant.FamilyMember{
		{Name: "Rohit", Relation: "son", Age: 18},
	})

	assert.False(t, valid)
}

func TestEvaluateFamilyRelationCaseFolded(t *testing.T) {
	// Members reach the engine normalized; mixed-case input in a record is
	// folded before evaluation.
	rec := eligibleFarmer()
	rec.FamilyMembers = []applicant.FamilyMember{
		{Name: "Rohit", Relation: "Son", Age: 20},
	}

	d := evaluate(t, rec)

	assert.False(t, d.FamilyValid)
}
