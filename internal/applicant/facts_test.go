package applicant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestBuildFactsNormalizesStrings(t *testing.T) {
	rec := &Record{
		Name:     "  Ramesh Kumar  ",
		Age:      intPtr(45),
		Gender:   "MALE",
		Category: " SC ",
		State:    "  Bihar",
		IFSCCode: "sbin0001234",
	}
	facts := BuildFacts(rec)

	name, ok := facts.Str(FactName)
	require.True(t, ok)
	assert.Equal(t, "Ramesh Kumar", name)

	gender, _ := facts.Str(FactGender)
	assert.Equal(t, "male", gender)

	category, _ := facts.Str(FactCategory)
	assert.Equal(t, "sc", category)

	// State keeps its case, only whitespace is trimmed.
	state, _ := facts.Str(FactState)
	assert.Equal(t, "Bihar", state)

	// IFSC codes are upper-cased for format checks.
	ifsc, _ := facts.Str(FactIFSCCode)
	assert.Equal(t, "SBIN0001234", ifsc)
}

func TestBuildFactsMissingOptionalsYieldNoFact(t *testing.T) {
	facts := BuildFacts(&Record{Name: "X"})

	assert.False(t, facts.Has(FactAge))
	assert.False(t, facts.Has(FactLandSizeAcres))
	assert.False(t, facts.Has(FactMonthlyPension))
	assert.False(t, facts.Has(FactAadhaarNumber))

	_, ok := facts.Num(FactAge)
	assert.False(t, ok)
}

func TestBuildFactsBooleansAlwaysPresent(t *testing.T) {
	facts := BuildFacts(&Record{})

	// Undeclared flags read as false rather than missing: an applicant who
	// says nothing about NRI status is treated as not an NRI.
	v, ok := facts.Bool(FactIsNRI)
	require.True(t, ok)
	assert.False(t, v)

	v, ok = facts.Bool(FactIsGovernmentEmployee)
	require.True(t, ok)
	assert.False(t, v)
}

func TestBuildFactsRegionDefaultsToNone(t *testing.T) {
	facts := BuildFacts(&Record{})
	region, ok := facts.Str(FactRegionSpecial)
	require.True(t, ok)
	assert.Equal(t, "none", region)

	facts = BuildFacts(&Record{RegionSpecial: " Manipur "})
	region, _ = facts.Str(FactRegionSpecial)
	assert.Equal(t, "manipur", region)
}

func TestBuildFactsNumbers(t *testing.T) {
	facts := BuildFacts(&Record{
		Age:            intPtr(45),
		LandSizeAcres:  floatPtr(2.5),
		MonthlyPension: floatPtr(0),
	})

	age, ok := facts.Num(FactAge)
	require.True(t, ok)
	assert.Equal(t, 45.0, age)

	land, _ := facts.Num(FactLandSizeAcres)
	assert.Equal(t, 2.5, land)

	// Explicit zero is a present fact, distinct from a missing one.
	pension, ok := facts.Num(FactMonthlyPension)
	require.True(t, ok)
	assert.Equal(t, 0.0, pension)
}

func TestBuildFactsMembersNormalized(t *testing.T) {
	facts := BuildFacts(&Record{
		FamilyMembers: []FamilyMember{
			{Name: " Sita ", Relation: "WIFE", Age: 42, Gender: "Female"},
			{Name: "Arjun", Relation: "Son", Age: 12},
		},
	})

	members := facts.Members()
	require.Len(t, members, 2)
	assert.Equal(t, "Sita", members[0].Name)
	assert.Equal(t, "wife", members[0].Relation)
	assert.Equal(t, "female", members[0].Gender)
	assert.Equal(t, "son", members[1].Relation)
}

func TestDescribe(t *testing.T) {
	facts := BuildFacts(&Record{
		Name:          "Ramesh",
		Age:           intPtr(19),
		LandSizeAcres: floatPtr(2.5),
		IsNRI:         true,
	})

	assert.Equal(t, "19", facts.Describe(FactAge))
	assert.Equal(t, "2.5", facts.Describe(FactLandSizeAcres))
	assert.Equal(t, "true", facts.Describe(FactIsNRI))
	assert.Equal(t, `"Ramesh"`, facts.Describe(FactName))
	assert.Equal(t, "(missing)", facts.Describe(FactAadhaarNumber))
}

func TestKnownFacts(t *testing.T) {
	assert.True(t, IsKnownFact(FactAadhaarNumber))
	assert.True(t, IsKnownFact(FactRegionSpecial))
	assert.False(t, IsKnownFact("shoe_size"))

	names := KnownFacts()
	assert.Contains(t, names, FactAge)
	assert.Contains(t, names, FactCertificateType)
}
