package applicant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "patra/pkg/domain-errors"
)

func TestParseRecord(t *testing.T) {
	data := []byte(`{
		"name": "Ramesh Kumar",
		"age": 45,
		"aadhaar_number": "234567890123",
		"land_size_acres": 2.5,
		"family_members": [
			{"name": "Sita", "relation": "wife", "age": 42}
		],
		"portal_reference": "up-portal-9912"
	}`)

	rec, err := ParseRecord(data)
	require.NoError(t, err)

	require.NotNil(t, rec.Age)
	assert.Equal(t, 45, *rec.Age)
	require.NotNil(t, rec.LandSizeAcres)
	assert.Equal(t, 2.5, *rec.LandSizeAcres)
	require.Len(t, rec.FamilyMembers, 1)
	assert.Equal(t, "wife", rec.FamilyMembers[0].Relation)

	// Unknown fields from upstream portals are ignored, and absent optionals
	// stay nil.
	assert.Nil(t, rec.MonthlyPension)
}

func TestParseRecordBadValuesAreNotParseErrors(t *testing.T) {
	// An out-of-range age or unknown category must decode fine; rules judge
	// the values during evaluation.
	rec, err := ParseRecord([]byte(`{"age": 150, "category": "XYZ"}`))
	require.NoError(t, err)
	assert.Equal(t, 150, *rec.Age)
	assert.Equal(t, "XYZ", rec.Category)
}

func TestParseRecordMalformed(t *testing.T) {
	_, err := ParseRecord([]byte(`{"age": `))
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeBadRequest, dErrors.CodeOf(err))

	_, err = ParseRecord(nil)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeBadRequest, dErrors.CodeOf(err))

	// Wrong type for a typed field is malformed input, not a finding.
	_, err = ParseRecord([]byte(`{"age": "forty"}`))
	require.Error(t, err)
}
