package applicant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubjectID(t *testing.T) {
	rec := &Record{Name: "Ramesh Kumar", PhoneNumber: "9876543210", AadhaarNumber: " 234567890123 "}
	assert.Equal(t, "234567890123", rec.SubjectID(), "aadhaar wins when present")

	rec.AadhaarNumber = ""
	assert.Equal(t, "ramesh kumar|9876543210", rec.SubjectID(), "name and phone fall back")

	empty := &Record{}
	assert.Equal(t, "|", empty.SubjectID())
}

func TestFingerprint(t *testing.T) {
	age := 45
	a := &Record{Name: "Ramesh Kumar", Age: &age, State: "Uttar Pradesh"}
	b := &Record{Name: "Ramesh Kumar", Age: &age, State: "Uttar Pradesh"}

	assert.NotEmpty(t, a.Fingerprint())
	assert.Equal(t, a.Fingerprint(), b.Fingerprint(), "identical records share a fingerprint")

	b.State = "Bihar"
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint(), "any field change produces a new fingerprint")

	// A pointer field set to the zero value is a different submission than
	// an absent one.
	zero := 0
	c := &Record{Name: "Ramesh Kumar", Age: &zero}
	d := &Record{Name: "Ramesh Kumar"}
	assert.NotEqual(t, c.Fingerprint(), d.Fingerprint())
}
