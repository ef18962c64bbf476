package domain

import "strings"

// Relation describes how a family member relates to the applicant.
//
// Eligibility only distinguishes self, spouse and child; other relations are
// recorded but play no part in the family-structure check.
type Relation string

const (
	RelationSelf     Relation = "self"
	RelationHusband  Relation = "husband"
	RelationWife     Relation = "wife"
	RelationSpouse   Relation = "spouse"
	RelationSon      Relation = "son"
	RelationDaughter Relation = "daughter"
	RelationChild    Relation = "child"
	RelationFather   Relation = "father"
	RelationMother   Relation = "mother"
	RelationBrother  Relation = "brother"
	RelationSister   Relation = "sister"
	RelationOther    Relation = "other"
)

// NormalizeRelation lower-cases a raw relation string. Unknown relations are
// kept as-is: they neither satisfy nor violate family rules.
func NormalizeRelation(s string) Relation {
	return Relation(strings.ToLower(strings.TrimSpace(s)))
}

// IsSelf reports whether the relation identifies the applicant themselves.
func (r Relation) IsSelf() bool {
	return r == RelationSelf
}

// IsSpouse reports whether the relation counts as a spouse.
func (r Relation) IsSpouse() bool {
	switch r {
	case RelationHusband, RelationWife, RelationSpouse:
		return true
	}
	return false
}

// IsChild reports whether the relation counts as a child.
func (r Relation) IsChild() bool {
	switch r {
	case RelationSon, RelationDaughter, RelationChild:
		return true
	}
	return false
}

// String returns the string representation of the relation.
func (r Relation) String() string {
	return string(r)
}

// Gender as recorded on the application.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

var validGenders = map[Gender]bool{
	GenderMale:   true,
	GenderFemale: true,
	GenderOther:  true,
}

// IsValid checks if the gender is one of the supported enum values.
func (g Gender) IsValid() bool {
	return validGenders[g]
}

// String returns the string representation of the gender.
func (g Gender) String() string {
	return string(g)
}

// LandOwnership describes how the applicant holds their land.
type LandOwnership string

const (
	LandOwned         LandOwnership = "owned"
	LandLeased        LandOwnership = "leased"
	LandSharecropping LandOwnership = "sharecropping"
	LandJoint         LandOwnership = "joint"
	LandInstitutional LandOwnership = "institutional"
)

var validLandOwnerships = map[LandOwnership]bool{
	LandOwned:         true,
	LandLeased:        true,
	LandSharecropping: true,
	LandJoint:         true,
	LandInstitutional: true,
}

// IsValid checks if the land ownership is one of the supported enum values.
func (l LandOwnership) IsValid() bool {
	return validLandOwnerships[l]
}

// String returns the string representation of the land ownership.
func (l LandOwnership) String() string {
	return string(l)
}
