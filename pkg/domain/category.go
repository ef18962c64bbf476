package domain

import (
	"strings"

	dErrors "patra/pkg/domain-errors"
)

// Category is the applicant's social category as recorded on the application.
type Category string

// Supported categories. Which of these a scheme actually accepts is decided by
// that scheme's rules, not by this type.
const (
	CategoryGeneral  Category = "general"
	CategorySC       Category = "sc"
	CategoryST       Category = "st"
	CategoryOBC      Category = "obc"
	CategoryMinority Category = "minority"
	CategoryBPL      Category = "bpl"
)

// validCategories is the single source of truth for valid categories.
var validCategories = map[Category]bool{
	CategoryGeneral:  true,
	CategorySC:       true,
	CategoryST:       true,
	CategoryOBC:      true,
	CategoryMinority: true,
	CategoryBPL:      true,
}

// ParseCategory constructs a Category from external input. Matching is
// case-insensitive: "SC", "sc" and "Sc" are the same category.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "category cannot be empty")
	}
	c := Category(s)
	if !c.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown category %q", s)
	}
	return c, nil
}

// IsValid checks if the category is one of the supported enum values.
func (c Category) IsValid() bool {
	return validCategories[c]
}

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}
