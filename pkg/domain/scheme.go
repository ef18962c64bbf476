// Package domain defines the shared value types of the eligibility engine.
//
// Each enum follows the same shape: a typed string, the supported constants, a
// validity map as the single source of truth, and a Parse function for trust
// boundaries. Direct casting bypasses validation.
package domain

import (
	"regexp"
	"strings"

	dErrors "patra/pkg/domain-errors"
)

// SchemeCode identifies a welfare scheme whose rules are registered with the
// engine, e.g. "pm-kisan".
type SchemeCode string

var schemeCodePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ParseSchemeCode constructs a SchemeCode from external input. Codes are
// lower-cased; only [a-z0-9_-] identifiers are accepted.
func ParseSchemeCode(s string) (SchemeCode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "scheme_code cannot be empty")
	}
	if !schemeCodePattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "scheme_code must contain only lowercase letters, digits, '-' and '_'")
	}
	return SchemeCode(s), nil
}

// String returns the string representation of the scheme code.
func (c SchemeCode) String() string {
	return string(c)
}
