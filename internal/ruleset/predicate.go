package ruleset

import (
	"regexp"
	"time"

	"patra/internal/applicant"
)

// Operator is a predicate operator a rule document may use.
type Operator string

const (
	OpEq       Operator = "eq"
	OpNotEq    Operator = "not_eq"
	OpGt       Operator = "gt"
	OpGte      Operator = "gte"
	OpLt       Operator = "lt"
	OpLte      Operator = "lte"
	OpBetween  Operator = "between"
	OpIn       Operator = "in"
	OpNotIn    Operator = "not_in"
	OpNonEmpty Operator = "non_empty"
	OpFormat   Operator = "format"
)

var validOperators = map[Operator]bool{
	OpEq: true, OpNotEq: true, OpGt: true, OpGte: true, OpLt: true,
	OpLte: true, OpBetween: true, OpIn: true, OpNotIn: true,
	OpNonEmpty: true, OpFormat: true,
}

// IsValid checks if the operator is supported.
func (o Operator) IsValid() bool {
	return validOperators[o]
}

// Format kinds accepted by the format operator.
const (
	FormatAadhaar = "aadhaar"
	FormatPhone   = "phone"
	FormatIFSC    = "ifsc"
	FormatAccount = "account"
	FormatDate    = "date"
)

var formatPatterns = map[string]*regexp.Regexp{
	FormatAadhaar: regexp.MustCompile(`^[0-9]{12}$`),
	FormatPhone:   regexp.MustCompile(`^[0-9]{10}$`),
	FormatIFSC:    regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`),
	FormatAccount: regexp.MustCompile(`^[0-9]{9,18}$`),
	FormatDate:    regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`),
}

// IsKnownFormat reports whether a format kind is supported.
func IsKnownFormat(kind string) bool {
	_, ok := formatPatterns[kind]
	return ok
}

// MatchFormat reports whether a string value satisfies the given format kind.
// Dates must both match the shape and parse as a calendar date.
func MatchFormat(kind, value string) bool {
	pattern, ok := formatPatterns[kind]
	if !ok {
		return false
	}
	if !pattern.MatchString(value) {
		return false
	}
	if kind == FormatDate {
		if _, err := time.Parse("2006-01-02", value); err != nil {
			return false
		}
	}
	return true
}

// Check is a single predicate applied to one fact. In a FieldRequirement the
// fact is the requirement's Field; inside a Condition the leaf names its own
// field.
type Check struct {
	Op     Operator `yaml:"op" json:"op"`
	Value  any      `yaml:"value,omitempty" json:"value,omitempty"`
	Values []any    `yaml:"values,omitempty" json:"values,omitempty"`
}

// Holds evaluates the check against one fact.
//
// A predicate over a missing fact never holds, whatever the operator. This one
// rule covers the whole taxonomy: requirement evaluation reports the missing
// field separately, exclusion triggers stay inactive, conditional triggers
// stay untriggered, and exemptions do not apply.
func (c Check) Holds(field string, facts *applicant.Facts) bool {
	switch c.Op {
	case OpNonEmpty:
		// String facts are trimmed at snapshot build, so a present string
		// fact is non-empty by construction.
		return facts.Has(field)

	case OpFormat:
		kind, _ := c.Value.(string)
		s, ok := facts.Str(field)
		if !ok {
			return false
		}
		return MatchFormat(kind, s)

	case OpEq:
		return factEquals(field, c.Value, facts)

	case OpNotEq:
		if !facts.Has(field) {
			return false
		}
		return !factEquals(field, c.Value, facts)

	case OpGt, OpGte, OpLt, OpLte:
		return factOrdered(field, c.Op, c.Value, facts)

	case OpBetween:
		if len(c.Values) != 2 {
			return false
		}
		lo, loOK := asNumber(c.Values[0])
		hi, hiOK := asNumber(c.Values[1])
		n, ok := facts.Num(field)
		return ok && loOK && hiOK && n >= lo && n <= hi

	case OpIn:
		return factIn(field, c.Values, facts)

	case OpNotIn:
		if !facts.Has(field) {
			return false
		}
		return !factIn(field, c.Values, facts)
	}
	return false
}

func factEquals(field string, value any, facts *applicant.Facts) bool {
	switch want := value.(type) {
	case bool:
		got, ok := facts.Bool(field)
		return ok && got == want
	case string:
		got, ok := facts.Str(field)
		return ok && got == want
	default:
		want64, ok := asNumber(value)
		if !ok {
			return false
		}
		got, present := facts.Num(field)
		return present && got == want64
	}
}

// factOrdered compares numerically when the operand is a number, and
// lexicographically when it is a string. Lexicographic comparison on
// ISO dates is how cutoffs like "owned on or before 2019-02-01" are written.
func factOrdered(field string, op Operator, value any, facts *applicant.Facts) bool {
	if s, isStr := value.(string); isStr {
		got, ok := facts.Str(field)
		if !ok {
			return false
		}
		switch op {
		case OpGt:
			return got > s
		case OpGte:
			return got >= s
		case OpLt:
			return got < s
		case OpLte:
			return got <= s
		}
		return false
	}

	want, ok := asNumber(value)
	if !ok {
		return false
	}
	got, present := facts.Num(field)
	if !present {
		return false
	}
	switch op {
	case OpGt:
		return got > want
	case OpGte:
		return got >= want
	case OpLt:
		return got < want
	case OpLte:
		return got <= want
	}
	return false
}

func factIn(field string, values []any, facts *applicant.Facts) bool {
	if s, ok := facts.Str(field); ok {
		for _, v := range values {
			if sv, isStr := v.(string); isStr && sv == s {
				return true
			}
		}
		return false
	}
	if n, ok := facts.Num(field); ok {
		for _, v := range values {
			if nv, isNum := asNumber(v); isNum && nv == n {
				return true
			}
		}
	}
	return false
}

// asNumber widens the numeric types YAML and JSON decoding produce.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// Condition is a predicate tree: either a leaf check on a named fact or a
// boolean composite of sub-conditions. Exactly one of the three forms is set.
type Condition struct {
	Field  string   `yaml:"field,omitempty" json:"field,omitempty"`
	Op     Operator `yaml:"op,omitempty" json:"op,omitempty"`
	Value  any      `yaml:"value,omitempty" json:"value,omitempty"`
	Values []any    `yaml:"values,omitempty" json:"values,omitempty"`

	All []Condition `yaml:"all,omitempty" json:"all,omitempty"`
	Any []Condition `yaml:"any,omitempty" json:"any,omitempty"`
}

// Holds evaluates the condition tree against the facts.
func (c Condition) Holds(facts *applicant.Facts) bool {
	switch {
	case len(c.All) > 0:
		for _, sub := range c.All {
			if !sub.Holds(facts) {
				return false
			}
		}
		return true
	case len(c.Any) > 0:
		for _, sub := range c.Any {
			if sub.Holds(facts) {
				return true
			}
		}
		return false
	default:
		return Check{Op: c.Op, Value: c.Value, Values: c.Values}.Holds(c.Field, facts)
	}
}
