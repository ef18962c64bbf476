package engine

import (
	"fmt"
	"strconv"
	"strings"

	"patra/internal/applicant"
	"patra/internal/ruleset"
)

// reasonFor renders a failed check as one human-readable sentence fragment.
// Reasons are part of the decision contract: downstream systems show them to
// applicants, so they name the expectation and the observed value, never
// rule internals.
func reasonFor(field string, check ruleset.Check, facts *applicant.Facts) string {
	got := facts.Describe(field)

	switch check.Op {
	case ruleset.OpEq:
		return fmt.Sprintf("must equal %s, got %s", operand(check.Value), got)
	case ruleset.OpNotEq:
		return fmt.Sprintf("must not equal %s", operand(check.Value))
	case ruleset.OpGt:
		return fmt.Sprintf("must be greater than %s, got %s", operand(check.Value), got)
	case ruleset.OpGte:
		return fmt.Sprintf("must be at least %s, got %s", operand(check.Value), got)
	case ruleset.OpLt:
		return fmt.Sprintf("must be less than %s, got %s", operand(check.Value), got)
	case ruleset.OpLte:
		return fmt.Sprintf("must be at most %s, got %s", operand(check.Value), got)
	case ruleset.OpBetween:
		if len(check.Values) == 2 {
			return fmt.Sprintf("must be between %s and %s, got %s",
				operand(check.Values[0]), operand(check.Values[1]), got)
		}
		return "must be within the allowed range, got " + got
	case ruleset.OpIn:
		return fmt.Sprintf("must be one of %s, got %s", operandList(check.Values), got)
	case ruleset.OpNotIn:
		return fmt.Sprintf("must not be one of %s", operandList(check.Values))
	case ruleset.OpNonEmpty:
		return "must not be empty"
	case ruleset.OpFormat:
		kind, _ := check.Value.(string)
		return fmt.Sprintf("must be %s, got %s", formatPhrase(kind), got)
	}
	return "does not satisfy the rule"
}

// leafReason explains a failed leaf condition, prefixed with its field. For
// composite conditions there is no single sentence to derive, so callers
// fall back to the rule's label.
func leafReason(c ruleset.Condition, facts *applicant.Facts) (string, bool) {
	if c.Field == "" {
		return "", false
	}
	check := ruleset.Check{Op: c.Op, Value: c.Value, Values: c.Values}
	return c.Field + " " + reasonFor(c.Field, check, facts), true
}

func operand(v any) string {
	switch val := v.(type) {
	case string:
		return strconv.Quote(val)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func operandList(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = operand(v)
	}
	return strings.Join(parts, ", ")
}

var formatPhrases = map[string]string{
	ruleset.FormatAadhaar: "a 12-digit Aadhaar number",
	ruleset.FormatPhone:   "a 10-digit phone number",
	ruleset.FormatIFSC:    "an 11-character IFSC code",
	ruleset.FormatAccount: "a bank account number of 9 to 18 digits",
	ruleset.FormatDate:    "a date in YYYY-MM-DD form",
}

func formatPhrase(kind string) string {
	if phrase, ok := formatPhrases[kind]; ok {
		return phrase
	}
	return "in " + kind + " format"
}
