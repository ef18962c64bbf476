// Package strings provides the string normalization the domain models share.
package strings

import (
	"strings"
)

// DedupeAndTrimLower trims, lowercases and deduplicates a slice, dropping
// entries that end up empty. Order of first appearance is preserved.
//
// Scope lists and enum-valued fields arrive from callers in mixed case with
// stray whitespace; this is the single normalization they all go through.
func DedupeAndTrimLower(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		normalized := strings.ToLower(strings.TrimSpace(v))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; !ok {
			seen[normalized] = struct{}{}
			result = append(result, normalized)
		}
	}

	return result
}
