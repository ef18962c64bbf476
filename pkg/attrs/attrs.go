// Package attrs reads values back out of logger-style attribute lists.
package attrs

// ExtractString returns the string value following key in a flat
// [key1, value1, key2, value2, ...] attribute list. Missing keys and
// non-string values yield "".
//
// Audit publishers take attributes in this shape; callers that need one
// field back out of a list use this instead of restructuring call sites.
func ExtractString(attrs []any, key string) string {
	for i := 0; i < len(attrs)-1; i += 2 {
		k, ok := attrs[i].(string)
		if !ok {
			continue
		}
		if k == key {
			if v, ok := attrs[i+1].(string); ok {
				return v
			}
		}
	}
	return ""
}
