// Package strings holds small slice helpers used for collective tags.
package strings

import (
	"slices"
	"strings"
)

// DedupeAndTrim trims each value and drops blanks and repeats, keeping the
// first occurrence. A nil or empty input is returned as is.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// AppendIfMissing returns a copy of values with v appended, or values itself
// when v is already there.
func AppendIfMissing(values []string, v string) []string {
	if slices.Contains(values, v) {
		return values
	}
	return append(slices.Clone(values), v)
}
