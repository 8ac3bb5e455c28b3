// Package strings provides string list utilities.
package strings

import (
	"strings"
)

// DedupeAndTrimLower trims, lowercases and deduplicates values, dropping
// empty entries. Order of first occurrence is preserved.
//
// Example:
//
//	DedupeAndTrimLower([]string{" 0xAB ", "0xab", ""})
//	// Returns: []string{"0xab"}
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
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}
	return result
}
