// Package attrs reads values back out of slog-style key/value lists.
package attrs

import "fmt"

// ExtractString returns the value paired with key in a [k1, v1, k2, v2, ...]
// list. Strings are returned as-is and fmt.Stringer values (addresses, keys)
// are rendered; anything else, or a missing key, yields "".
func ExtractString(list []any, key string) string {
	for i := 0; i+1 < len(list); i += 2 {
		if k, ok := list[i].(string); !ok || k != key {
			continue
		}
		switch v := list[i+1].(type) {
		case string:
			return v
		case fmt.Stringer:
			return v.String()
		}
		return ""
	}
	return ""
}
