package audit

import "fmt"

// ExtractString returns the value paired with key in a slog-style key/value list.
func ExtractString(attrs []any, key string) string {
	for i := 0; i+1 < len(attrs); i += 2 {
		k, ok := attrs[i].(string)
		if !ok || k != key {
			continue
		}
		switch v := attrs[i+1].(type) {
		case string:
			return v
		case fmt.Stringer:
			return v.String()
		}
	}
	return ""
}

// ExtractInt returns the integer paired with key, or 0.
func ExtractInt(attrs []any, key string) int {
	for i := 0; i+1 < len(attrs); i += 2 {
		if k, ok := attrs[i].(string); ok && k == key {
			if v, ok := attrs[i+1].(int); ok {
				return v
			}
		}
	}
	return 0
}
