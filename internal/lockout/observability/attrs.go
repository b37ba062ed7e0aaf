package observability

import "time"

func extractTime(attrs []any, key string) *time.Time {
	for i := 0; i+1 < len(attrs); i += 2 {
		if k, ok := attrs[i].(string); ok && k == key {
			switch v := attrs[i+1].(type) {
			case time.Time:
				return &v
			case *time.Time:
				return v
			}
		}
	}
	return nil
}
