package fallback

import (
	"encoding/json"
	"strconv"
	"strings"
)

// SafeString returns a trimmed string or the provided fallback.
func SafeString(value interface{}, fallbackValue string) string {
	if s, ok := value.(string); ok {
		s = strings.TrimSpace(s)
		if s != "" {
			return s
		}
	}
	return fallbackValue
}

// SafeInt converts common number shapes into int with a fallback.
func SafeInt(value interface{}, fallbackValue int) int {
	switch v := value.(type) {
	case float64:
		if v > 0 {
			return int(v)
		}
	case float32:
		if v > 0 {
			return int(v)
		}
	case int:
		if v > 0 {
			return v
		}
	case int64:
		if v > 0 {
			return int(v)
		}
	case json.Number:
		if n, err := strconv.Atoi(v.String()); err == nil && n > 0 {
			return n
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return fallbackValue
}

// SafeStringSlice extracts a slice of non-empty strings from a JSONB array value.
// Non-string entries are preserved as empty strings so that validation can reject
// them instead of silently dropping positions.
func SafeStringSlice(value interface{}) []string {
	list, ok := value.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, strings.TrimSpace(s))
		} else {
			out = append(out, "")
		}
	}
	return out
}
