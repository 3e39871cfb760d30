package sanitize

import "strings"

// MaxStringLength caps every sanitized string.
const MaxStringLength = 500

// String strips angle brackets, trims surrounding whitespace and truncates
// the result to MaxStringLength runes.
func String(s string) string {
	s = strings.NewReplacer("<", "", ">", "").Replace(s)
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) > MaxStringLength {
		return string(runes[:MaxStringLength])
	}
	return s
}

// Value sanitizes a decoded JSON value. Strings are cleaned with String,
// sequences and mappings are walked recursively with keys and order
// preserved, everything else passes through unchanged.
func Value(v interface{}) interface{} {
	switch val := v.(type) {
	case string:
		return String(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = Value(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = Value(item)
		}
		return out
	default:
		return v
	}
}
