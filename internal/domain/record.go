package domain

// Tolerant accessors for Record values. Upstream payloads arrive through
// encoding/json, so numbers are float64 and lists are []any; normalized
// records built in code may hold native Go types. These helpers accept both.

// Str returns the string value for key, or "" when absent or not a string.
func (r Record) Str(key string) string {
	s, _ := r[key].(string)
	return s
}

// Int returns the integer value for key, accepting int and float64.
func (r Record) Int(key string) int {
	switch v := r[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Bool returns the boolean value for key, or false.
func (r Record) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Strings returns the string-slice value for key, accepting []string and
// []any with string elements.
func (r Record) Strings(key string) []string {
	switch v := r[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
