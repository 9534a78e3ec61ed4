package agents

// Parameter maps arrive as map[string]interface{}, usually decoded from
// JSON, so numbers may be float64, int, or json.Number-ish strings are not
// handled. These helpers keep the handlers free of type-assertion noise.

func floatOr(v interface{}, fallback float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return fallback
}

func intOr(v interface{}, fallback int) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return fallback
}

// stringSlice accepts []string or a JSON-decoded []interface{} of strings.
func stringSlice(v interface{}) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []interface{}:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// floatMap accepts map[string]float64 or a JSON-decoded
// map[string]interface{} of numbers.
func floatMap(v interface{}) map[string]float64 {
	switch m := v.(type) {
	case map[string]float64:
		return m
	case map[string]interface{}:
		out := make(map[string]float64, len(m))
		for k, item := range m {
			out[k] = floatOr(item, 0)
		}
		return out
	}
	return map[string]float64{}
}
