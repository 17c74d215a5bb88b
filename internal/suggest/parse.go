package suggest

import (
	"encoding/json"
	"strconv"
	"strings"
)

// extractArray pulls the first well-formed JSON array substring out of an
// untrusted model response. Any failure yields nil, never an error.
func extractArray(text string) []map[string]any {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &items); err != nil {
		return nil
	}
	return items
}

// extractObject pulls the first well-formed JSON object substring out of an
// untrusted model response.
func extractObject(text string) map[string]any {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &obj); err != nil {
		return nil
	}
	return obj
}

// floatField coerces a numeric field with a default. Malformed values
// degrade to the default rather than dropping the containing item.
func floatField(item map[string]any, key string, fallback float64) float64 {
	switch v := item[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return fallback
}

func stringField(item map[string]any, key, fallback string) string {
	if v, ok := item[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// stringSliceField accepts either a JSON array of strings or a single
// string value.
func stringSliceField(item map[string]any, key string) []string {
	switch v := item[key].(type) {
	case []any:
		var out []string
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{v}
	}
	return nil
}

// stringListValue converts one enhancement category value, which the model
// may return as an array or a bare string.
func stringListValue(value any) []string {
	switch v := value.(type) {
	case []any:
		var out []string
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{v}
	}
	return nil
}
