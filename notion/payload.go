package notion

import "time"

// Raw API payloads arrive as map[string]any. These accessors tolerate
// missing keys and mismatched shapes so factories stay readable.

func getString(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	if value, ok := data[key].(string); ok {
		return value
	}
	return ""
}

func getBool(data map[string]any, key string) bool {
	if data == nil {
		return false
	}
	if value, ok := data[key].(bool); ok {
		return value
	}
	return false
}

func getFloat(data map[string]any, key string) (float64, bool) {
	if data == nil {
		return 0, false
	}
	switch value := data[key].(type) {
	case float64:
		return value, true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	default:
		return 0, false
	}
}

func getMap(data map[string]any, key string) map[string]any {
	if data == nil {
		return nil
	}
	if value, ok := data[key].(map[string]any); ok {
		return value
	}
	return nil
}

func getSlice(data map[string]any, key string) []any {
	if data == nil {
		return nil
	}
	if value, ok := data[key].([]any); ok {
		return value
	}
	return nil
}

func getMapSlice(data map[string]any, key string) []map[string]any {
	raw := getSlice(data, key)
	if raw == nil {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func getTime(data map[string]any, key string) time.Time {
	raw := getString(data, key)
	if raw == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
