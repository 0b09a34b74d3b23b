// Package params reads loosely typed parameter maps: YAML step bodies and
// MCP tool arguments.
package params

import (
	"fmt"
	"math"
)

// String returns params[key] as a string, or defaultVal when absent.
func String(params map[string]any, key, defaultVal string) string {
	if v, ok := params[key]; ok && v != nil {
		if s, ok := v.(string); ok {
			return s
		}
		// Handle numeric values that YAML may parse as int/float
		return fmt.Sprintf("%v", v)
	}
	return defaultVal
}

// Int returns params[key] as an int, or defaultVal when absent or not a
// number. JSON numbers arrive as float64 and are truncated.
func Int(params map[string]any, key string, defaultVal int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case int64:
			return int(n)
		}
	}
	return defaultVal
}

// PID returns params[key] as a process identifier, or 0 when absent. Values
// that do not fit a pid_t are rejected rather than truncated.
func PID(params map[string]any, key string) (int32, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return 0, nil
	}
	var n float64
	switch x := v.(type) {
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case float64:
		n = x
	default:
		return 0, fmt.Errorf("%s: expected a number, got %T", key, v)
	}
	if n != math.Trunc(n) || n < 0 || n > math.MaxInt32 {
		return 0, fmt.Errorf("%s: %v is not a valid pid", key, v)
	}
	return int32(n), nil
}

// Bool returns params[key] as a bool, or defaultVal when absent.
func Bool(params map[string]any, key string, defaultVal bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}

// Strings accepts a single string or a list and returns it as strings.
func Strings(params map[string]any, key string) []string {
	switch v := params[key].(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	case []string:
		return append([]string(nil), v...)
	}
	return nil
}

// Has reports whether any of keys is present.
func Has(params map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := params[k]; ok {
			return true
		}
	}
	return false
}
