package textutil

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizeStringList trims entries and drops empty ones. Order and duplicates are kept.
// The result is never nil.
func NormalizeStringList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// StringMapFromAny converts a decoded JSON object into trimmed string pairs, removing
// entries with empty keys and stringifying scalar values. Nested objects and arrays are
// dropped.
func StringMapFromAny(values map[string]any) map[string]string {
	if len(values) == 0 {
		return nil
	}
	result := make(map[string]string, len(values))
	for key, value := range values {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			continue
		}
		str, ok := Scalar(value)
		if !ok {
			continue
		}
		result[trimmedKey] = str
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// Scalar renders a decoded JSON scalar as a trimmed string.
func Scalar(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	case fmt.Stringer:
		return strings.TrimSpace(v.String()), true
	}
	return "", false
}
