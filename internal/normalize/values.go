package normalize

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/juantap/web/internal/platform/textutil"
)

type object = map[string]any

// asObject coerces raw input into a decoded JSON object. Strings and byte slices are
// parsed as JSON; other Go values go through a marshal/unmarshal round trip.
func asObject(raw any) object {
	switch v := raw.(type) {
	case nil:
		return nil
	case map[string]any:
		return v
	case string, []byte, json.RawMessage:
		decoded := decodeEmbedded(v)
		if obj, ok := decoded.(map[string]any); ok {
			return obj
		}
		return nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var obj object
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	return obj
}

// decodeEmbedded unwraps JSON that was transmitted as a string. Values that are not
// JSON-encoded strings are returned unchanged; malformed JSON degrades to nil.
func decodeEmbedded(value any) any {
	var text string
	switch v := value.(type) {
	case string:
		text = v
	case []byte:
		text = string(v)
	case json.RawMessage:
		text = string(v)
	default:
		return value
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") && !strings.HasPrefix(trimmed, `"`) {
		return text
	}
	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return nil
	}
	// Double-encoded payloads ("\"[...]\"") unwrap one more level.
	if inner, ok := decoded.(string); ok && inner != text {
		return decodeEmbedded(inner)
	}
	return decoded
}

// lookup returns the first present, non-null value among keys. Key order encodes field
// precedence.
func lookup(obj object, keys ...string) (any, bool) {
	if obj == nil {
		return nil, false
	}
	for _, key := range keys {
		if value, ok := obj[key]; ok && value != nil {
			return value, true
		}
	}
	return nil, false
}

func stringField(obj object, keys ...string) string {
	for _, key := range keys {
		value, ok := lookup(obj, key)
		if !ok {
			continue
		}
		if str, ok := textutil.Scalar(value); ok && str != "" {
			return str
		}
	}
	return ""
}

func numberField(obj object, keys ...string) (float64, bool) {
	for _, key := range keys {
		value, ok := lookup(obj, key)
		if !ok {
			continue
		}
		if n, ok := toNumber(value); ok {
			return n, true
		}
	}
	return 0, false
}

func boolField(obj object, keys ...string) (bool, bool) {
	for _, key := range keys {
		value, ok := lookup(obj, key)
		if !ok {
			continue
		}
		if b, ok := toBool(value); ok {
			return b, true
		}
	}
	return false, false
}

func timeField(obj object, keys ...string) time.Time {
	for _, key := range keys {
		value, ok := lookup(obj, key)
		if !ok {
			continue
		}
		if ts, ok := toTime(value); ok {
			return ts
		}
	}
	return time.Time{}
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return finite(f)
	case string:
		trimmed := strings.TrimSpace(v)
		trimmed = strings.TrimSuffix(trimmed, "px")
		trimmed = strings.TrimSuffix(trimmed, "%")
		trimmed = strings.ReplaceAll(trimmed, ",", "")
		if trimmed == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(trimmed), 64)
		if err != nil {
			return 0, false
		}
		return finite(f)
	}
	return 0, false
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "on":
			return true, true
		case "false", "0", "no", "off":
			return false, true
		}
		return false, false
	}
	if n, ok := toNumber(value); ok {
		return n != 0, true
	}
	return false, false
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func toTime(value any) (time.Time, bool) {
	if s, ok := value.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				if ts.IsZero() {
					return time.Time{}, true
				}
				return ts.UTC(), true
			}
		}
		return time.Time{}, false
	}
	if n, ok := toNumber(value); ok && n > 0 {
		sec, frac := math.Modf(n)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
	}
	return time.Time{}, false
}

// stringList accepts a native array, a JSON-encoded array string, or a plain string
// (treated as a single entry). Malformed JSON yields an empty list.
func stringList(value any) []string {
	decoded := decodeEmbedded(value)
	switch v := decoded.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := textutil.Scalar(item); ok {
				out = append(out, str)
			}
		}
		return textutil.NormalizeStringList(out)
	case []string:
		return textutil.NormalizeStringList(v)
	case string:
		return textutil.NormalizeStringList([]string{v})
	}
	return []string{}
}

// list returns value decoded as a JSON array, or nil.
func list(value any) []any {
	if items, ok := decodeEmbedded(value).([]any); ok {
		return items
	}
	return nil
}

// roleKey folds "cover_background", "coverBackground" and "cover-background" onto the
// same lookup key.
func roleKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.ReplaceAll(key, "_", "")
	return strings.ReplaceAll(key, "-", "")
}

// orderedKeys returns obj's keys with snake_case spellings first, then alphabetical,
// so that a snake_case value beats its camelCase twin deterministically.
func orderedKeys(obj map[string]string) []string {
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sortKeys(keys)
	return keys
}

func sortKeys(keys []string) {
	slices.SortFunc(keys, func(a, b string) int {
		as, bs := strings.Contains(a, "_"), strings.Contains(b, "_")
		if as != bs {
			if as {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	})
}
