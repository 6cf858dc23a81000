package textutil

import (
	"reflect"
	"testing"
)

func TestNormalizeStringList(t *testing.T) {
	got := NormalizeStringList([]string{" QR sharing ", "", "  ", "Analytics", "QR sharing"})
	want := []string{"QR sharing", "Analytics", "QR sharing"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %#v got %#v", want, got)
	}
	if out := NormalizeStringList(nil); out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", out)
	}
}

func TestStringMapFromAny(t *testing.T) {
	t.Run("stringifies scalars and drops nested values", func(t *testing.T) {
		input := map[string]any{
			" primary ": " #111827 ",
			"size":      float64(12),
			"flag":      true,
			"nested":    map[string]any{"x": "y"},
			"list":      []any{"a"},
			" ":         "ignored",
		}
		expected := map[string]string{
			"primary": "#111827",
			"size":    "12",
			"flag":    "true",
		}
		if actual := StringMapFromAny(input); !reflect.DeepEqual(actual, expected) {
			t.Fatalf("expected %#v got %#v", expected, actual)
		}
	})

	t.Run("returns nil for nil or empty input", func(t *testing.T) {
		if StringMapFromAny(nil) != nil {
			t.Fatalf("expected nil for nil input")
		}
		if StringMapFromAny(map[string]any{"nested": []any{}}) != nil {
			t.Fatalf("expected nil when nothing survives")
		}
	})
}
