package textutil

import (
	"regexp"
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"punctuation collapses", "Minimal Clean!!", "minimal-clean"},
		{"leading and trailing separators", "  --Neon Cyber--  ", "neon-cyber"},
		{"digits kept", "Card 2024 Edition", "card-2024-edition"},
		{"non ascii stripped", "Café Noir", "caf-noir"},
		{"only separators", "!!!", ""},
		{"empty", "", ""},
		{"already slug", "glass-morphism", "glass-morphism"},
		{"underscores", "luxury_gold__v2", "luxury-gold-v2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Slugify(tc.in); got != tc.want {
				t.Fatalf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSlugifyProperties(t *testing.T) {
	alphabet := regexp.MustCompile(`^[a-z0-9-]*$`)
	inputs := []string{
		"Minimal Clean!!",
		"ÅNGSTRÖM studio",
		"-a-",
		"a--b",
		"  Mixed CASE input  ",
		"日本語 title 01",
		"tab\tseparated\nlines",
	}
	for _, in := range inputs {
		got := Slugify(in)
		if !alphabet.MatchString(got) {
			t.Fatalf("Slugify(%q) = %q contains characters outside [a-z0-9-]", in, got)
		}
		if strings.HasPrefix(got, "-") || strings.HasSuffix(got, "-") {
			t.Fatalf("Slugify(%q) = %q starts or ends with '-'", in, got)
		}
		if strings.Contains(got, "--") {
			t.Fatalf("Slugify(%q) = %q contains a doubled separator", in, got)
		}
		if upper := Slugify(strings.ToUpper(in)); upper != got {
			t.Fatalf("Slugify is case sensitive for %q: %q vs %q", in, got, upper)
		}
		if again := Slugify(got); again != got {
			t.Fatalf("Slugify not idempotent for %q: %q then %q", in, got, again)
		}
	}
}

func TestIsSlug(t *testing.T) {
	if !IsSlug("minimal-clean") {
		t.Fatalf("expected minimal-clean to be a slug")
	}
	if IsSlug("Minimal Clean") || IsSlug("") {
		t.Fatalf("expected non-slugs to be rejected")
	}
}
