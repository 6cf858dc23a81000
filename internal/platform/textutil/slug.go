package textutil

import "strings"

// Slugify derives a URL-safe identifier from a display name. The input is lowercased,
// every run of characters outside [a-z0-9] collapses into a single '-', and leading or
// trailing separators are stripped. Non-ASCII letters are treated as separators.
func Slugify(name string) string {
	lowered := strings.ToLower(name)
	var b strings.Builder
	b.Grow(len(lowered))
	pendingDash := false
	for i := 0; i < len(lowered); i++ {
		c := lowered[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteByte(c)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// IsSlug reports whether value is already in Slugify's output form.
func IsSlug(value string) bool {
	return value != "" && Slugify(value) == value
}
