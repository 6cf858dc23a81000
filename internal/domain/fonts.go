package domain

import "strings"

// FontFamilies is the allow-list of families a template may reference.
var FontFamilies = []string{
	"Inter",
	"Poppins",
	"Roboto",
	"Playfair Display",
	"Merriweather",
	"Open Sans",
	"Lato",
	"Source Sans Pro",
	"Nunito",
}

// DefaultFontFamily is used whenever a record names a family outside the allow-list.
const DefaultFontFamily = "Inter"

// Font size bounds enforced by the editor. Sizes must also be even.
const (
	TitleFontSizeMin       = 16
	TitleFontSizeMax       = 48
	DescriptionFontSizeMin = 12
	DescriptionFontSizeMax = 32
)

// CanonicalFontFamily returns the allow-listed spelling of family, matching
// case-insensitively and ignoring surrounding quotes and fallback stacks
// ("'Open Sans', sans-serif" resolves to "Open Sans").
func CanonicalFontFamily(family string) (string, bool) {
	if idx := strings.Index(family, ","); idx >= 0 {
		family = family[:idx]
	}
	family = strings.Trim(strings.TrimSpace(family), `"'`)
	for _, candidate := range FontFamilies {
		if strings.EqualFold(candidate, family) {
			return candidate, true
		}
	}
	return "", false
}
