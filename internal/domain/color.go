package domain

import (
	"regexp"
	"strings"
)

var (
	hexColorPattern  = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	funcColorPattern = regexp.MustCompile(`^(?:rgb|rgba|hsl|hsla)\(\s*[0-9.%\s,/+-]+\)$`)
	namedColor       = regexp.MustCompile(`^[a-zA-Z]{3,20}$`)
	gradientPattern  = regexp.MustCompile(`^(?:linear|radial)-gradient\([#a-zA-Z0-9.%\s,()/+-]+\)$`)
)

// IsColor reports whether value is a CSS color this service will emit into a style
// attribute: hex, rgb(a), hsl(a), a named color, or a linear/radial gradient built
// from those.
func IsColor(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" || len(value) > 200 {
		return false
	}
	return hexColorPattern.MatchString(value) ||
		funcColorPattern.MatchString(strings.ToLower(value)) ||
		namedColor.MatchString(value) ||
		gradientPattern.MatchString(strings.ToLower(value))
}
