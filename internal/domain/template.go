package domain

import (
	"strings"
	"time"

	"github.com/creasty/defaults"
)

// Category indicates whether a template is free to use or must be purchased.
type Category string

const (
	// CategoryFree templates can be saved and used without payment.
	CategoryFree Category = "free"
	// CategoryPremium templates carry a price and require an approved payment.
	CategoryPremium Category = "premium"
)

// Layout selects the preview variant family used to paint a card.
type Layout string

const (
	LayoutMinimal      Layout = "minimal"
	LayoutModern       Layout = "modern"
	LayoutCreative     Layout = "creative"
	LayoutProfessional Layout = "professional"
	LayoutArtistic     Layout = "artistic"
)

// Layouts lists every supported layout in display order.
var Layouts = []Layout{LayoutMinimal, LayoutModern, LayoutCreative, LayoutProfessional, LayoutArtistic}

// SocialStyle controls how a single social link chip renders.
type SocialStyle string

const (
	// SocialStyleDefault renders an icon followed by the platform label.
	SocialStyleDefault SocialStyle = "default"
	// SocialStyleCircles renders an icon-only circle.
	SocialStyleCircles SocialStyle = "circles"
	// SocialStyleFullBlock renders a full-width block.
	SocialStyleFullBlock SocialStyle = "fullblock"
)

// SocialStyles lists the supported social chip styles.
var SocialStyles = []SocialStyle{SocialStyleDefault, SocialStyleCircles, SocialStyleFullBlock}

// ConnectStyle controls the container layout of the social links section.
type ConnectStyle string

const (
	ConnectStyleGrid    ConnectStyle = "grid"
	ConnectStyleList    ConnectStyle = "list"
	ConnectStyleCompact ConnectStyle = "compact"
)

// ConnectStyles lists the supported connect section layouts.
var ConnectStyles = []ConnectStyle{ConnectStyleGrid, ConnectStyleList, ConnectStyleCompact}

// ProfileStyle controls avatar and bio alignment.
type ProfileStyle string

const (
	ProfileStyleLeft     ProfileStyle = "left"
	ProfileStyleCentered ProfileStyle = "centered"
	ProfileStyleRight    ProfileStyle = "right"
)

// ProfileStyles lists the supported profile alignments.
var ProfileStyles = []ProfileStyle{ProfileStyleLeft, ProfileStyleCentered, ProfileStyleRight}

// Colors maps named color roles to CSS color values. Empty roles fall back to the
// palette of the rendering variant.
type Colors struct {
	Primary         string `json:"primary,omitempty"`
	Secondary       string `json:"secondary,omitempty"`
	Accent          string `json:"accent,omitempty"`
	Background      string `json:"background,omitempty"`
	Text            string `json:"text,omitempty"`
	Title           string `json:"title,omitempty"`
	Description     string `json:"description,omitempty"`
	CoverBackground string `json:"coverBackground,omitempty"`
	Icon            string `json:"icon,omitempty"`
}

// ColorRoles lists the canonical role keys in a stable order.
var ColorRoles = []string{"primary", "secondary", "accent", "background", "text", "title", "description", "coverBackground", "icon"}

// Get returns the value assigned to role, or "" for unknown roles.
func (c Colors) Get(role string) string {
	if p := c.field(role); p != nil {
		return *p
	}
	return ""
}

// Set assigns value to role and reports whether the role exists.
func (c *Colors) Set(role, value string) bool {
	p := c.field(role)
	if p == nil {
		return false
	}
	*p = strings.TrimSpace(value)
	return true
}

// IsZero reports whether no role carries a value.
func (c Colors) IsZero() bool {
	return c == Colors{}
}

func (c *Colors) field(role string) *string {
	switch role {
	case "primary":
		return &c.Primary
	case "secondary":
		return &c.Secondary
	case "accent":
		return &c.Accent
	case "background":
		return &c.Background
	case "text":
		return &c.Text
	case "title":
		return &c.Title
	case "description":
		return &c.Description
	case "coverBackground":
		return &c.CoverBackground
	case "icon":
		return &c.Icon
	}
	return nil
}

// Fonts assigns font families to the title and description text roles.
type Fonts struct {
	Title       string `json:"title" default:"Inter"`
	Description string `json:"description" default:"Inter"`
}

// FontSizes assigns pixel sizes to the title and description text roles.
type FontSizes struct {
	Title       int `json:"title" default:"22"`
	Description int `json:"description" default:"12"`
}

// Template is the canonical, normalized template style configuration that every
// preview reads.
type Template struct {
	ID              string       `json:"id"`
	Slug            string       `json:"slug"`
	Name            string       `json:"name"`
	Description     string       `json:"description,omitempty"`
	Category        Category     `json:"category" default:"free"`
	IsPremium       bool         `json:"isPremium"`
	Price           float64      `json:"price"`
	OriginalPrice   float64      `json:"originalPrice"`
	DiscountPercent float64      `json:"discountPercent"`
	PreviewURL      string       `json:"previewUrl,omitempty"`
	ThumbnailURL    string       `json:"thumbnailUrl,omitempty"`
	Colors          Colors       `json:"colors"`
	Fonts           Fonts        `json:"fonts"`
	FontSizes       FontSizes    `json:"fontSizes"`
	Layout          Layout       `json:"layout" default:"minimal"`
	Variant         string       `json:"variant,omitempty"`
	SocialStyle     SocialStyle  `json:"socialStyle" default:"default"`
	ConnectStyle    ConnectStyle `json:"connectStyle" default:"grid"`
	ProfileStyle    ProfileStyle `json:"profileStyle" default:"centered"`
	Features        []string     `json:"features"`
	Tags            []string     `json:"tags"`
	IsPopular       bool         `json:"isPopular"`
	IsNew           bool         `json:"isNew"`
	IsHidden        bool         `json:"isHidden"`
	Author          *User        `json:"author,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// NewTemplate returns a template populated with the default style values.
func NewTemplate() Template {
	var tpl Template
	ApplyDefaults(&tpl)
	return tpl
}

// ApplyDefaults fills every zero-valued style field with its default. Features and
// tags become empty, non-nil sequences.
func ApplyDefaults(tpl *Template) {
	if tpl == nil {
		return
	}
	_ = defaults.Set(tpl)
	if tpl.Features == nil {
		tpl.Features = []string{}
	}
	if tpl.Tags == nil {
		tpl.Tags = []string{}
	}
}

// Key returns the identifier used in backend URLs, preferring the slug.
func (t Template) Key() string {
	if t.Slug != "" {
		return t.Slug
	}
	return t.ID
}

// ParseCategory maps free-form input onto a Category.
func ParseCategory(value string) (Category, bool) {
	switch Category(strings.ToLower(strings.TrimSpace(value))) {
	case CategoryFree:
		return CategoryFree, true
	case CategoryPremium:
		return CategoryPremium, true
	}
	return "", false
}

// ParseLayout maps free-form input onto a Layout.
func ParseLayout(value string) (Layout, bool) {
	return parseEnum(value, Layouts)
}

// ParseSocialStyle maps free-form input onto a SocialStyle.
func ParseSocialStyle(value string) (SocialStyle, bool) {
	return parseEnum(value, SocialStyles)
}

// ParseConnectStyle maps free-form input onto a ConnectStyle.
func ParseConnectStyle(value string) (ConnectStyle, bool) {
	return parseEnum(value, ConnectStyles)
}

// ParseProfileStyle maps free-form input onto a ProfileStyle. "center" is accepted as an
// alias of centered.
func ParseProfileStyle(value string) (ProfileStyle, bool) {
	if strings.EqualFold(strings.TrimSpace(value), "center") {
		return ProfileStyleCentered, true
	}
	return parseEnum(value, ProfileStyles)
}

func parseEnum[T ~string](value string, allowed []T) (T, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range allowed {
		if string(candidate) == value {
			return candidate, true
		}
	}
	var zero T
	return zero, false
}
