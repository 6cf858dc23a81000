package preview

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/juantap/web/internal/domain"
)

//go:embed variants.yaml
var defaultVariantsYAML []byte

// Variant is one visual theme of the preview card. All variants share the same markup and
// differ only in these constants.
type Variant struct {
	ID      string
	Layout  domain.Layout
	Label   string
	Premium bool
	Palette domain.Colors
	Card    CardStyle
}

// CardStyle holds the non-color style constants of a variant.
type CardStyle struct {
	Radius      string `yaml:"radius"`
	Shadow      string `yaml:"shadow"`
	Border      string `yaml:"border"`
	CoverHeight string `yaml:"coverHeight"`
	AvatarSize  string `yaml:"avatarSize"`
	AvatarShape string `yaml:"avatarShape"`
	ChipRadius  string `yaml:"chipRadius"`
	Backdrop    string `yaml:"backdrop"`
}

type variantFile struct {
	Default  string          `yaml:"default"`
	Variants []variantRecord `yaml:"variants"`
}

type variantRecord struct {
	ID      string            `yaml:"id"`
	Layout  string            `yaml:"layout"`
	Label   string            `yaml:"label"`
	Premium bool              `yaml:"premium"`
	Palette map[string]string `yaml:"palette"`
	Card    CardStyle         `yaml:"card"`
}

// Catalog is the set of variants known to a renderer.
type Catalog struct {
	byID     map[string]Variant
	byLayout map[domain.Layout]Variant
	order    []string
	def      string
}

// ParseCatalog decodes a variant table. Every layout must have a variant, every palette
// role must be a valid color, and the default must exist.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file variantFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("preview: decode variants: %w", err)
	}

	cat := &Catalog{
		byID:     make(map[string]Variant, len(file.Variants)),
		byLayout: make(map[domain.Layout]Variant, len(domain.Layouts)),
		def:      strings.TrimSpace(file.Default),
	}
	for _, rec := range file.Variants {
		variant, err := rec.variant()
		if err != nil {
			return nil, err
		}
		if _, dup := cat.byID[variant.ID]; dup {
			return nil, fmt.Errorf("preview: duplicate variant %q", variant.ID)
		}
		cat.byID[variant.ID] = variant
		cat.order = append(cat.order, variant.ID)
		if !variant.Premium && string(variant.Layout) == variant.ID {
			cat.byLayout[variant.Layout] = variant
		}
	}
	for _, layout := range domain.Layouts {
		if _, ok := cat.byLayout[layout]; !ok {
			return nil, fmt.Errorf("preview: no variant for layout %q", layout)
		}
	}
	if _, ok := cat.byID[cat.def]; !ok {
		return nil, fmt.Errorf("preview: default variant %q not defined", cat.def)
	}
	return cat, nil
}

// DefaultCatalog returns the embedded variant table.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultVariantsYAML)
}

func (rec variantRecord) variant() (Variant, error) {
	id := strings.TrimSpace(rec.ID)
	if id == "" {
		return Variant{}, fmt.Errorf("preview: variant without id")
	}
	layout, ok := domain.ParseLayout(rec.Layout)
	if !ok {
		return Variant{}, fmt.Errorf("preview: variant %q has unknown layout %q", id, rec.Layout)
	}
	v := Variant{ID: id, Layout: layout, Label: rec.Label, Premium: rec.Premium, Card: rec.Card}
	for role, value := range rec.Palette {
		if !domain.IsColor(value) {
			return Variant{}, fmt.Errorf("preview: variant %q role %q: invalid color %q", id, role, value)
		}
		if !v.Palette.Set(role, value) {
			return Variant{}, fmt.Errorf("preview: variant %q: unknown color role %q", id, role)
		}
	}
	for _, value := range []string{v.Card.Radius, v.Card.Shadow, v.Card.Border, v.Card.CoverHeight, v.Card.AvatarSize, v.Card.ChipRadius, v.Card.Backdrop} {
		if strings.ContainsAny(value, ";{}<>\"'\\") {
			return Variant{}, fmt.Errorf("preview: variant %q: unsafe style value %q", id, value)
		}
	}
	return v, nil
}

// Resolve selects the variant for tpl: its named variant when known, else the variant of
// its layout, else the default.
func (c *Catalog) Resolve(tpl domain.Template) Variant {
	if v, ok := c.byID[tpl.Variant]; ok && tpl.Variant != "" {
		return v
	}
	if v, ok := c.byLayout[tpl.Layout]; ok {
		return v
	}
	return c.byID[c.def]
}

// Lookup returns the variant with the given id.
func (c *Catalog) Lookup(id string) (Variant, bool) {
	v, ok := c.byID[id]
	return v, ok
}

// Default returns the fallback variant.
func (c *Catalog) Default() Variant {
	return c.byID[c.def]
}

// Variants lists every variant in table order.
func (c *Catalog) Variants() []Variant {
	out := make([]Variant, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}
