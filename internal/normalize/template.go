// Package normalize converts heterogeneous backend records into the canonical domain
// shapes. Every function is pure and total: a field that cannot be parsed degrades to
// its default without affecting the rest of the record.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/juantap/web/internal/domain"
	"github.com/juantap/web/internal/platform/textutil"
	"github.com/juantap/web/internal/pricing"
)

// Field precedence tables. When several spellings are present the first listed wins;
// snake_case backend spellings are listed ahead of their camelCase twins.
var (
	templateIDKeys          = []string{"id", "template_id", "templateId"}
	templateSlugKeys        = []string{"slug", "template_slug", "templateSlug"}
	templateNameKeys        = []string{"name", "title"}
	templateDescriptionKeys = []string{"description", "summary"}
	categoryKeys            = []string{"category"}
	premiumKeys             = []string{"is_premium", "isPremium"}
	priceKeys               = []string{"price"}
	originalPriceKeys       = []string{"original_price", "originalPrice"}
	discountKeys            = []string{"discount_percent", "discount", "discountPercent"}
	previewURLKeys          = []string{"preview_url", "previewUrl"}
	thumbnailKeys           = []string{"thumbnail_url", "thumbnail", "thumbnailUrl"}
	colorsKeys              = []string{"colors", "colours"}
	fontsKeys               = []string{"fonts"}
	fontSizesKeys           = []string{"font_sizes", "fontSizes", "font_size", "fontSize"}
	layoutKeys              = []string{"layout"}
	variantKeys             = []string{"variant", "variant_id", "variantId"}
	socialStyleKeys         = []string{"social_style", "socialStyle"}
	connectStyleKeys        = []string{"connection_style", "connect_style", "connectStyle", "connectionStyle"}
	profileStyleKeys        = []string{"profile_style", "profileStyle"}
	featuresKeys            = []string{"features"}
	tagsKeys                = []string{"tags"}
	popularKeys             = []string{"is_popular", "isPopular"}
	newKeys                 = []string{"is_new", "isNew"}
	hiddenKeys              = []string{"is_hidden", "isHidden"}
	createdAtKeys           = []string{"created_at", "createdAt"}
	updatedAtKeys           = []string{"updated_at", "updatedAt"}
	authorKeys              = []string{"user", "author"}
)

// Color role aliases, keyed by roleKey-folded spelling.
var colorRoleAliases = map[string]string{
	"primary":         "primary",
	"secondary":       "secondary",
	"accent":          "accent",
	"background":      "background",
	"bg":              "background",
	"text":            "text",
	"title":           "title",
	"heading":         "title",
	"description":     "description",
	"body":            "description",
	"coverbackground": "coverBackground",
	"cover":           "coverBackground",
	"coverbg":         "coverBackground",
	"icon":            "icon",
	"icons":           "icon",
}

const (
	textRoleTitle       = "title"
	textRoleDescription = "description"
)

var textRoleAliases = map[string]string{
	"title":           textRoleTitle,
	"heading":         textRoleTitle,
	"titlefont":       textRoleTitle,
	"headingfont":     textRoleTitle,
	"description":     textRoleDescription,
	"body":            textRoleDescription,
	"descriptionfont": textRoleDescription,
	"bodyfont":        textRoleDescription,
}

// Template normalizes one backend template record.
func Template(raw any) domain.Template {
	obj := asObject(raw)
	tpl := domain.Template{
		ID:           stringField(obj, templateIDKeys...),
		Name:         stringField(obj, templateNameKeys...),
		Description:  stringField(obj, templateDescriptionKeys...),
		PreviewURL:   stringField(obj, previewURLKeys...),
		ThumbnailURL: stringField(obj, thumbnailKeys...),
		Features:     listField(obj, featuresKeys...),
		Tags:         listField(obj, tagsKeys...),
		CreatedAt:    timeField(obj, createdAtKeys...),
		UpdatedAt:    timeField(obj, updatedAtKeys...),
	}

	tpl.Slug = strings.TrimSpace(stringField(obj, templateSlugKeys...))
	if tpl.Slug == "" {
		tpl.Slug = textutil.Slugify(tpl.Name)
	}

	tpl.IsPopular, _ = boolField(obj, popularKeys...)
	tpl.IsNew, _ = boolField(obj, newKeys...)
	tpl.IsHidden, _ = boolField(obj, hiddenKeys...)

	applyPricing(&tpl, obj)

	if value, ok := lookup(obj, colorsKeys...); ok {
		tpl.Colors = colors(value)
	}
	if value, ok := lookup(obj, fontsKeys...); ok {
		tpl.Fonts = fonts(value)
	}
	if value, ok := lookup(obj, fontSizesKeys...); ok {
		tpl.FontSizes = fontSizes(value)
	}

	if layout, ok := domain.ParseLayout(stringField(obj, layoutKeys...)); ok {
		tpl.Layout = layout
	}
	tpl.Variant = textutil.Slugify(stringField(obj, variantKeys...))
	if style, ok := domain.ParseSocialStyle(stringField(obj, socialStyleKeys...)); ok {
		tpl.SocialStyle = style
	}
	if style, ok := domain.ParseConnectStyle(stringField(obj, connectStyleKeys...)); ok {
		tpl.ConnectStyle = style
	}
	if style, ok := domain.ParseProfileStyle(stringField(obj, profileStyleKeys...)); ok {
		tpl.ProfileStyle = style
	}

	if value, ok := lookup(obj, authorKeys...); ok {
		if author := asObject(value); len(author) > 0 {
			user := User(author)
			tpl.Author = &user
		}
	}

	domain.ApplyDefaults(&tpl)
	return tpl
}

// TemplateJSON normalizes a JSON-encoded record. It only fails when data is not JSON.
func TemplateJSON(data []byte) (domain.Template, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.Template{}, fmt.Errorf("normalize: decode template: %w", err)
	}
	return Template(raw), nil
}

// TemplateList normalizes a bare array of records or a list envelope ({"data": [...]},
// {"templates": [...]}, {"items": [...]}, including a paginated {"data": {"data": [...]}}).
func TemplateList(raw any) []domain.Template {
	items := listItems(raw)
	out := make([]domain.Template, 0, len(items))
	for _, item := range items {
		if obj := asObject(item); len(obj) > 0 {
			out = append(out, Template(obj))
		}
	}
	return out
}

func listItems(raw any) []any {
	decoded := decodeEmbedded(raw)
	if items, ok := decoded.([]any); ok {
		return items
	}
	obj := asObject(decoded)
	for _, key := range []string{"data", "templates", "items", "results"} {
		value, ok := obj[key]
		if !ok {
			continue
		}
		if items, ok := value.([]any); ok {
			return items
		}
		if nested := asObject(value); nested != nil {
			return listItems(nested)
		}
	}
	return nil
}

func applyPricing(tpl *domain.Template, obj object) {
	premiumFlag, hasPremiumFlag := boolField(obj, premiumKeys...)
	price, _ := numberField(obj, priceKeys...)
	original, _ := numberField(obj, originalPriceKeys...)
	discount, _ := numberField(obj, discountKeys...)

	price = math.Max(price, 0)
	original = math.Max(original, 0)
	discount = math.Min(math.Max(discount, 0), 100)

	category, ok := domain.ParseCategory(stringField(obj, categoryKeys...))
	if !ok {
		switch {
		case hasPremiumFlag:
			category = domain.CategoryFree
			if premiumFlag {
				category = domain.CategoryPremium
			}
		case price > 0:
			category = domain.CategoryPremium
		default:
			category = domain.CategoryFree
		}
	}

	tpl.Category = category
	tpl.IsPremium = category == domain.CategoryPremium
	tpl.DiscountPercent = discount

	// A premium price always derives from the rounded original price. A record that only
	// carries a price takes it as the undiscounted original.
	switch {
	case !tpl.IsPremium:
		tpl.OriginalPrice = pricing.Round(original)
		tpl.Price = 0
	case original > 0:
		tpl.OriginalPrice = pricing.Round(original)
		tpl.Price = pricing.Calculate(tpl.OriginalPrice, discount)
	default:
		tpl.OriginalPrice = pricing.Round(price)
		tpl.DiscountPercent = 0
		tpl.Price = tpl.OriginalPrice
	}
}

func listField(obj object, keys ...string) []string {
	value, ok := lookup(obj, keys...)
	if !ok {
		return []string{}
	}
	return stringList(value)
}

func colors(value any) domain.Colors {
	var out domain.Colors
	entries := textutil.StringMapFromAny(asObject(decodeEmbedded(value)))
	assigned := map[string]bool{}
	for _, key := range orderedKeys(entries) {
		role, ok := colorRoleAliases[roleKey(key)]
		if !ok || assigned[role] || entries[key] == "" {
			continue
		}
		out.Set(role, entries[key])
		assigned[role] = true
	}
	return out
}

func fonts(value any) domain.Fonts {
	var out domain.Fonts
	entries := textutil.StringMapFromAny(asObject(decodeEmbedded(value)))
	for _, key := range orderedKeys(entries) {
		family, ok := domain.CanonicalFontFamily(entries[key])
		if !ok {
			continue
		}
		switch textRoleAliases[roleKey(key)] {
		case textRoleTitle:
			if out.Title == "" {
				out.Title = family
			}
		case textRoleDescription:
			if out.Description == "" {
				out.Description = family
			}
		}
	}
	return out
}

func fontSizes(value any) domain.FontSizes {
	var out domain.FontSizes
	entries := textutil.StringMapFromAny(asObject(decodeEmbedded(value)))
	for _, key := range orderedKeys(entries) {
		size, ok := toNumber(entries[key])
		if !ok || size <= 0 {
			continue
		}
		px := int(math.Round(size))
		switch textRoleAliases[roleKey(key)] {
		case textRoleTitle:
			if out.Title == 0 {
				out.Title = px
			}
		case textRoleDescription:
			if out.Description == 0 {
				out.Description = px
			}
		}
	}
	return out
}
