package editor

import (
	"errors"
	"net/url"
	"sort"
	"strings"

	"github.com/gorilla/schema"

	"github.com/juantap/web/internal/domain"
)

// Form is the admin editor form. Pointer fields distinguish "absent" from "empty" so a
// partial form only touches the fields it carries.
type Form struct {
	Name            *string  `schema:"name"`
	Slug            *string  `schema:"slug"`
	Description     *string  `schema:"description"`
	Category        *string  `schema:"category"`
	OriginalPrice   *float64 `schema:"original_price"`
	DiscountPercent *float64 `schema:"discount_percent"`
	PreviewURL      *string  `schema:"preview_url"`
	ThumbnailURL    *string  `schema:"thumbnail_url"`
	Layout          *string  `schema:"layout"`
	Variant         *string  `schema:"variant"`
	SocialStyle     *string  `schema:"social_style"`
	ConnectStyle    *string  `schema:"connect_style"`
	ProfileStyle    *string  `schema:"profile_style"`
	TitleFont       *string  `schema:"font_title"`
	DescriptionFont *string  `schema:"font_description"`
	TitleSize       *int     `schema:"font_size_title"`
	DescriptionSize *int     `schema:"font_size_description"`
	Features        []string `schema:"features"`
	Tags            []string `schema:"tags"`
	Popular         *bool    `schema:"is_popular"`
	New             *bool    `schema:"is_new"`
	Hidden          *bool    `schema:"is_hidden"`

	Colors map[string]string `schema:"-"`
}

// FieldErrors maps form field names to user-facing messages.
type FieldErrors map[string]string

// Error implements the error interface with a stable field order.
func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for key := range e {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+e[key])
	}
	return "editor: invalid form: " + strings.Join(parts, "; ")
}

// First returns the message of the alphabetically first invalid field.
func (e FieldErrors) First() string {
	first := ""
	for key := range e {
		if first == "" || key < first {
			first = key
		}
	}
	return e[first]
}

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.ZeroEmpty(false)
	return d
}

// DecodeForm parses form values. Colors are read from "color_<role>" keys and from
// "colors[<role>]".
func DecodeForm(values url.Values) (Form, error) {
	var form Form
	if err := decoder.Decode(&form, values); err != nil {
		var multi schema.MultiError
		if errors.As(err, &multi) {
			fields := FieldErrors{}
			for field := range multi {
				fields[field] = "invalid value"
			}
			return Form{}, fields
		}
		return Form{}, err
	}
	form.Colors = colorValues(values)
	form.Features = nonEmpty(form.Features)
	form.Tags = nonEmpty(form.Tags)
	return form, nil
}

func colorValues(values url.Values) map[string]string {
	out := map[string]string{}
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		var role string
		switch {
		case strings.HasPrefix(key, "color_"):
			role = strings.TrimPrefix(key, "color_")
		case strings.HasPrefix(key, "colors[") && strings.HasSuffix(key, "]"):
			role = strings.TrimSuffix(strings.TrimPrefix(key, "colors["), "]")
		default:
			continue
		}
		out[role] = vals[len(vals)-1]
	}
	return out
}

func nonEmpty(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Apply applies every present form field to the draft. Category is applied before the
// pricing inputs; valid fields are applied even when others fail. The returned
// FieldErrors is nil when every field was accepted.
func (d *Draft) Apply(form Form) error {
	errs := FieldErrors{}
	check := func(field string, err error) {
		if err != nil {
			errs[field] = message(err)
		}
	}

	if form.Name != nil {
		d.SetName(*form.Name)
	}
	if form.Slug != nil && strings.TrimSpace(*form.Slug) != "" {
		check("slug", d.SetSlug(*form.Slug))
	}
	if form.Description != nil {
		d.SetDescription(*form.Description)
	}
	if form.Category != nil {
		check("category", d.SetCategory(domain.Category(*form.Category)))
	}
	if form.OriginalPrice != nil {
		check("original_price", d.SetOriginalPrice(*form.OriginalPrice))
	}
	if form.DiscountPercent != nil {
		check("discount_percent", d.SetDiscountPercent(*form.DiscountPercent))
	}
	if form.PreviewURL != nil {
		d.SetPreviewURL(*form.PreviewURL)
	}
	if form.ThumbnailURL != nil {
		d.SetThumbnailURL(*form.ThumbnailURL)
	}
	if form.Layout != nil {
		check("layout", d.SetLayout(*form.Layout))
	}
	if form.Variant != nil {
		d.SetVariant(*form.Variant)
	}
	if form.SocialStyle != nil {
		check("social_style", d.SetSocialStyle(*form.SocialStyle))
	}
	if form.ConnectStyle != nil {
		check("connect_style", d.SetConnectStyle(*form.ConnectStyle))
	}
	if form.ProfileStyle != nil {
		check("profile_style", d.SetProfileStyle(*form.ProfileStyle))
	}
	if form.TitleFont != nil {
		check("font_title", d.SetFont(RoleTitle, *form.TitleFont))
	}
	if form.DescriptionFont != nil {
		check("font_description", d.SetFont(RoleDescription, *form.DescriptionFont))
	}
	if form.TitleSize != nil {
		check("font_size_title", d.SetFontSize(RoleTitle, *form.TitleSize))
	}
	if form.DescriptionSize != nil {
		check("font_size_description", d.SetFontSize(RoleDescription, *form.DescriptionSize))
	}
	roles := make([]string, 0, len(form.Colors))
	for role := range form.Colors {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	for _, role := range roles {
		check("color_"+role, d.SetColor(role, form.Colors[role]))
	}
	if form.Features != nil {
		d.replace(&d.tpl.Features, form.Features)
	}
	if form.Tags != nil {
		d.replace(&d.tpl.Tags, form.Tags)
	}
	if form.Popular != nil {
		d.SetPopular(*form.Popular)
	}
	if form.New != nil {
		d.SetNew(*form.New)
	}
	if form.Hidden != nil {
		d.SetHidden(*form.Hidden)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (d *Draft) replace(list *[]string, values []string) {
	*list = append([]string{}, values...)
	d.touch()
}

func message(err error) string {
	switch {
	case errors.Is(err, ErrFontSize):
		return "Choose an even size within the allowed range."
	case errors.Is(err, ErrFontNotAllowed):
		return "Choose one of the available fonts."
	case errors.Is(err, ErrInvalidColor):
		return "Enter a valid CSS color."
	case errors.Is(err, ErrUnknownRole):
		return "Unknown field."
	case errors.Is(err, ErrInvalidOption):
		return "Choose one of the available options."
	case errors.Is(err, ErrSlugLocked):
		return "The slug cannot be changed after the template is created."
	case errors.Is(err, ErrInvalidSlug):
		return "Use lowercase letters, numbers and dashes only."
	}
	return strings.TrimPrefix(err.Error(), "pricing: ")
}
