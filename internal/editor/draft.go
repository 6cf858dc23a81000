// Package editor implements the admin template editor: a mutable draft whose setters keep
// the slug, pricing and style invariants of a template while it is being edited.
package editor

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/juantap/web/internal/domain"
	"github.com/juantap/web/internal/platform/textutil"
	"github.com/juantap/web/internal/pricing"
)

var (
	// ErrPriceDerived is returned when the price of a premium template is set directly.
	ErrPriceDerived = errors.New("editor: price is derived from original price and discount")
	// ErrFreePrice is returned when a positive price is set on a free template.
	ErrFreePrice = errors.New("editor: free templates cannot carry a price")
	// ErrUnknownRole is returned for color or text roles the template does not define.
	ErrUnknownRole = errors.New("editor: unknown role")
	// ErrInvalidColor is returned for values that are not CSS colors.
	ErrInvalidColor = errors.New("editor: invalid color value")
	// ErrFontNotAllowed is returned for families outside the allow-list.
	ErrFontNotAllowed = errors.New("editor: font family not allowed")
	// ErrFontSize is returned for sizes that are odd or outside the role's range.
	ErrFontSize = errors.New("editor: font size out of range")
	// ErrInvalidOption is returned for unknown enum values.
	ErrInvalidOption = errors.New("editor: invalid option")
	// ErrEmptyEntry is returned when an empty feature or tag is added.
	ErrEmptyEntry = errors.New("editor: entry must not be empty")
	// ErrIndexOutOfRange is returned when removing a list entry that does not exist.
	ErrIndexOutOfRange = errors.New("editor: index out of range")
	// ErrSlugLocked is returned when the slug of a persisted template is changed.
	ErrSlugLocked = errors.New("editor: slug cannot change once assigned")
	// ErrInvalidSlug is returned for slugs outside [a-z0-9-].
	ErrInvalidSlug = errors.New("editor: invalid slug")
)

// Text roles accepted by SetFont and SetFontSize.
const (
	RoleTitle       = "title"
	RoleDescription = "description"
)

// Option configures a Draft.
type Option func(*Draft)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *Draft) {
		if now != nil {
			d.now = now
		}
	}
}

// Draft is a template being edited. It is not safe for concurrent use; sequential edits
// to the same field follow last-write-wins.
type Draft struct {
	tpl        domain.Template
	now        func() time.Time
	slugLocked bool
}

// New starts a draft for a template that does not exist yet.
func New(opts ...Option) *Draft {
	d := &Draft{tpl: domain.NewTemplate(), now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	ts := d.timestamp()
	d.tpl.CreatedAt = ts
	d.tpl.UpdatedAt = ts
	return d
}

// Edit starts a draft from an existing template. Its slug is locked when the template
// already has an id or slug.
func Edit(tpl domain.Template, opts ...Option) *Draft {
	d := &Draft{tpl: clone(tpl), now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	domain.ApplyDefaults(&d.tpl)
	d.slugLocked = tpl.ID != "" || tpl.Slug != ""
	return d
}

// Template returns a copy of the current draft state.
func (d *Draft) Template() domain.Template {
	return clone(d.tpl)
}

// SlugLocked reports whether name edits still regenerate the slug.
func (d *Draft) SlugLocked() bool {
	return d.slugLocked
}

// AssignID records the id returned by the backend after the first save. From then on
// the slug no longer follows the name.
func (d *Draft) AssignID(id string) {
	d.tpl.ID = strings.TrimSpace(id)
	if d.tpl.ID != "" {
		d.slugLocked = true
	}
	d.touch()
}

// SetName updates the display name and, while the slug is unlocked, re-derives the slug.
func (d *Draft) SetName(name string) {
	d.tpl.Name = strings.TrimSpace(name)
	if !d.slugLocked {
		d.tpl.Slug = textutil.Slugify(d.tpl.Name)
	}
	d.touch()
}

// SetSlug assigns a slug manually. The first manual assignment wins over later name edits.
func (d *Draft) SetSlug(slug string) error {
	slug = strings.TrimSpace(slug)
	if d.slugLocked {
		if slug == d.tpl.Slug {
			return nil
		}
		return ErrSlugLocked
	}
	if !textutil.IsSlug(slug) {
		return fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	d.tpl.Slug = slug
	d.slugLocked = true
	d.touch()
	return nil
}

// SetDescription updates the description.
func (d *Draft) SetDescription(description string) {
	d.tpl.Description = strings.TrimSpace(description)
	d.touch()
}

// SetPreviewURL updates the preview image URL.
func (d *Draft) SetPreviewURL(url string) {
	d.tpl.PreviewURL = strings.TrimSpace(url)
	d.touch()
}

// SetThumbnailURL updates the thumbnail image URL.
func (d *Draft) SetThumbnailURL(url string) {
	d.tpl.ThumbnailURL = strings.TrimSpace(url)
	d.touch()
}

// SetCategory switches between free and premium. Switching to free zeroes the price but
// keeps the original price and discount so that switching back restores the quote.
func (d *Draft) SetCategory(category domain.Category) error {
	parsed, ok := domain.ParseCategory(string(category))
	if !ok {
		return fmt.Errorf("%w: category %q", ErrInvalidOption, category)
	}
	d.tpl.Category = parsed
	d.tpl.IsPremium = parsed == domain.CategoryPremium
	d.recomputePrice()
	d.touch()
	return nil
}

// SetOriginalPrice updates the original price and recomputes the price from the current
// discount.
func (d *Draft) SetOriginalPrice(original float64) error {
	quote, err := d.quote().WithOriginalPrice(original)
	if err != nil {
		return err
	}
	d.tpl.OriginalPrice = quote.OriginalPrice
	d.recomputePrice()
	d.touch()
	return nil
}

// SetDiscountPercent updates the discount and recomputes the price from the current
// original price, which is left untouched.
func (d *Draft) SetDiscountPercent(discount float64) error {
	quote, err := d.quote().WithDiscountPercent(discount)
	if err != nil {
		return err
	}
	d.tpl.DiscountPercent = quote.DiscountPercent
	d.recomputePrice()
	d.touch()
	return nil
}

// SetPrice exists for API symmetry: premium prices are always derived and free templates
// are always zero, so only a zero price on a free template is accepted.
func (d *Draft) SetPrice(price float64) error {
	if d.tpl.IsPremium {
		return ErrPriceDerived
	}
	if price != 0 {
		return ErrFreePrice
	}
	d.tpl.Price = 0
	d.touch()
	return nil
}

// SetColor assigns a CSS color to role. An empty value clears the role.
func (d *Draft) SetColor(role, value string) error {
	value = strings.TrimSpace(value)
	if value != "" && !domain.IsColor(value) {
		return fmt.Errorf("%w: %q", ErrInvalidColor, value)
	}
	if !d.tpl.Colors.Set(role, value) {
		return fmt.Errorf("%w: color %q", ErrUnknownRole, role)
	}
	d.touch()
	return nil
}

// SetFont assigns an allow-listed font family to a text role.
func (d *Draft) SetFont(role, family string) error {
	canonical, ok := domain.CanonicalFontFamily(family)
	if !ok {
		return fmt.Errorf("%w: %q", ErrFontNotAllowed, family)
	}
	switch role {
	case RoleTitle:
		d.tpl.Fonts.Title = canonical
	case RoleDescription:
		d.tpl.Fonts.Description = canonical
	default:
		return fmt.Errorf("%w: font %q", ErrUnknownRole, role)
	}
	d.touch()
	return nil
}

// SetFontSize assigns a pixel size to a text role. Sizes must be even and within the
// role's bounds.
func (d *Draft) SetFontSize(role string, px int) error {
	minSize, maxSize, ok := FontSizeBounds(role)
	if !ok {
		return fmt.Errorf("%w: font size %q", ErrUnknownRole, role)
	}
	if px%2 != 0 || px < minSize || px > maxSize {
		return fmt.Errorf("%w: %s must be an even number in [%d,%d], got %d", ErrFontSize, role, minSize, maxSize, px)
	}
	if role == RoleTitle {
		d.tpl.FontSizes.Title = px
	} else {
		d.tpl.FontSizes.Description = px
	}
	d.touch()
	return nil
}

// FontSizeBounds returns the inclusive size range of a text role.
func FontSizeBounds(role string) (minSize, maxSize int, ok bool) {
	switch role {
	case RoleTitle:
		return domain.TitleFontSizeMin, domain.TitleFontSizeMax, true
	case RoleDescription:
		return domain.DescriptionFontSizeMin, domain.DescriptionFontSizeMax, true
	}
	return 0, 0, false
}

// FontSizeOptions lists the sizes a role accepts, in ascending order.
func FontSizeOptions(role string) []int {
	minSize, maxSize, ok := FontSizeBounds(role)
	if !ok {
		return nil
	}
	out := make([]int, 0, (maxSize-minSize)/2+1)
	for px := minSize; px <= maxSize; px += 2 {
		out = append(out, px)
	}
	return out
}

// SetLayout selects the preview layout.
func (d *Draft) SetLayout(value string) error {
	layout, ok := domain.ParseLayout(value)
	if !ok {
		return fmt.Errorf("%w: layout %q", ErrInvalidOption, value)
	}
	d.tpl.Layout = layout
	d.touch()
	return nil
}

// SetVariant selects a named premium variant. An empty value clears it.
func (d *Draft) SetVariant(value string) {
	d.tpl.Variant = textutil.Slugify(value)
	d.touch()
}

// SetSocialStyle selects how social link chips render.
func (d *Draft) SetSocialStyle(value string) error {
	style, ok := domain.ParseSocialStyle(value)
	if !ok {
		return fmt.Errorf("%w: social style %q", ErrInvalidOption, value)
	}
	d.tpl.SocialStyle = style
	d.touch()
	return nil
}

// SetConnectStyle selects the social links container layout.
func (d *Draft) SetConnectStyle(value string) error {
	style, ok := domain.ParseConnectStyle(value)
	if !ok {
		return fmt.Errorf("%w: connect style %q", ErrInvalidOption, value)
	}
	d.tpl.ConnectStyle = style
	d.touch()
	return nil
}

// SetProfileStyle selects the avatar and bio alignment.
func (d *Draft) SetProfileStyle(value string) error {
	style, ok := domain.ParseProfileStyle(value)
	if !ok {
		return fmt.Errorf("%w: profile style %q", ErrInvalidOption, value)
	}
	d.tpl.ProfileStyle = style
	d.touch()
	return nil
}

// AddFeature appends a feature. Duplicates are allowed.
func (d *Draft) AddFeature(feature string) error {
	return d.add(&d.tpl.Features, feature)
}

// RemoveFeature removes the feature at index.
func (d *Draft) RemoveFeature(index int) error {
	return d.remove(&d.tpl.Features, index)
}

// AddTag appends a tag. Duplicates are allowed.
func (d *Draft) AddTag(tag string) error {
	return d.add(&d.tpl.Tags, tag)
}

// RemoveTag removes the tag at index.
func (d *Draft) RemoveTag(index int) error {
	return d.remove(&d.tpl.Tags, index)
}

// SetPopular toggles the popular badge.
func (d *Draft) SetPopular(v bool) {
	d.tpl.IsPopular = v
	d.touch()
}

// SetNew toggles the new badge.
func (d *Draft) SetNew(v bool) {
	d.tpl.IsNew = v
	d.touch()
}

// SetHidden toggles catalog visibility.
func (d *Draft) SetHidden(v bool) {
	d.tpl.IsHidden = v
	d.touch()
}

func (d *Draft) add(list *[]string, entry string) error {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return ErrEmptyEntry
	}
	*list = append(*list, entry)
	d.touch()
	return nil
}

func (d *Draft) remove(list *[]string, index int) error {
	if index < 0 || index >= len(*list) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	*list = slices.Delete(*list, index, index+1)
	d.touch()
	return nil
}

func (d *Draft) quote() pricing.Quote {
	return pricing.Quote{
		OriginalPrice:   d.tpl.OriginalPrice,
		DiscountPercent: d.tpl.DiscountPercent,
		Price:           d.tpl.Price,
	}
}

func (d *Draft) recomputePrice() {
	if !d.tpl.IsPremium {
		d.tpl.Price = 0
		return
	}
	d.tpl.Price = pricing.Calculate(d.tpl.OriginalPrice, d.tpl.DiscountPercent)
}

func (d *Draft) touch() {
	d.tpl.UpdatedAt = d.timestamp()
}

func (d *Draft) timestamp() time.Time {
	return d.now().UTC()
}

func clone(tpl domain.Template) domain.Template {
	tpl.Features = slices.Clone(tpl.Features)
	tpl.Tags = slices.Clone(tpl.Tags)
	if tpl.Author != nil {
		author := *tpl.Author
		author.SocialLinks = slices.Clone(author.SocialLinks)
		tpl.Author = &author
	}
	return tpl
}
