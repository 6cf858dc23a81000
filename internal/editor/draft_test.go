package editor

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/juantap/web/internal/domain"
	"github.com/juantap/web/internal/normalize"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestDraft(t *testing.T) (*Draft, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	return New(WithClock(clock.Now)), clock
}

func TestSlugFollowsNameUntilLocked(t *testing.T) {
	d, _ := newTestDraft(t)

	d.SetName("Minimal Clean!!")
	require.Equal(t, "minimal-clean", d.Template().Slug)

	d.SetName("Minimal Clean v2")
	require.Equal(t, "minimal-clean-v2", d.Template().Slug)

	d.AssignID("tpl_01")
	d.SetName("Renamed Template")
	tpl := d.Template()
	require.Equal(t, "Renamed Template", tpl.Name)
	require.Equal(t, "minimal-clean-v2", tpl.Slug)
	require.True(t, d.SlugLocked())
}

func TestManualSlugWins(t *testing.T) {
	d, _ := newTestDraft(t)
	require.ErrorIs(t, d.SetSlug("Not A Slug"), ErrInvalidSlug)
	require.NoError(t, d.SetSlug("neon-cyber"))
	d.SetName("Something Else")
	require.Equal(t, "neon-cyber", d.Template().Slug)
	require.ErrorIs(t, d.SetSlug("other"), ErrSlugLocked)
	require.NoError(t, d.SetSlug("neon-cyber"))
}

func TestEditLocksExistingSlug(t *testing.T) {
	tpl := domain.NewTemplate()
	tpl.Slug = "luxury-gold"
	d := Edit(tpl)
	d.SetName("Luxury Gold Deluxe")
	require.Equal(t, "luxury-gold", d.Template().Slug)
}

func TestPriceRecomputation(t *testing.T) {
	d, _ := newTestDraft(t)
	require.NoError(t, d.SetCategory(domain.CategoryPremium))
	require.NoError(t, d.SetOriginalPrice(399))
	require.Equal(t, 399.0, d.Template().Price)

	require.NoError(t, d.SetDiscountPercent(25))
	tpl := d.Template()
	require.Equal(t, 299.25, tpl.Price)
	require.Equal(t, 399.0, tpl.OriginalPrice)

	for _, discount := range []float64{0, 10, 33.3, 50, 100} {
		require.NoError(t, d.SetDiscountPercent(discount))
		require.Equal(t, 399.0, d.Template().OriginalPrice, "discount edits must not change original price")
	}

	require.NoError(t, d.SetDiscountPercent(10))
	require.NoError(t, d.SetOriginalPrice(1000))
	require.Equal(t, 900.0, d.Template().Price)

	require.ErrorIs(t, d.SetPrice(5), ErrPriceDerived)
	require.Error(t, d.SetDiscountPercent(101))
	require.Error(t, d.SetOriginalPrice(-1))
	require.Equal(t, 900.0, d.Template().Price)
}

func TestEditingNormalizedTemplateKeepsPrice(t *testing.T) {
	records := []map[string]any{
		{"category": "premium", "original_price": 399, "discount": 0, "price": 199},
		{"category": "premium", "original_price": 10.005, "discount": 50},
		{"is_premium": true, "price": 149.999},
	}
	for _, raw := range records {
		tpl := normalize.Template(raw)
		d := Edit(tpl)
		d.SetName("Renamed")
		require.NoError(t, d.SetDiscountPercent(tpl.DiscountPercent))
		require.Equal(t, tpl.Price, d.Template().Price, "record %v", raw)
		require.Equal(t, tpl.OriginalPrice, d.Template().OriginalPrice, "record %v", raw)
	}
}

func TestSwitchingToFreeKeepsQuote(t *testing.T) {
	d, _ := newTestDraft(t)
	require.NoError(t, d.SetCategory("premium"))
	require.NoError(t, d.SetOriginalPrice(200))
	require.NoError(t, d.SetDiscountPercent(50))

	require.NoError(t, d.SetCategory(domain.CategoryFree))
	tpl := d.Template()
	require.False(t, tpl.IsPremium)
	require.Zero(t, tpl.Price)
	require.Equal(t, 200.0, tpl.OriginalPrice)
	require.Equal(t, 50.0, tpl.DiscountPercent)
	require.ErrorIs(t, d.SetPrice(10), ErrFreePrice)
	require.NoError(t, d.SetPrice(0))

	require.NoError(t, d.SetCategory(domain.CategoryPremium))
	require.Equal(t, 100.0, d.Template().Price)
	require.ErrorIs(t, d.SetCategory("gold"), ErrInvalidOption)
}

func TestStyleSetters(t *testing.T) {
	d, _ := newTestDraft(t)

	require.NoError(t, d.SetColor("primary", "#0ea5e9"))
	require.NoError(t, d.SetColor("coverBackground", "linear-gradient(135deg, #667eea, #764ba2)"))
	require.ErrorIs(t, d.SetColor("shadow", "#000"), ErrUnknownRole)
	require.ErrorIs(t, d.SetColor("primary", "red;x:y"), ErrInvalidColor)
	require.NoError(t, d.SetColor("accent", ""))

	require.NoError(t, d.SetFont(RoleTitle, "playfair display"))
	require.ErrorIs(t, d.SetFont(RoleDescription, "Comic Sans"), ErrFontNotAllowed)
	require.ErrorIs(t, d.SetFont("caption", "Inter"), ErrUnknownRole)

	require.NoError(t, d.SetFontSize(RoleTitle, 48))
	require.NoError(t, d.SetFontSize(RoleDescription, 12))
	require.ErrorIs(t, d.SetFontSize(RoleTitle, 23), ErrFontSize)
	require.ErrorIs(t, d.SetFontSize(RoleTitle, 50), ErrFontSize)
	require.ErrorIs(t, d.SetFontSize(RoleDescription, 10), ErrFontSize)

	require.NoError(t, d.SetLayout("Professional"))
	require.ErrorIs(t, d.SetLayout("brutalist"), ErrInvalidOption)
	require.NoError(t, d.SetSocialStyle("fullblock"))
	require.NoError(t, d.SetConnectStyle("compact"))
	require.NoError(t, d.SetProfileStyle("right"))
	d.SetVariant("Neon Cyber")

	tpl := d.Template()
	require.Equal(t, "#0ea5e9", tpl.Colors.Primary)
	require.Equal(t, "Playfair Display", tpl.Fonts.Title)
	require.Equal(t, domain.DefaultFontFamily, tpl.Fonts.Description)
	require.Equal(t, domain.FontSizes{Title: 48, Description: 12}, tpl.FontSizes)
	require.Equal(t, domain.LayoutProfessional, tpl.Layout)
	require.Equal(t, "neon-cyber", tpl.Variant)
	require.Equal(t, domain.ProfileStyleRight, tpl.ProfileStyle)
}

func TestFontSizeOptions(t *testing.T) {
	title := FontSizeOptions(RoleTitle)
	require.Len(t, title, 17)
	require.Equal(t, 16, title[0])
	require.Equal(t, 48, title[len(title)-1])
	require.Len(t, FontSizeOptions(RoleDescription), 11)
	require.Nil(t, FontSizeOptions("caption"))
}

func TestListEditing(t *testing.T) {
	d, _ := newTestDraft(t)
	require.NoError(t, d.AddFeature("QR code"))
	require.NoError(t, d.AddFeature("Analytics"))
	require.NoError(t, d.AddFeature("QR code"))
	require.ErrorIs(t, d.AddFeature("  "), ErrEmptyEntry)
	require.Equal(t, []string{"QR code", "Analytics", "QR code"}, d.Template().Features)

	require.NoError(t, d.RemoveFeature(0))
	require.Equal(t, []string{"Analytics", "QR code"}, d.Template().Features)
	require.ErrorIs(t, d.RemoveFeature(2), ErrIndexOutOfRange)
	require.ErrorIs(t, d.RemoveTag(0), ErrIndexOutOfRange)

	require.NoError(t, d.AddTag("dark"))
	require.Equal(t, []string{"dark"}, d.Template().Tags)
}

func TestTemplateReturnsCopy(t *testing.T) {
	d, _ := newTestDraft(t)
	require.NoError(t, d.AddTag("a"))
	snapshot := d.Template()
	snapshot.Tags[0] = "mutated"
	require.Equal(t, "a", d.Template().Tags[0])
}

func TestUpdatedAtRefreshedOnEveryMutation(t *testing.T) {
	d, _ := newTestDraft(t)
	created := d.Template().CreatedAt
	last := d.Template().UpdatedAt

	mutations := []func(){
		func() { d.SetName("A") },
		func() { d.SetPopular(true) },
		func() { d.SetNew(true) },
		func() { d.SetHidden(true) },
		func() { _ = d.AddTag("x") },
		func() { _ = d.SetColor("text", "#111") },
		func() { _ = d.SetConnectStyle("list") },
	}
	for i, mutate := range mutations {
		mutate()
		updated := d.Template().UpdatedAt
		require.Truef(t, updated.After(last), "mutation %d did not refresh updatedAt", i)
		last = updated
	}
	require.Equal(t, created, d.Template().CreatedAt)
}

func TestApplyForm(t *testing.T) {
	values := url.Values{
		"name":                  {"Glass Morphism"},
		"category":              {"premium"},
		"original_price":        {"500"},
		"discount_percent":      {"20"},
		"layout":                {"modern"},
		"variant":               {"glass-morphism"},
		"font_title":            {"Poppins"},
		"font_size_title":       {"30"},
		"font_size_description": {"13"},
		"color_primary":         {"#ffffff"},
		"colors[background]":    {"rgba(255,255,255,0.1)"},
		"color_bogus":           {"#000"},
		"features":              {"Frosted glass", "", "Blur"},
		"is_popular":            {"true"},
		"unknown_field":         {"ignored"},
	}

	form, err := DecodeForm(values)
	require.NoError(t, err)

	d, _ := newTestDraft(t)
	err = d.Apply(form)

	var fieldErrs FieldErrors
	require.True(t, errors.As(err, &fieldErrs))
	require.Len(t, fieldErrs, 2)
	require.Contains(t, fieldErrs, "font_size_description")
	require.Contains(t, fieldErrs, "color_bogus")

	tpl := d.Template()
	require.Equal(t, "glass-morphism", tpl.Slug)
	require.Equal(t, 400.0, tpl.Price)
	require.Equal(t, domain.LayoutModern, tpl.Layout)
	require.Equal(t, "Poppins", tpl.Fonts.Title)
	require.Equal(t, 30, tpl.FontSizes.Title)
	require.Equal(t, 12, tpl.FontSizes.Description)
	require.Equal(t, "#ffffff", tpl.Colors.Primary)
	require.Equal(t, "rgba(255,255,255,0.1)", tpl.Colors.Background)
	require.Equal(t, []string{"Frosted glass", "Blur"}, tpl.Features)
	require.True(t, tpl.IsPopular)
}

func TestDecodeFormConversionError(t *testing.T) {
	_, err := DecodeForm(url.Values{"original_price": {"abc"}})
	var fieldErrs FieldErrors
	require.True(t, errors.As(err, &fieldErrs))
	require.Contains(t, fieldErrs, "original_price")
}
