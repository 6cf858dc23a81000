// Package preview renders the profile card of a user styled by a template. All visual
// variants share one markup contract and are parameterised by the variant table in
// variants.yaml.
package preview

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"

	"github.com/juantap/web/internal/domain"
	"github.com/juantap/web/internal/platform/requestctx"
	"github.com/juantap/web/internal/sharing"
)

//go:embed preview.tmpl
var cardTemplateSource string

// Option configures a Renderer.
type Option func(*Renderer)

// WithCatalog replaces the embedded variant table.
func WithCatalog(c *Catalog) Option {
	return func(r *Renderer) {
		if c != nil {
			r.catalog = c
		}
	}
}

// WithFrontendBaseURL sets the base of profile URLs encoded in QR codes and share links.
func WithFrontendBaseURL(base string) Option {
	return func(r *Renderer) {
		r.frontendBaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
	}
}

// WithQRSize sets the pixel size of embedded QR images.
func WithQRSize(px int) Option {
	return func(r *Renderer) {
		if px > 0 {
			r.qrSize = px
		}
	}
}

// Renderer dispatches a template to its variant and renders the preview card. It is safe
// for concurrent use.
type Renderer struct {
	catalog         *Catalog
	frontendBaseURL string
	qrSize          int
	tmpl            *template.Template
	markdown        goldmark.Markdown
	policy          *bluemonday.Policy
}

// NewRenderer builds a renderer backed by the embedded variant table unless WithCatalog
// is given.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		qrSize: sharing.DefaultQRSize,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
			goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps()),
		),
		policy: bioPolicy(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.catalog == nil {
		cat, err := DefaultCatalog()
		if err != nil {
			return nil, err
		}
		r.catalog = cat
	}
	tmpl, err := template.New("card").Parse(cardTemplateSource)
	if err != nil {
		return nil, fmt.Errorf("preview: parse template: %w", err)
	}
	r.tmpl = tmpl
	return r, nil
}

func bioPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// Catalog exposes the variant table.
func (r *Renderer) Catalog() *Catalog {
	return r.catalog
}

// Resolve returns the variant tpl renders with. Unknown layouts and variants fall back
// to the default variant.
func (r *Renderer) Resolve(tpl domain.Template) Variant {
	return r.catalog.Resolve(tpl)
}

// Card is the view model shared by every variant.
type Card struct {
	VariantID     string
	VariantLabel  string
	Layout        domain.Layout
	Premium       bool
	Style         template.CSS
	ProfileStyle  domain.ProfileStyle
	SocialStyle   domain.SocialStyle
	ConnectStyle  domain.ConnectStyle
	AvatarShape   string
	DisplayName   string
	Username      string
	Initials      string
	Location      string
	Email         string
	Phone         string
	Website       string
	Bio           template.HTML
	AvatarURL     string
	CoverImageURL string
	Links         []Link
	ProfileURL    string
	QRDataURI     template.URL
	Share         sharing.ShareAction
}

// Link is a visible social link ready for display.
type Link struct {
	ID       string
	Platform string
	Label    string
	Username string
	URL      string
	Icon     Icon
}

// Build assembles the card view model without rendering markup.
func (r *Renderer) Build(tpl domain.Template, profile domain.User) (Card, error) {
	domain.ApplyDefaults(&tpl)
	variant := r.Resolve(tpl)

	bio, err := r.renderBio(profile.Bio)
	if err != nil {
		return Card{}, err
	}

	profileURL := sharing.ProfileURL(r.frontendBaseURL, profile)
	card := Card{
		VariantID:     variant.ID,
		VariantLabel:  variant.Label,
		Layout:        variant.Layout,
		Premium:       variant.Premium,
		Style:         cardStyle(variant, tpl),
		ProfileStyle:  tpl.ProfileStyle,
		SocialStyle:   tpl.SocialStyle,
		ConnectStyle:  tpl.ConnectStyle,
		AvatarShape:   variant.Card.AvatarShape,
		DisplayName:   profile.Label(),
		Username:      profile.Username,
		Initials:      initials(profile.Label()),
		Location:      profile.Location,
		Email:         profile.Email,
		Phone:         profile.Phone,
		Website:       profile.Website,
		Bio:           bio,
		AvatarURL:     profile.AvatarURL,
		CoverImageURL: profile.CoverImageURL,
		Links:         visibleLinks(profile.SocialLinks),
		ProfileURL:    profileURL,
		Share:         sharing.NewShareAction(profileURL, profile),
	}

	if profileURL != "" {
		png, err := sharing.QRPNG(profileURL, r.qrSize)
		if err != nil {
			return Card{}, err
		}
		card.QRDataURI = template.URL(sharing.DataURI(png))
	}
	return card, nil
}

// Render renders the preview card of profile styled by tpl. The output depends only on
// its inputs.
func (r *Renderer) Render(ctx context.Context, tpl domain.Template, profile domain.User) (template.HTML, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	card, err := r.Build(tpl, profile)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, card); err != nil {
		return "", fmt.Errorf("preview: render %s: %w", card.VariantID, err)
	}
	requestctx.Logger(ctx).Debug("preview rendered",
		zap.String("variant", card.VariantID),
		zap.String("template", tpl.Key()),
		zap.Int("links", len(card.Links)),
	)
	return template.HTML(buf.String()), nil
}

func (r *Renderer) renderBio(bio string) (template.HTML, error) {
	bio = strings.TrimSpace(bio)
	if bio == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(bio), &buf); err != nil {
		return "", fmt.Errorf("preview: render bio: %w", err)
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())), nil
}

func visibleLinks(links []domain.SocialLink) []Link {
	visible := domain.VisibleSocialLinks(links)
	out := make([]Link, 0, len(visible))
	for _, link := range visible {
		icon := IconFor(link.Platform)
		out = append(out, Link{
			ID:       link.ID,
			Platform: strings.ToLower(strings.TrimSpace(link.Platform)),
			Label:    icon.Label,
			Username: link.Username,
			URL:      link.URL,
			Icon:     icon,
		})
	}
	return out
}

func initials(name string) string {
	fields := strings.Fields(name)
	var b strings.Builder
	for _, f := range fields {
		for _, r := range f {
			b.WriteString(strings.ToUpper(string(r)))
			break
		}
		if b.Len() >= 2 {
			break
		}
	}
	return b.String()
}

// cardStyle emits the CSS custom properties of the card. Template colors override the
// variant palette role by role; invalid colors are ignored.
func cardStyle(variant Variant, tpl domain.Template) template.CSS {
	var b strings.Builder
	decl := func(name, value string) {
		if value == "" {
			return
		}
		b.WriteString("--jt-")
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("; ")
	}

	for _, role := range domain.ColorRoles {
		value := tpl.Colors.Get(role)
		if !domain.IsColor(value) {
			value = variant.Palette.Get(role)
		}
		decl(cssName(role), value)
	}
	decl("font-title", fontStack(tpl.Fonts.Title))
	decl("font-description", fontStack(tpl.Fonts.Description))
	decl("size-title", fmt.Sprintf("%dpx", tpl.FontSizes.Title))
	decl("size-description", fmt.Sprintf("%dpx", tpl.FontSizes.Description))
	decl("radius", variant.Card.Radius)
	decl("shadow", variant.Card.Shadow)
	decl("border", variant.Card.Border)
	decl("cover-height", variant.Card.CoverHeight)
	decl("avatar-size", variant.Card.AvatarSize)
	decl("chip-radius", variant.Card.ChipRadius)
	decl("backdrop", variant.Card.Backdrop)
	return template.CSS(strings.TrimSpace(b.String()))
}

func fontStack(family string) string {
	canonical, ok := domain.CanonicalFontFamily(family)
	if !ok {
		canonical = domain.DefaultFontFamily
	}
	fallback := "sans-serif"
	if canonical == "Playfair Display" || canonical == "Merriweather" {
		fallback = "serif"
	}
	return fmt.Sprintf("'%s', %s", canonical, fallback)
}

// cssName converts a camelCase role to kebab-case.
func cssName(role string) string {
	var b strings.Builder
	for _, r := range role {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
