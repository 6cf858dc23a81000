package normalize

import (
	"encoding/json"
	"fmt"

	"github.com/juantap/web/internal/domain"
)

// The backend stores lists and maps of a template as JSON strings inside form or JSON
// bodies. The Encode functions produce those strings; the Decode functions accept any
// representation the normalizer accepts.

// EncodeList encodes an ordered string list. A nil list encodes as "[]".
func EncodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("normalize: encode list: %w", err)
	}
	return string(data), nil
}

// DecodeList decodes a list previously produced by EncodeList, or any accepted variant.
func DecodeList(value any) []string {
	return stringList(value)
}

// EncodeColors encodes the non-empty color roles as a JSON object.
func EncodeColors(colors domain.Colors) (string, error) {
	data, err := json.Marshal(colors)
	if err != nil {
		return "", fmt.Errorf("normalize: encode colors: %w", err)
	}
	return string(data), nil
}

// DecodeColors decodes a color map, keeping only known roles.
func DecodeColors(value any) domain.Colors {
	return colors(value)
}

// EncodeFonts encodes the font families as {"title": ..., "description": ...}.
func EncodeFonts(fonts domain.Fonts) (string, error) {
	data, err := json.Marshal(fonts)
	if err != nil {
		return "", fmt.Errorf("normalize: encode fonts: %w", err)
	}
	return string(data), nil
}

// DecodeFonts decodes a font map, dropping families outside the allow-list.
func DecodeFonts(value any) domain.Fonts {
	return fonts(value)
}

// EncodeFontSizes encodes the font sizes as {"title": n, "description": n}.
func EncodeFontSizes(sizes domain.FontSizes) (string, error) {
	data, err := json.Marshal(sizes)
	if err != nil {
		return "", fmt.Errorf("normalize: encode font sizes: %w", err)
	}
	return string(data), nil
}

// FormFields renders the template as the flat field set accepted by POST /templates/store
// and PUT /templates/{id}. Structured fields are JSON strings.
func FormFields(tpl domain.Template) (map[string]string, error) {
	features, err := EncodeList(tpl.Features)
	if err != nil {
		return nil, err
	}
	tags, err := EncodeList(tpl.Tags)
	if err != nil {
		return nil, err
	}
	colorsJSON, err := EncodeColors(tpl.Colors)
	if err != nil {
		return nil, err
	}
	fontsJSON, err := EncodeFonts(tpl.Fonts)
	if err != nil {
		return nil, err
	}
	sizesJSON, err := EncodeFontSizes(tpl.FontSizes)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{
		"name":             tpl.Name,
		"slug":             tpl.Slug,
		"description":      tpl.Description,
		"category":         string(tpl.Category),
		"is_premium":       boolString(tpl.IsPremium),
		"price":            formatMoney(tpl.Price),
		"original_price":   formatMoney(tpl.OriginalPrice),
		"discount":         formatMoney(tpl.DiscountPercent),
		"preview_url":      tpl.PreviewURL,
		"thumbnail_url":    tpl.ThumbnailURL,
		"layout":           string(tpl.Layout),
		"variant":          tpl.Variant,
		"social_style":     string(tpl.SocialStyle),
		"connection_style": string(tpl.ConnectStyle),
		"profile_style":    string(tpl.ProfileStyle),
		"is_popular":       boolString(tpl.IsPopular),
		"is_new":           boolString(tpl.IsNew),
		"is_hidden":        boolString(tpl.IsHidden),
		"features":         features,
		"tags":             tags,
		"colors":           colorsJSON,
		"fonts":            fontsJSON,
		"font_sizes":       sizesJSON,
	}
	for key, value := range fields {
		if value == "" {
			delete(fields, key)
		}
	}
	return fields, nil
}

func boolString(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func formatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
