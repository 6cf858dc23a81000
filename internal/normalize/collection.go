package normalize

import (
	"strings"

	"github.com/juantap/web/internal/domain"
)

var (
	collectionSlugKeys  = []string{"slug", "template_slug", "templateSlug"}
	purchaseStatusKeys  = []string{"status", "payment_status", "paymentStatus"}
	templateRecordKeys  = []string{"data", "template"}
	templateIdentityKey = []string{"id", "slug", "name"}
)

// TemplateRecord normalizes a single-record response, unwrapping {"data": {...}} and
// {"template": {...}} envelopes.
func TemplateRecord(raw any) domain.Template {
	obj := asObject(decodeEmbedded(raw))
	if !hasAny(obj, templateIdentityKey...) {
		for _, key := range templateRecordKeys {
			if inner := asObject(obj[key]); len(inner) > 0 {
				obj = inner
				break
			}
		}
	}
	return Template(obj)
}

// CollectionSlugs extracts the template slugs of a saved or used collection. Entries may
// be bare slugs or records carrying slug, template_slug, templateSlug or template.slug.
// Order is preserved and duplicates are dropped.
func CollectionSlugs(raw any) []string {
	items := listItems(raw)
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		slug := entrySlug(item)
		if slug == "" {
			continue
		}
		if _, dup := seen[slug]; dup {
			continue
		}
		seen[slug] = struct{}{}
		out = append(out, slug)
	}
	return out
}

// Purchases extracts the bought collection. Entries whose payment is still under review
// become pending; rejected payments are dropped.
func Purchases(raw any) []domain.Purchase {
	items := listItems(raw)
	out := make([]domain.Purchase, 0, len(items))
	for _, item := range items {
		slug := entrySlug(item)
		if slug == "" {
			continue
		}
		status, ok := purchaseStatus(stringField(asObject(item), purchaseStatusKeys...))
		if !ok {
			continue
		}
		out = append(out, domain.Purchase{Slug: slug, Status: status})
	}
	return out
}

func entrySlug(item any) string {
	if s, ok := item.(string); ok {
		if obj := asObject(s); obj == nil {
			return strings.TrimSpace(s)
		}
	}
	obj := asObject(item)
	if slug := stringField(obj, collectionSlugKeys...); slug != "" {
		return slug
	}
	return stringField(asObject(obj["template"]), "slug")
}

func purchaseStatus(value string) (domain.AcquisitionStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "pending", "submitted", "for_review", "in_review":
		return domain.StatusPending, true
	case "rejected", "declined", "cancelled", "canceled", "failed":
		return "", false
	default:
		return domain.StatusBought, true
	}
}
