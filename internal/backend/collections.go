package backend

import (
	"context"
	"net/http"
	"strings"

	"github.com/juantap/web/internal/domain"
	"github.com/juantap/web/internal/normalize"
)

// SavedSlugs lists the slugs of the templates the user saved.
func (c *Client) SavedSlugs(ctx context.Context) ([]string, error) {
	raw, err := c.getJSON(ctx, "saved templates", "templates1", "saved")
	if err != nil {
		return nil, err
	}
	return normalize.CollectionSlugs(raw), nil
}

// Purchases lists the templates the user submitted payment for, with their review state.
func (c *Client) Purchases(ctx context.Context) ([]domain.Purchase, error) {
	raw, err := c.getJSON(ctx, "bought templates", "templates1", "boughted")
	if err != nil {
		return nil, err
	}
	return normalize.Purchases(raw), nil
}

// UsedSlugs lists the slugs of the templates applied to the user's live profile.
func (c *Client) UsedSlugs(ctx context.Context) ([]string, error) {
	raw, err := c.getJSON(ctx, "used templates", "templates1", "used")
	if err != nil {
		return nil, err
	}
	return normalize.CollectionSlugs(raw), nil
}

// Save adds slug to the saved collection.
func (c *Client) Save(ctx context.Context, slug string) error {
	return c.mutate(ctx, "save template", http.MethodPost, "saved", slug)
}

// Unsave removes slug from the saved collection.
func (c *Client) Unsave(ctx context.Context, slug string) error {
	return c.mutate(ctx, "unsave template", http.MethodDelete, "saved", slug)
}

// MarkUsed applies slug to the live profile.
func (c *Client) MarkUsed(ctx context.Context, slug string) error {
	return c.mutate(ctx, "use template", http.MethodPost, "used", slug)
}

// MarkUnused removes slug from the live profile.
func (c *Client) MarkUnused(ctx context.Context, slug string) error {
	return c.mutate(ctx, "unuse template", http.MethodDelete, "used", slug)
}

func (c *Client) mutate(ctx context.Context, op, method, collection, slug string) error {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ErrMissingTemplateKey
	}
	_, err := c.do(ctx, request{op: op, method: method, path: []string{"templates", collection, slug}})
	return err
}
