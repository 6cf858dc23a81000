package backend

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/juantap/web/internal/domain"
	"github.com/juantap/web/internal/normalize"
	"github.com/juantap/web/internal/platform/requestctx"
)

// ErrMissingTemplateKey is returned when no slug or id is given.
var ErrMissingTemplateKey = errors.New("backend: missing template slug or id")

// ListTemplates fetches the catalog and normalizes every record.
func (c *Client) ListTemplates(ctx context.Context) ([]domain.Template, error) {
	raw, err := c.getJSON(ctx, "list templates", "templates")
	if err != nil {
		return nil, err
	}
	return normalize.TemplateList(raw), nil
}

// GetTemplate fetches one template by slug or id.
func (c *Client) GetTemplate(ctx context.Context, key string) (domain.Template, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.Template{}, ErrMissingTemplateKey
	}
	raw, err := c.getJSON(ctx, "get template", "templates", key)
	if err != nil {
		return domain.Template{}, err
	}
	return normalize.TemplateRecord(raw), nil
}

// StoreTemplate creates a template. The backend's echo of the record is returned when it
// sends one; otherwise tpl is returned unchanged.
func (c *Client) StoreTemplate(ctx context.Context, tpl domain.Template) (domain.Template, error) {
	return c.writeTemplate(ctx, "store template", http.MethodPost, tpl, "templates", "store")
}

// UpdateTemplate replaces the template identified by id.
func (c *Client) UpdateTemplate(ctx context.Context, id string, tpl domain.Template) (domain.Template, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Template{}, ErrMissingTemplateKey
	}
	return c.writeTemplate(ctx, "update template", http.MethodPut, tpl, "templates", id)
}

func (c *Client) writeTemplate(ctx context.Context, op, method string, tpl domain.Template, path ...string) (domain.Template, error) {
	fields, err := normalize.FormFields(tpl)
	if err != nil {
		return domain.Template{}, err
	}
	form := url.Values{}
	for key, value := range fields {
		form.Set(key, value)
	}
	body, err := c.do(ctx, request{
		op:          op,
		method:      method,
		path:        path,
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	})
	if err != nil {
		return domain.Template{}, err
	}
	raw, err := decodeBody(op, body)
	if err != nil {
		requestctx.Logger(ctx).Debug("template echo not decoded, keeping submitted template",
			zap.String("op", op),
			zap.Error(err),
		)
		return tpl, nil
	}
	if raw == nil {
		return tpl, nil
	}
	saved := normalize.TemplateRecord(raw)
	if saved.ID == "" && saved.Slug == "" {
		return tpl, nil
	}
	return saved, nil
}
