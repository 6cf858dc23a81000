package backend

import (
	"context"
	"net/http"

	"github.com/juantap/web/internal/domain"
	"github.com/juantap/web/internal/normalize"
)

// CurrentUser fetches the authenticated user. It fails with ErrUnauthorized when the
// token is missing or rejected.
func (c *Client) CurrentUser(ctx context.Context) (domain.User, error) {
	if c.token == "" {
		return domain.User{}, ErrUnauthorized
	}
	return c.user(ctx, "current user", "user")
}

// UserProfile fetches the authenticated user's public profile, including social links.
func (c *Client) UserProfile(ctx context.Context) (domain.User, error) {
	if c.token == "" {
		return domain.User{}, ErrUnauthorized
	}
	return c.user(ctx, "user profile", "user-profile")
}

func (c *Client) user(ctx context.Context, op, path string) (domain.User, error) {
	body, err := c.do(ctx, request{op: op, method: http.MethodGet, path: []string{path}})
	if err != nil {
		return domain.User{}, err
	}
	return normalize.UserJSON(body)
}
