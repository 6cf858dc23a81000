// Package session keeps the auth token and cached user of a browser between requests.
package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/juantap/web/internal/domain"
	"github.com/juantap/web/internal/platform/requestctx"
)

// DefaultTTL bounds sessions whose token carries no expiry.
const DefaultTTL = 7 * 24 * time.Hour

var (
	// ErrMissingToken is returned by Init without a token.
	ErrMissingToken = errors.New("session: missing token")
	// ErrTokenExpired is returned by Init when the token's exp claim is in the past.
	ErrTokenExpired = errors.New("session: token expired")
)

// Session is the state tied to one browser.
type Session struct {
	ID        string       `json:"id"`
	Token     string       `json:"tok"`
	User      *domain.User `json:"user,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Store persists sessions. Implementations must not keep a session reachable after
// Clear.
type Store interface {
	Load(r *http.Request) (*Session, bool)
	Save(w http.ResponseWriter, s *Session) error
	Clear(w http.ResponseWriter)
}

// Option configures a Manager.
type Option func(*Manager)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// Manager owns the session lifecycle: Init on login, Clear on logout.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// NewManager wraps store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{store: store, ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init starts a fresh session for token and caches user. The session expires at the
// token's exp claim when it has one, and never later than the TTL.
func (m *Manager) Init(w http.ResponseWriter, token string, user domain.User) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	now := m.now().UTC()
	expires := now.Add(m.ttl)
	if exp, ok := tokenExpiry(token); ok {
		if !now.Before(exp) {
			return nil, ErrTokenExpired
		}
		if exp.Before(expires) {
			expires = exp
		}
	}
	s := &Session{
		ID:        uuid.NewString(),
		Token:     token,
		User:      &user,
		CreatedAt: now,
		ExpiresAt: expires,
	}
	if err := m.store.Save(w, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Refresh replaces the cached user of s and persists it.
func (m *Manager) Refresh(w http.ResponseWriter, s *Session, user domain.User) error {
	s.User = &user
	return m.store.Save(w, s)
}

// Clear ends the session.
func (m *Manager) Clear(w http.ResponseWriter) {
	m.store.Clear(w)
}

// Middleware loads the session into the request context. Expired sessions are cleared.
func (m *Manager) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := m.store.Load(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			if s.Expired(m.now()) {
				requestctx.Logger(r.Context()).Debug("session expired", zap.String("session_id", s.ID))
				m.store.Clear(w)
				next.ServeHTTP(w, r)
				return
			}
			requestctx.Annotate(r.Context(), zap.String("session_id", s.ID))
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

type contextKey struct{}

// WithSession stores s on ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session loaded by Middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}

// tokenExpiry reads the exp claim of a JWT without verifying it; the backend verifies
// tokens. Opaque tokens have no expiry.
func tokenExpiry(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time.UTC(), true
}
