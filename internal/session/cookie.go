package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// maxCookieBytes keeps the encoded cookie under the 4KB browser limit.
const maxCookieBytes = 3800

// ErrWeakSecret is returned for signing secrets shorter than 16 bytes.
var ErrWeakSecret = errors.New("session: signing secret must be at least 16 bytes")

// CookieStore keeps the whole session in an HMAC-signed cookie.
type CookieStore struct {
	name   string
	secret []byte
	secure bool
}

// NewCookieStore builds a store writing the cookie called name.
func NewCookieStore(name, secret string, secure bool) (*CookieStore, error) {
	if len(secret) < 16 {
		return nil, ErrWeakSecret
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "juantap_session"
	}
	return &CookieStore{name: name, secret: []byte(secret), secure: secure}, nil
}

// Load verifies and decodes the session cookie.
func (c *CookieStore) Load(r *http.Request) (*Session, bool) {
	cookie, err := r.Cookie(c.name)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	payload, sig, ok := strings.Cut(cookie.Value, ".")
	if !ok {
		return nil, false
	}
	body, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, false
	}
	mac, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil || !hmac.Equal(mac, c.sign(body)) {
		return nil, false
	}
	var s Session
	if err := json.Unmarshal(body, &s); err != nil || s.ID == "" {
		return nil, false
	}
	return &s, true
}

// Save writes s. When the cached user does not fit in a cookie it is dropped and only
// the token is kept.
func (c *CookieStore) Save(w http.ResponseWriter, s *Session) error {
	value, err := c.encode(s)
	if err != nil {
		return err
	}
	if len(value) > maxCookieBytes && s.User != nil {
		trimmed := *s
		trimmed.User = nil
		if value, err = c.encode(&trimmed); err != nil {
			return err
		}
	}
	if len(value) > maxCookieBytes {
		return fmt.Errorf("session: cookie of %d bytes exceeds limit", len(value))
	}
	cookie := &http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if !s.ExpiresAt.IsZero() {
		cookie.Expires = s.ExpiresAt
	}
	http.SetCookie(w, cookie)
	return nil
}

// Clear expires the cookie.
func (c *CookieStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

func (c *CookieStore) encode(s *Session) (string, error) {
	body, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("session: encode: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(body) + "." + base64.RawURLEncoding.EncodeToString(c.sign(body)), nil
}

func (c *CookieStore) sign(body []byte) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write(body)
	return mac.Sum(nil)
}
