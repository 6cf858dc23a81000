package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/juantap/web/internal/domain"
)

const testSecret = "0123456789abcdef-test"

func newTestManager(t *testing.T, now *time.Time) (*Manager, *CookieStore) {
	t.Helper()
	store, err := NewCookieStore("jt", testSecret, true)
	require.NoError(t, err)
	return NewManager(store, WithTTL(24*time.Hour), WithClock(func() time.Time { return *now })), store
}

func requestWithCookies(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("backend-key"))
	require.NoError(t, err)
	return token
}

func TestInitAndLoadRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	m, store := newTestManager(t, &now)

	rec := httptest.NewRecorder()
	s, err := m.Init(rec, " 12|opaque-token ", domain.User{ID: "u1", Username: "ana"})
	require.NoError(t, err)
	_, err = uuid.Parse(s.ID)
	require.NoError(t, err)
	require.Equal(t, "12|opaque-token", s.Token)
	require.Equal(t, now.Add(24*time.Hour), s.ExpiresAt)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.True(t, cookies[0].HttpOnly)
	require.True(t, cookies[0].Secure)
	require.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	loaded, ok := store.Load(requestWithCookies(rec))
	require.True(t, ok)
	require.Equal(t, s.ID, loaded.ID)
	require.Equal(t, "ana", loaded.User.Username)
}

func TestRefreshReplacesCachedUser(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	m, store := newTestManager(t, &now)
	s, err := m.Init(httptest.NewRecorder(), "tok", domain.User{ID: "u1", Username: "ana"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Refresh(rec, s, domain.User{ID: "u1", Username: "ana.cruz"}))
	loaded, ok := store.Load(requestWithCookies(rec))
	require.True(t, ok)
	require.Equal(t, s.ID, loaded.ID)
	require.True(t, s.ExpiresAt.Equal(loaded.ExpiresAt))
	require.Equal(t, "ana.cruz", loaded.User.Username)
}

func TestInitUsesTokenExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	m, _ := newTestManager(t, &now)

	s, err := m.Init(httptest.NewRecorder(), signedToken(t, now.Add(time.Hour)), domain.User{ID: "u1"})
	require.NoError(t, err)
	require.Equal(t, now.Add(time.Hour), s.ExpiresAt)

	s, err = m.Init(httptest.NewRecorder(), signedToken(t, now.Add(90*24*time.Hour)), domain.User{ID: "u1"})
	require.NoError(t, err)
	require.Equal(t, now.Add(24*time.Hour), s.ExpiresAt)

	_, err = m.Init(httptest.NewRecorder(), signedToken(t, now.Add(-time.Minute)), domain.User{ID: "u1"})
	require.ErrorIs(t, err, ErrTokenExpired)

	_, err = m.Init(httptest.NewRecorder(), "  ", domain.User{})
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestLoadRejectsTamperedCookie(t *testing.T) {
	now := time.Now()
	m, store := newTestManager(t, &now)
	rec := httptest.NewRecorder()
	_, err := m.Init(rec, "tok", domain.User{ID: "u1"})
	require.NoError(t, err)

	cookie := rec.Result().Cookies()[0]
	payload, sig, _ := strings.Cut(cookie.Value, ".")
	cases := []string{
		"",
		payload,
		payload + "x." + sig,
		payload + "." + sig[:len(sig)-2] + "AA",
	}
	for _, value := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "jt", Value: value})
		_, ok := store.Load(req)
		require.False(t, ok, value)
	}

	other, err := NewCookieStore("jt", "another-secret-value", true)
	require.NoError(t, err)
	_, ok := other.Load(requestWithCookies(rec))
	require.False(t, ok)
}

func TestSaveDropsOversizedUser(t *testing.T) {
	now := time.Now()
	m, store := newTestManager(t, &now)
	rec := httptest.NewRecorder()
	_, err := m.Init(rec, "tok", domain.User{ID: "u1", Bio: strings.Repeat("long bio ", 600)})
	require.NoError(t, err)

	loaded, ok := store.Load(requestWithCookies(rec))
	require.True(t, ok)
	require.Equal(t, "tok", loaded.Token)
	require.Nil(t, loaded.User)
}

func TestMiddleware(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	m, _ := newTestManager(t, &now)
	initRec := httptest.NewRecorder()
	created, err := m.Init(initRec, "tok", domain.User{ID: "u1"})
	require.NoError(t, err)

	var seen *Session
	handler := m.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithCookies(initRec))
	require.NotNil(t, seen)
	require.Equal(t, created.ID, seen.ID)

	now = now.Add(25 * time.Hour)
	seen = nil
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithCookies(initRec))
	require.Nil(t, seen)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	require.Equal(t, -1, cleared[0].MaxAge)

	seen = nil
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Nil(t, seen)
}

func TestClear(t *testing.T) {
	now := time.Now()
	m, _ := newTestManager(t, &now)
	rec := httptest.NewRecorder()
	m.Clear(rec)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Empty(t, cookies[0].Value)
	require.Equal(t, -1, cookies[0].MaxAge)
}

func TestFromContextEmpty(t *testing.T) {
	_, ok := FromContext(context.Background())
	require.False(t, ok)
}

func TestNewCookieStoreRejectsWeakSecret(t *testing.T) {
	_, err := NewCookieStore("jt", "short", false)
	require.ErrorIs(t, err, ErrWeakSecret)
}
