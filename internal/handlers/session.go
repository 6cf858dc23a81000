package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/juantap/web/internal/backend"
	"github.com/juantap/web/internal/platform/httpx"
	"github.com/juantap/web/internal/platform/requestctx"
	"github.com/juantap/web/internal/session"
)

// SessionHandlers starts and ends browser sessions.
type SessionHandlers struct {
	client   *backend.Client
	sessions *session.Manager
}

// NewSessionHandlers constructs the /session endpoints.
func NewSessionHandlers(client *backend.Client, sessions *session.Manager) *SessionHandlers {
	return &SessionHandlers{client: client, sessions: sessions}
}

// Routes registers the session endpoints.
func (h *SessionHandlers) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Put("/", h.refresh)
	r.Delete("/", h.delete)
}

type createSessionRequest struct {
	Token string `json:"token"`
}

// create verifies the bearer token with the backend and starts a session caching the user.
func (h *SessionHandlers) create(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" && r.Body != nil {
		var req createSessionRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&req); err == nil {
			token = strings.TrimSpace(req.Token)
		}
	}
	if token == "" {
		writeNotice(w, r, session.ErrMissingToken, nil)
		return
	}

	user, err := h.client.WithToken(token).CurrentUser(r.Context())
	if err != nil {
		writeNotice(w, r, err, nil)
		return
	}
	s, err := h.sessions.Init(w, token, user)
	if err != nil {
		writeNotice(w, r, err, nil)
		return
	}
	requestctx.Logger(r.Context()).Info("session started", zap.String("session_id", s.ID), zap.String("user_id", user.ID))
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"user":      user,
		"expiresAt": s.ExpiresAt,
	})
}

// refresh reloads the current user from the backend into the session cookie.
func (h *SessionHandlers) refresh(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	user, err := h.client.WithToken(s.Token).CurrentUser(r.Context())
	if err != nil {
		writeNotice(w, r, err, nil)
		return
	}
	if err := h.sessions.Refresh(w, s, user); err != nil {
		writeNotice(w, r, err, nil)
		return
	}
	requestctx.Logger(r.Context()).Debug("session refreshed", zap.String("session_id", s.ID), zap.String("user_id", user.ID))
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"user":      user,
		"expiresAt": s.ExpiresAt,
	})
}

func (h *SessionHandlers) delete(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
