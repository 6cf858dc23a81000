package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/juantap/web/internal/backend"
	"github.com/juantap/web/internal/platform/textutil"
	"github.com/juantap/web/internal/sharing"
)

const (
	minQRSize = 128
	maxQRSize = 1024
)

// MeHandlers serves the session user's share artefacts.
type MeHandlers struct {
	client          *backend.Client
	frontendBaseURL string
}

// NewMeHandlers constructs the /me endpoints.
func NewMeHandlers(client *backend.Client, frontendBaseURL string) *MeHandlers {
	return &MeHandlers{client: client, frontendBaseURL: strings.TrimRight(frontendBaseURL, "/")}
}

// Routes registers the /me endpoints.
func (h *MeHandlers) Routes(r chi.Router) {
	r.Get("/qr.png", h.qr)
	r.Get("/card.vcf", h.vcard)
}

// qr encodes the profile URL. ?size= is clamped to [128, 1024].
func (h *MeHandlers) qr(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	user, err := profileFor(r.Context(), h.client.WithToken(s.Token), s)
	if err != nil {
		writeNotice(w, r, err, nil)
		return
	}
	size := sharing.DefaultQRSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			size = min(max(n, minQRSize), maxQRSize)
		}
	}
	png, err := sharing.QRPNG(sharing.ProfileURL(h.frontendBaseURL, user), size)
	if err != nil {
		writeNotice(w, r, err, nil)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *MeHandlers) vcard(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	user, err := profileFor(r.Context(), h.client.WithToken(s.Token), s)
	if err != nil {
		writeNotice(w, r, err, nil)
		return
	}
	filename := textutil.Slugify(user.Label())
	if filename == "" {
		filename = "contact"
	}
	w.Header().Set("Content-Type", "text/vcard; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.vcf"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(sharing.VCard(user, sharing.ProfileURL(h.frontendBaseURL, user))))
}
