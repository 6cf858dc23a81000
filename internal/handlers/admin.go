package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/juantap/web/internal/backend"
	"github.com/juantap/web/internal/domain"
	"github.com/juantap/web/internal/editor"
	"github.com/juantap/web/internal/notice"
	"github.com/juantap/web/internal/platform/httpx"
	"github.com/juantap/web/internal/platform/requestctx"
	"github.com/juantap/web/internal/preview"
)

const adminFormLimit = 1 << 20

// AdminHandlers backs the template editor. Authorisation is enforced by the backend on
// the token of the session.
type AdminHandlers struct {
	client   *backend.Client
	renderer *preview.Renderer
}

// NewAdminHandlers constructs the /admin endpoints.
func NewAdminHandlers(client *backend.Client, renderer *preview.Renderer) *AdminHandlers {
	return &AdminHandlers{client: client, renderer: renderer}
}

// Routes registers the editor endpoints.
func (h *AdminHandlers) Routes(r chi.Router) {
	r.Post("/templates/preview", h.livePreview)
	r.Post("/templates", h.create)
	r.Put("/templates/{id}", h.update)
}

// decodeDraft applies the request form to draft.
func decodeDraft(w http.ResponseWriter, r *http.Request, draft *editor.Draft) bool {
	r.Body = http.MaxBytesReader(w, r.Body, adminFormLimit)
	if err := r.ParseForm(); err != nil {
		writeNotice(w, r, &backend.ValidationError{Message: "The editor form could not be read."}, nil)
		return false
	}
	form, err := editor.DecodeForm(r.PostForm)
	if err == nil {
		err = draft.Apply(form)
	}
	if err != nil {
		var details map[string]any
		if fields, ok := err.(editor.FieldErrors); ok {
			details = map[string]any{"fields": fields}
		}
		writeNotice(w, r, err, details)
		return false
	}
	return true
}

// livePreview renders a draft built from the form without saving it.
func (h *AdminHandlers) livePreview(w http.ResponseWriter, r *http.Request) {
	draft := editor.New()
	if !decodeDraft(w, r, draft) {
		return
	}
	html, err := h.renderer.Render(r.Context(), draft.Template(), preview.SampleProfile())
	if err != nil {
		writeNotice(w, r, err, nil)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

func (h *AdminHandlers) create(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	draft := editor.New()
	if !decodeDraft(w, r, draft) {
		return
	}
	saved, err := h.client.WithToken(s.Token).StoreTemplate(r.Context(), draft.Template())
	if err != nil {
		writeNotice(w, r, err, nil)
		return
	}
	h.respondSaved(w, r, http.StatusCreated, saved, "Template created.")
}

func (h *AdminHandlers) update(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	client := h.client.WithToken(s.Token)
	id := chi.URLParam(r, "id")
	existing, err := client.GetTemplate(r.Context(), id)
	if err != nil {
		writeNotice(w, r, err, nil)
		return
	}
	draft := editor.Edit(existing)
	if !decodeDraft(w, r, draft) {
		return
	}
	saved, err := client.UpdateTemplate(r.Context(), id, draft.Template())
	if err != nil {
		writeNotice(w, r, err, nil)
		return
	}
	h.respondSaved(w, r, http.StatusOK, saved, "Template updated.")
}

func (h *AdminHandlers) respondSaved(w http.ResponseWriter, r *http.Request, status int, tpl domain.Template, message string) {
	requestctx.Logger(r.Context()).Info("template saved", zap.String("template", tpl.Key()), zap.Int("status", status))
	httpx.WriteJSON(w, status, map[string]any{
		"template": tpl,
		"notice":   notice.Success(message),
	})
}
