package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/juantap/web/internal/acquisition"
	"github.com/juantap/web/internal/backend"
	"github.com/juantap/web/internal/domain"
	"github.com/juantap/web/internal/notice"
	"github.com/juantap/web/internal/platform/httpx"
	"github.com/juantap/web/internal/platform/requestctx"
	"github.com/juantap/web/internal/preview"
	"github.com/juantap/web/internal/session"
)

const templateKeyParam = "key"

// TemplateHandlers serves the catalog, previews and the acquisition sidebar.
type TemplateHandlers struct {
	client     *backend.Client
	renderer   *preview.Renderer
	resolution acquisition.Resolution
}

// TemplateOption customises TemplateHandlers.
type TemplateOption func(*TemplateHandlers)

// WithTemplateResolution selects how concurrent status lookups are resolved.
func WithTemplateResolution(mode acquisition.Resolution) TemplateOption {
	return func(h *TemplateHandlers) { h.resolution = mode }
}

// NewTemplateHandlers constructs the /templates endpoints.
func NewTemplateHandlers(client *backend.Client, renderer *preview.Renderer, opts ...TemplateOption) *TemplateHandlers {
	h := &TemplateHandlers{client: client, renderer: renderer, resolution: acquisition.ResolveCompletion}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes registers the template endpoints.
func (h *TemplateHandlers) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Route("/{"+templateKeyParam+"}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Get("/preview", h.preview)
		r.Get("/status", h.status)
		r.Post("/save", h.save)
		r.Delete("/save", h.unsave)
		r.Post("/use", h.use)
		r.Delete("/use", h.unuse)
	})
}

// list answers the public catalog. Hidden templates are never listed; category and tag
// narrow the result.
func (h *TemplateHandlers) list(w http.ResponseWriter, r *http.Request) {
	templates, err := h.client.ListTemplates(r.Context())
	if err != nil {
		writeNotice(w, r, err, nil)
		return
	}

	query := r.URL.Query()
	category, filterCategory := domain.ParseCategory(query.Get("category"))
	tag := strings.ToLower(strings.TrimSpace(query.Get("tag")))

	out := make([]domain.Template, 0, len(templates))
	for _, tpl := range templates {
		if tpl.IsHidden {
			continue
		}
		if filterCategory && tpl.Category != category {
			continue
		}
		if tag != "" && !hasTag(tpl, tag) {
			continue
		}
		out = append(out, tpl)
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"templates": out, "count": len(out)})
}

func hasTag(tpl domain.Template, tag string) bool {
	for _, t := range tpl.Tags {
		if strings.EqualFold(strings.TrimSpace(t), tag) {
			return true
		}
	}
	return false
}

func (h *TemplateHandlers) get(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.client.GetTemplate(r.Context(), chi.URLParam(r, templateKeyParam))
	if err != nil {
		writeNotice(w, r, err, nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"template": tpl})
}

// preview renders the template with the session user's profile, or the sample profile
// for anonymous visitors.
func (h *TemplateHandlers) preview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tpl, err := h.client.GetTemplate(ctx, chi.URLParam(r, templateKeyParam))
	if err != nil {
		writeNotice(w, r, err, nil)
		return
	}

	profile := preview.SampleProfile()
	if s, ok := session.FromContext(ctx); ok && s.Token != "" {
		user, err := profileFor(ctx, h.client.WithToken(s.Token), s)
		if err != nil {
			requestctx.Logger(ctx).Info("preview falls back to sample profile", zap.Error(err))
		} else {
			profile = user
		}
	}

	requestctx.Annotate(ctx, zap.String("variant", h.renderer.Resolve(tpl).ID))
	html, err := h.renderer.Render(ctx, tpl, profile)
	if err != nil {
		writeNotice(w, r, err, nil)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

// status reconciles the acquisition state. A collection that failed to load is reported
// as a notice next to the state the others produced.
func (h *TemplateHandlers) status(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	tpl, err := h.client.GetTemplate(r.Context(), chi.URLParam(r, templateKeyParam))
	if err != nil {
		writeNotice(w, r, err, nil)
		return
	}
	state, err := h.reconciler(s).Load(r.Context(), tpl.Key())
	payload := map[string]any{"state": state, "canUse": state.CanMarkUsed()}
	if err != nil {
		requestctx.Logger(r.Context()).Warn("acquisition status incomplete", zap.String("template", tpl.Key()), zap.Error(err))
		payload["notice"] = notice.FromError(err)
	}
	httpx.WriteJSON(w, http.StatusOK, payload)
}

type mutation func(rec *acquisition.Reconciler, r *http.Request, tpl domain.Template, state domain.AcquisitionState) (domain.AcquisitionState, error)

func (h *TemplateHandlers) mutate(w http.ResponseWriter, r *http.Request, apply mutation, success string) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	tpl, err := h.client.GetTemplate(ctx, chi.URLParam(r, templateKeyParam))
	if err != nil {
		writeNotice(w, r, err, nil)
		return
	}
	rec := h.reconciler(s)
	current, err := rec.Load(ctx, tpl.Key())
	if err != nil {
		requestctx.Logger(ctx).Warn("acquisition status incomplete before mutation", zap.String("template", tpl.Key()), zap.Error(err))
	}
	next, err := apply(rec, r, tpl, current)
	if err != nil {
		writeNotice(w, r, err, map[string]any{"state": current})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"state":  next,
		"canUse": next.CanMarkUsed(),
		"notice": notice.Success(success),
	})
}

func (h *TemplateHandlers) save(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(rec *acquisition.Reconciler, r *http.Request, tpl domain.Template, st domain.AcquisitionState) (domain.AcquisitionState, error) {
		return rec.Save(r.Context(), tpl, st)
	}, "Template saved.")
}

func (h *TemplateHandlers) unsave(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(rec *acquisition.Reconciler, r *http.Request, tpl domain.Template, st domain.AcquisitionState) (domain.AcquisitionState, error) {
		return rec.Unsave(r.Context(), tpl, st)
	}, "Template removed from your saved list.")
}

func (h *TemplateHandlers) use(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(rec *acquisition.Reconciler, r *http.Request, tpl domain.Template, st domain.AcquisitionState) (domain.AcquisitionState, error) {
		return rec.MarkUsed(r.Context(), tpl, st)
	}, "Template applied to your profile.")
}

func (h *TemplateHandlers) unuse(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(rec *acquisition.Reconciler, r *http.Request, tpl domain.Template, st domain.AcquisitionState) (domain.AcquisitionState, error) {
		return rec.MarkUnused(r.Context(), tpl, st)
	}, "Template removed from your profile.")
}

func (h *TemplateHandlers) reconciler(s *session.Session) *acquisition.Reconciler {
	return acquisition.New(h.client.WithToken(s.Token), acquisition.WithResolution(h.resolution))
}
