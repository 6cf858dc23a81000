// Package handlers exposes the card service over HTTP.
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/juantap/web/internal/platform/httpx"
)

// RouteRegistrar registers a set of routes against the provided router.
type RouteRegistrar func(r chi.Router)

type routerConfig struct {
	middlewares []func(http.Handler) http.Handler
	health      *HealthHandlers

	session   RouteRegistrar
	templates RouteRegistrar
	payments  RouteRegistrar
	me        RouteRegistrar
	admin     RouteRegistrar
}

// Option customises the router configuration before construction.
type Option func(*routerConfig)

const (
	defaultTimeout    = 60 * time.Second
	errorNotFoundCode = "route_not_found"
)

// WithMiddlewares replaces the default middleware chain.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.middlewares = mw
	}
}

// WithHealthHandlers overrides the liveness and readiness handlers.
func WithHealthHandlers(h *HealthHandlers) Option {
	return func(cfg *routerConfig) {
		cfg.health = h
	}
}

// WithSessionRoutes mounts /session.
func WithSessionRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) { cfg.session = reg }
}

// WithTemplateRoutes mounts /templates.
func WithTemplateRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) { cfg.templates = reg }
}

// WithPaymentRoutes mounts /payments.
func WithPaymentRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) { cfg.payments = reg }
}

// WithMeRoutes mounts /me.
func WithMeRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) { cfg.me = reg }
}

// WithAdminRoutes mounts /admin.
func WithAdminRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) { cfg.admin = reg }
}

// NewRouter constructs the chi router with shared middleware and the route groups.
// Groups without a registrar answer 501.
func NewRouter(opts ...Option) chi.Router {
	cfg := routerConfig{
		middlewares: []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Timeout(defaultTimeout),
		},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.health == nil {
		cfg.health = NewHealthHandlers()
	}

	r := chi.NewRouter()
	for _, mw := range cfg.middlewares {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError(errorNotFoundCode, fmt.Sprintf("no route for %s", req.URL.Path), http.StatusNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("method_not_allowed", fmt.Sprintf("method %s not allowed on %s", req.Method, req.URL.Path), http.StatusMethodNotAllowed))
	})

	r.Get("/healthz", cfg.health.Healthz)
	r.Get("/readyz", cfg.health.Readyz)

	mount := func(path string, reg RouteRegistrar, name string) {
		r.Route(path, func(group chi.Router) {
			if reg != nil {
				reg(group)
				return
			}
			group.HandleFunc("/*", notImplemented(name))
			group.HandleFunc("/", notImplemented(name))
		})
	}
	mount("/session", cfg.session, "session")
	mount("/templates", cfg.templates, "templates")
	mount("/payments", cfg.payments, "payments")
	mount("/me", cfg.me, "me")
	mount("/admin", cfg.admin, "admin")
	return r
}

func notImplemented(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(r.Context(), w, httpx.NewError("not_implemented", fmt.Sprintf("%s endpoints are not configured", name), http.StatusNotImplemented))
	}
}
