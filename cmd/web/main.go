package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/juantap/web/internal/acquisition"
	"github.com/juantap/web/internal/backend"
	"github.com/juantap/web/internal/handlers"
	"github.com/juantap/web/internal/platform/config"
	"github.com/juantap/web/internal/platform/observability"
	"github.com/juantap/web/internal/preview"
	"github.com/juantap/web/internal/session"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	requestTimeout   = 60 * time.Second
	readinessTimeout = 3 * time.Second
)

func main() {
	startedAt := time.Now().UTC()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	baseLogger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("web").With(zap.String("environment", cfg.Environment))

	resolution, err := acquisition.ParseResolution(cfg.Status.Resolution)
	if err != nil {
		logger.Fatal("invalid status resolution", zap.Error(err))
	}

	client := backend.NewClient(cfg.Backend.BaseURL,
		backend.WithPaymentTimeout(cfg.Payments.Timeout),
		backend.WithMaxReceiptBytes(cfg.Payments.MaxReceiptBytes),
	)

	renderer, err := preview.NewRenderer(preview.WithFrontendBaseURL(cfg.Frontend.BaseURL))
	if err != nil {
		logger.Fatal("failed to initialise preview renderer", zap.Error(err))
	}

	store, err := session.NewCookieStore(cfg.Session.CookieName, cfg.Session.Secret, cfg.Session.Secure)
	if err != nil {
		logger.Fatal("failed to initialise session store", zap.Error(err))
	}
	sessions := session.NewManager(store, session.WithTTL(cfg.Session.TTL))

	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithHealthVersion(version),
		handlers.WithHealthStartedAt(startedAt),
		handlers.WithReadinessCheck("backend", func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
			defer cancel()
			_, err := client.ListTemplates(ctx)
			return err
		}),
	)

	middlewares := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		observability.TraceMiddleware(),
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(),
		sessions.Middleware(),
		middleware.Timeout(requestTimeout),
	}

	var opts []handlers.Option
	opts = append(opts, handlers.WithMiddlewares(middlewares...))
	opts = append(opts, handlers.WithHealthHandlers(healthHandlers))
	opts = append(opts, handlers.WithSessionRoutes(handlers.NewSessionHandlers(client, sessions).Routes))
	opts = append(opts, handlers.WithTemplateRoutes(handlers.NewTemplateHandlers(client, renderer, handlers.WithTemplateResolution(resolution)).Routes))
	opts = append(opts, handlers.WithPaymentRoutes(handlers.NewPaymentHandlers(client).Routes))
	opts = append(opts, handlers.WithMeRoutes(handlers.NewMeHandlers(client, cfg.Frontend.BaseURL).Routes))
	opts = append(opts, handlers.WithAdminRoutes(handlers.NewAdminHandlers(client, renderer).Routes))

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handlers.NewRouter(opts...),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("juantap web listening",
			zap.String("version", version),
			zap.String("backend", cfg.Backend.BaseURL),
			zap.String("resolution", string(resolution)),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
