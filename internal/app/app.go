// Package app wires configuration, logging, metrics, services and the HTTP
// router into a runnable server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"marketcli/internal/config"
	apperrors "marketcli/internal/errors"
	"marketcli/internal/exporter"
	"marketcli/internal/infrastructure"
	"marketcli/internal/middleware"
	"marketcli/internal/pipeline"
	"marketcli/internal/services"
	"marketcli/internal/summarizer"
	transporthttp "marketcli/internal/transport/http"
	"marketcli/internal/validation"
	"marketcli/internal/validator"
)

// Application holds the wired components of the analysis server
type Application struct {
	config *config.Config
	logger *slog.Logger
	otel   *infrastructure.OTelProviders
	router chi.Router
	server *http.Server
}

// New loads configuration and wires the full application
func New(ctx context.Context) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	metrics, err := infrastructure.NewPipelineMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	var summaryClient pipeline.Summarizer
	summaryEnabled := false
	if cfg.LLM.Enabled {
		client, err := summarizer.New(ctx, cfg.LLM, logger)
		if err != nil {
			// A missing credential degrades to agents-only output rather
			// than refusing to start.
			logger.Warn("summarizer disabled",
				slog.String("reason", err.Error()))
		} else {
			summaryClient = client
			summaryEnabled = true
		}
	}

	var cache *pipeline.Cache
	if cfg.Cache.Enabled {
		cache = pipeline.NewCache(cfg.Cache.TTL, cfg.Cache.MaxSize)
	}

	pipe := pipeline.New(validator.New(logger), summaryClient, cache, metrics, logger)

	analysisService := services.NewAnalysisService(
		pipe,
		exporter.New(logger),
		cfg.Analysis,
		summaryEnabled,
		metrics,
		logger,
	)
	healthService := services.NewHealthService(infrastructure.ServiceVersion, summaryEnabled)

	app := &Application{
		config: cfg,
		logger: logger,
		otel:   otelProviders,
	}
	app.router = app.buildRouter(analysisService, healthService)
	app.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

// buildRouter assembles the middleware chain and route tree
func (a *Application) buildRouter(analysisService *services.AnalysisService, healthService *services.HealthService) chi.Router {
	errorHandler := apperrors.NewErrorHandler(a.logger, a.config.Logging.Level == "debug")
	fileValidator := validation.NewFileValidator(
		a.config.Upload.MaxFileSize,
		a.config.Upload.AllowedSuffix,
		a.logger,
	)
	rateLimiter := middleware.NewRateLimiter(
		a.config.Server.RateLimitRPS,
		a.config.Server.RateLimitBurst,
		a.logger,
	)

	analysisHandler := transporthttp.NewAnalysisHandler(
		analysisService,
		fileValidator,
		errorHandler,
		a.config.Upload.MaxFileSize,
		a.logger,
	)
	healthHandler := transporthttp.NewHealthHandler(healthService)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredLogger(a.logger))
	r.Use(middleware.Recoverer(a.logger))

	r.Route("/api", func(r chi.Router) {
		r.With(rateLimiter.Handler).Mount("/analysis", analysisHandler.Routes())
		r.Mount("/health", healthHandler.Routes())
	})
	r.Method(http.MethodGet, "/metrics", a.otel.PrometheusHTTP)

	return r
}

// Router exposes the route tree, primarily for tests
func (a *Application) Router() chi.Router {
	return a.router
}

// Run starts the HTTP server and blocks until shutdown completes
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting",
			slog.String("addr", a.server.Addr),
			slog.String("version", infrastructure.ServiceVersion))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if err := a.otel.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
	}
	if err := infrastructure.CloseLogFile(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}

	a.logger.Info("shutdown complete")
	return nil
}
