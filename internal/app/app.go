package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"bodylab/internal/config"
	apierrors "bodylab/internal/errors"
	"bodylab/internal/infrastructure"
	customMiddleware "bodylab/internal/middleware"
	"bodylab/internal/requestbody"
	"bodylab/internal/services"
	handlers "bodylab/internal/transport/http"
)

// Application represents the main application container
type Application struct {
	Config          *config.Config
	Router          *chi.Mux
	Server          *http.Server
	Logger          *slog.Logger
	OTelProviders   *infrastructure.OTelProviders
	BusinessMetrics *infrastructure.BusinessMetrics
	HealthService   *services.HealthService
	ErrorHandler    *apierrors.ErrorHandler
	Decoder         *requestbody.Decoder

	stopOnce sync.Once
	stopErr  error
}

// NewApplication builds the application from a loaded configuration.
// Spans are exported to stdout when tracing is enabled.
func NewApplication(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return newApplication(cfg, logger, os.Stdout)
}

func newApplication(cfg *config.Config, logger *slog.Logger, traceOut io.Writer) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("commit", config.BuildCommit))

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, traceOut, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	businessMetrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	if err := infrastructure.RegisterSystemMetrics(otelProviders.Meter, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to register system metrics: %w", err)
	}

	app := &Application{
		Config:          cfg,
		Logger:          logger,
		OTelProviders:   otelProviders,
		BusinessMetrics: businessMetrics,
		ErrorHandler:    apierrors.NewErrorHandler(logger, cfg.Logging.Level == "debug"),
		Decoder: requestbody.NewDecoder(requestbody.NewLogObserver(
			logger, cfg.RequestBody.LogBody, cfg.RequestBody.LogRecord,
		)),
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices creates the services behind the operational endpoints
func (a *Application) initializeServices() {
	a.HealthService = services.NewHealthService(services.BuildInfo{
		Name:    config.AppName,
		Version: config.AppVersion,
		Commit:  config.BuildCommit,
		Date:    config.BuildDate,
	}, a.Logger)

	a.HealthService.RegisterCheck("request_body", services.Ready(
		fmt.Sprintf("decoding bodies up to %d bytes", a.Config.RequestBody.MaxBytes)))
	a.HealthService.RegisterCheck("telemetry", func(context.Context) services.ServiceHealth {
		if a.Config.Telemetry.MetricsEnabled && a.OTelProviders.PrometheusHTTP == nil {
			return services.ServiceHealth{Status: "not_ready", Message: "metrics exporter missing"}
		}
		return services.ServiceHealth{Status: "ready"}
	})
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Applied ahead of routing so 404/405 answers and CORS preflights get them too
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.SecurityHeaders)
	if a.Config.Security.EnableCORS {
		r.Use(cors.Handler(a.corsOptions()))
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	// Scrapes stay out of the access log and rate limit
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.BusinessMetrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.ErrorHandler))

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
				a.ErrorHandler,
			).Handler)
		}

		r.Use(customMiddleware.BodyLimit(a.Config.RequestBody.MaxBytes))

		r.Mount("/api", handlers.NewHealthHandler(a.HealthService, a.Logger, a.ErrorHandler).Routes())
		handlers.NewRequestBodyHandler(a.Decoder, a.BusinessMetrics, a.Logger, a.ErrorHandler).RegisterRoutes(r)
	})

	a.Router = r
}

func (a *Application) corsOptions() cors.Options {
	return cors.Options{
		AllowedOrigins:   a.Config.Security.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", customMiddleware.RequestIDHeader},
		ExposedHeaders:   []string{customMiddleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Run listens on the configured address and serves until ctx is cancelled
// or an interrupt signal arrives
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}

	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then stops gracefully
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// A server closed by an outside Stop must release the watcher below
		defer cancel()

		a.Logger.InfoContext(ctx, "Application started",
			slog.String("address", ln.Addr().String()),
			slog.String("level", a.Config.Logging.Level))

		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.InfoContext(ctx, "Shutdown requested")
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Stop gracefully stops the application. Only the first call has an effect.
func (a *Application) Stop(ctx context.Context) error {
	a.stopOnce.Do(func() {
		a.stopErr = a.shutdown(ctx)
	})
	return a.stopErr
}

func (a *Application) shutdown(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			infrastructure.WithError(a.Logger, err).ErrorContext(ctx, "Error shutting down OpenTelemetry")
			errs = append(errs, err)
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}
