package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"tincli/internal/config"
	apperrors "tincli/internal/errors"
	"tincli/internal/infrastructure"
	customMiddleware "tincli/internal/middleware"
	"tincli/internal/services"
	handlers "tincli/internal/transport/http"
	"tincli/pkg/contracts"
)

// AppName is logged at startup
const AppName = "TIN Consolidator"

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Service       *services.ConsolidationService
	ErrorHandler  *apperrors.ErrorHandler
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders

	// baseCtx is the parent of every request context
	baseCtx    context.Context
	cancelBase context.CancelFunc
}

// NewApplication loads configuration from the environment and config file,
// initializes the global logger and builds the application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	paths, err := config.GetPaths()
	if err == nil {
		cfg.Logging.FilePath = paths.ResolveLogPath(cfg.Logging.FilePath)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if paths != nil {
		paths.LogPathResolution(logger, cfg.Logging.FilePath)
	}

	return New(cfg, logger)
}

// New wires the application from an explicit config and logger
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.NewConsolidationMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create consolidation metrics: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		ErrorHandler:  apperrors.NewErrorHandler(logger, cfg.Logging.Development),
		Service:       services.NewConsolidationService(cfg, metrics, logger),
	}

	a.setupRouter()
	a.createServer()

	return a, nil
}

// setupRouter builds the chi router.
// Order: RequestID → RealIP → OTel → Logger → Recoverer → headers → rate limit
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(chimw.RealIP)

	if otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders); err != nil {
		a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
	} else {
		r.Use(otelMiddleware.Handler)
	}

	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(apperrors.RecoveryMiddleware(a.ErrorHandler))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Server.AllowedOrigins,
	}))

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	health := handlers.NewHealthHandler(a.Service, a.Logger)
	consolidation := handlers.NewConsolidationHandler(a.Service, a.ErrorHandler, a.Config.Server.OperationTimeout, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health.HealthCheck)
		r.Get("/version", health.Version)

		r.Group(func(r chi.Router) {
			if a.Config.Server.RateLimitRPS > 0 {
				r.Use(customMiddleware.NewRateLimiter(
					a.Config.Server.RateLimitRPS,
					a.Config.Server.RateLimitBurst,
					a.Logger,
					a.ErrorHandler,
				).Handler)
			}
			r.Mount("/consolidate", consolidation.Routes())
		})
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

func (a *Application) createServer() {
	a.baseCtx, a.cancelBase = context.WithCancel(context.Background())
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return a.baseCtx },
	}
}

// Serve accepts connections on ln until Stop is called. It returns nil after
// a graceful shutdown.
func (a *Application) Serve(ln net.Listener) error {
	a.Logger.Info("HTTP server listening",
		slog.String("address", ln.Addr().String()),
		slog.String("level", a.Config.Logging.Level))

	if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop gracefully stops the application. It waits up to ShutdownTimeout for
// in-flight requests. Runs still active after that have their request context
// cancelled, and Stop returns once they have rolled back their staged outputs.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")
	defer a.cancelBase()

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	shutdownErr := a.Server.Shutdown(shutdownCtx)
	if shutdownErr != nil {
		a.Logger.WarnContext(ctx, "Cancelling requests still running after shutdown timeout",
			slog.Duration("timeout", a.Config.Server.ShutdownTimeout),
			slog.String("error", shutdownErr.Error()))
		a.cancelBase()
		a.Service.Wait()
	}

	if a.OTelProviders != nil {
		otelCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
		defer cancel()
		if err := a.OTelProviders.Shutdown(otelCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	if shutdownErr != nil {
		return fmt.Errorf("server shutdown error: %w", shutdownErr)
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run listens on the configured port until SIGINT or SIGTERM
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- a.Serve(ln) }()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
		a.Logger.Info("Received interrupt signal")
	}

	return a.Stop(context.Background())
}
