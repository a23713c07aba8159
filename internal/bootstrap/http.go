package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/crimetracker/crimetracker-api/config"
	httpx "github.com/crimetracker/crimetracker-api/internal/http"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
	// ErrCh receives the listener error if the server stops unexpectedly.
	ErrCh    chan<- error
}

// RouterServices maps the service container and config onto the router's
// dependencies.
func RouterServices(appCfg *config.AppConfig, svc ServiceContainer, logger *slog.Logger) httpx.RouterServices {
	return httpx.RouterServices{
		Auth:           svc.Auth,
		Resolver:       svc.Resolver,
		Users:          svc.Users,
		Reports:        svc.Reports,
		Witness:        svc.Witness,
		Notifications:  svc.Notifications,
		Stats:          svc.Stats,
		Feedback:       svc.Feedback,
		Evidence:       svc.Evidence,
		Tickets:        svc.Tickets,
		Events:         svc.Events,
		Metrics:        svc.Metrics,
		CookieDomain:   appCfg.HTTP.CookieDomain,
		AllowedOrigins: append([]string(nil), appCfg.HTTP.AllowedOrigins...),
		AuthRateLimit: httpx.RateLimitConfig{
			PerSecond: appCfg.HTTP.AuthRateLimit.PerSecond,
			Burst:     appCfg.HTTP.AuthRateLimit.Burst,
			IdleTTL:   appCfg.HTTP.AuthRateLimit.IdleTTL,
		},
		MetricsPath: appCfg.Observability.Metrics.Path,
		Logger:      logger,
	}
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	handler := httpx.NewRouter(RouterServices(appCfg, cfg.Services, logger))
	server := newServer(appCfg.HTTP, handler)

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			if cfg.ErrCh != nil {
				cfg.ErrCh <- fmt.Errorf("http server: %w", err)
			}
		}
	}()

	return server
}

// newServer builds the server. Long-lived websocket handlers derive from the
// base context, which is canceled when Shutdown starts.
func newServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	addr := cfg.Addr
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		// No WriteTimeout: it would cut websocket streams.
		IdleTimeout:       cfg.IdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	server.RegisterOnShutdown(cancel)
	return server
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Timeout time.Duration
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(cfg.Context, timeout)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}
