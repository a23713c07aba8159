package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/crimetracker/crimetracker-api/config"
	redisadapter "github.com/crimetracker/crimetracker-api/internal/adapters/redis"
	"github.com/crimetracker/crimetracker-api/internal/data"
	"github.com/crimetracker/crimetracker-api/internal/observability/metrics"
	"github.com/crimetracker/crimetracker-api/internal/ports"
	"github.com/crimetracker/crimetracker-api/internal/service"
)

// ServiceContainer holds every service the HTTP layer needs.
type ServiceContainer struct {
	Auth          *service.AuthService
	Resolver      *service.IdentityResolver
	Users         *service.UserService
	Reports       *service.ReportService
	Witness       *service.WitnessService
	Notifications *service.NotificationService
	Stats         *service.StatsService
	Feedback      *service.FeedbackService
	Evidence      *service.EvidenceService // nil when storage is disabled
	Tickets       *service.TicketIssuer
	Events        ports.AuthEventStream
	Metrics       *metrics.Metrics // nil when metrics are disabled
}

// ServiceDeps contains the infrastructure services are built from.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Evidence    ports.EvidenceStore // Optional
	Logger      *slog.Logger
}

type serviceRepositories struct {
	Profiles      *data.ProfileRepo
	Reports       *data.ReportRepo
	Witness       *data.WitnessReportRepo
	Comments      *data.CommentRepo
	Notifications *data.NotificationRepo
	Audit         *data.AuditLogRepo
	Feedback      *data.FeedbackRepo
	Cache         *data.RedisCacheRepo
}

func buildRepositories(db *sql.DB, redisClient redis.UniversalClient) *serviceRepositories {
	return &serviceRepositories{
		Profiles:      data.NewProfileRepo(db),
		Reports:       data.NewReportRepo(db),
		Witness:       data.NewWitnessReportRepo(db),
		Comments:      data.NewCommentRepo(db),
		Notifications: data.NewNotificationRepo(db),
		Audit:         data.NewAuditLogRepo(db),
		Feedback:      data.NewFeedbackRepo(db),
		Cache:         data.NewRedisCacheRepo(redisClient),
	}
}

// buildMetrics returns nil when metrics are disabled. db may be nil; when set
// its pool stats are exported.
func buildMetrics(cfg config.ObservabilityMetricsConfig, db *sql.DB) *metrics.Metrics {
	if !cfg.Enabled {
		return nil
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if db != nil {
		reg.MustRegister(collectors.NewDBStatsCollector(db, "crimetracker"))
	}
	return metrics.New(reg)
}

// NewServices wires repositories, Redis channels and services together.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil || deps.DB == nil || deps.RedisClient == nil {
		return ServiceContainer{}, errors.New("service deps require config, db and redis")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	repos := buildRepositories(deps.DB, deps.RedisClient)
	m := buildMetrics(cfg.Observability.Metrics, deps.DB)
	events := redisadapter.NewAuthEventStream(deps.RedisClient, logger)

	auth, err := BuildAuthService(ctx, AuthConfig{
		Auth:        cfg.Auth,
		RedisClient: deps.RedisClient,
		Events:      events,
		Logger:      logger,
	})
	if err != nil {
		return ServiceContainer{}, err
	}

	tickets, err := service.NewTicketIssuer(service.TicketIssuerOptions{
		Secret: []byte(cfg.Auth.TicketSecret),
		TTL:    cfg.Auth.TicketTTL,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create ticket issuer: %w", err)
	}

	notifications := service.NewNotificationService(service.NotificationServiceOptions{
		Repo:    repos.Notifications,
		Bus:     redisadapter.NewNotificationBus(deps.RedisClient, logger),
		Metrics: m,
		Logger:  logger,
	})

	var evidence *service.EvidenceService
	if deps.Evidence != nil {
		evidence = service.NewEvidenceService(service.EvidenceServiceOptions{
			Store:    deps.Evidence,
			MaxBytes: cfg.Storage.MaxUploadBytes,
			URLTTL:   cfg.Storage.URLTTL,
			Logger:   logger,
		})
	}

	return ServiceContainer{
		Auth: auth,
		Resolver: service.NewIdentityResolver(service.IdentityResolverOptions{
			Profiles: repos.Profiles,
			Metrics:  m,
			Logger:   logger,
		}),
		Users: service.NewUserService(service.UserServiceOptions{
			Profiles: repos.Profiles,
			Events:   events,
			Audit:    repos.Audit,
			Logger:   logger,
		}),
		Reports: service.NewReportService(service.ReportServiceOptions{
			Reports:  repos.Reports,
			Comments: repos.Comments,
			Profiles: repos.Profiles,
			Audit:    repos.Audit,
			Notifier: notifications,
			Logger:   logger,
		}),
		Witness:       service.NewWitnessService(service.WitnessServiceOptions{Repo: repos.Witness}),
		Notifications: notifications,
		Stats: service.NewStatsService(service.StatsServiceOptions{
			Reports:  repos.Reports,
			Witness:  repos.Witness,
			Profiles: repos.Profiles,
			Cache:    repos.Cache,
			TTL:      cfg.Redis.StatsCacheTTL,
			Logger:   logger,
		}),
		Feedback: service.NewFeedbackService(service.FeedbackServiceOptions{
			Feedback: repos.Feedback,
			Audit:    repos.Audit,
		}),
		Evidence: evidence,
		Tickets:  tickets,
		Events:   events,
		Metrics:  m,
	}, nil
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown starts the HTTP server and blocks until a shutdown
// signal arrives or the server fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	errCh := make(chan error, 1)
	server := StartHTTPServer(&HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		Logger:   logger,
		ErrCh:    errCh,
	})

	return waitForShutdown(shutdownConfig{
		errCh:      errCh,
		httpServer: server,
		timeout:    cfg.Config.HTTP.ShutdownTimeout,
		logger:     logger,
	})
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	errCh      <-chan error
	httpServer *http.Server
	timeout    time.Duration
	logger     *slog.Logger
}

// waitForShutdown waits for shutdown signal or service error.
func waitForShutdown(cfg shutdownConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		cfg.logger.Info("shutting down services...")
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop drains the HTTP server.
func gracefulStop(cfg shutdownConfig) error {
	return ShutdownHTTPServer(ShutdownConfig{
		Context: context.Background(),
		Server:  cfg.httpServer,
		Timeout: cfg.timeout,
		Logger:  cfg.logger,
	})
}
