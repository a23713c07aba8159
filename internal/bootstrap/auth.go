package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/crimetracker/crimetracker-api/config"
	"github.com/crimetracker/crimetracker-api/internal/adapters/devauth"
	"github.com/crimetracker/crimetracker-api/internal/adapters/oidc"
	redisadapter "github.com/crimetracker/crimetracker-api/internal/adapters/redis"
	"github.com/crimetracker/crimetracker-api/internal/ports"
	"github.com/crimetracker/crimetracker-api/internal/service"
)

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	Events      ports.AuthEventStream
	Logger      *slog.Logger
}

// BuildAuthService creates an auth service based on the configured auth mode.
// Sessions live in Redis in both modes.
func BuildAuthService(ctx context.Context, cfg AuthConfig) (*service.AuthService, error) {
	if cfg.RedisClient == nil {
		return nil, errors.New("auth requires a redis client for sessions")
	}

	provider, err := buildAuthProvider(ctx, cfg.Auth)
	if err != nil {
		return nil, err
	}
	if cfg.Logger != nil {
		cfg.Logger.InfoContext(ctx, "auth provider configured", "mode", cfg.Auth.Mode)
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider:   provider,
		Sessions:   redisadapter.NewSessionStoreWithPrefix(cfg.RedisClient, "session:"),
		Events:     cfg.Events,
		SessionTTL: cfg.Auth.SessionTTL,
		Logger:     cfg.Logger,
	}), nil
}

//nolint:ireturn // the provider is selected by mode at runtime.
func buildAuthProvider(ctx context.Context, cfg config.AuthConfig) (ports.AuthProvider, error) {
	switch cfg.Mode {
	case config.AuthModeMock:
		prov, err := devauth.NewProvider(devauth.Config{
			SubjectID:       cfg.DevAuth.SubjectID,
			Email:           cfg.DevAuth.Email,
			DisplayName:     cfg.DevAuth.DisplayName,
			SessionDuration: cfg.SessionTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("create dev auth provider: %w", err)
		}
		return prov, nil

	case config.AuthModeOAuth:
		prov, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			RedirectURL:  cfg.OAuth.RedirectURL,
			Scope:        cfg.OAuth.Scope,
			IssuerURL:    cfg.OAuth.DiscoveryURL,
		})
		if err != nil {
			return nil, fmt.Errorf("create OIDC provider: %w", err)
		}
		return prov, nil

	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}
