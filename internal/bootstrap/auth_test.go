package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/crimetracker/crimetracker-api/config"
	"github.com/crimetracker/crimetracker-api/internal/adapters/devauth"
)

func TestBuildAuthServiceRequiresRedis(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc, err := BuildAuthService(context.Background(), AuthConfig{
		Auth: config.AuthConfig{
			Mode:    config.AuthModeMock,
			DevAuth: config.DevAuthConfig{SubjectID: "dev", Email: "dev@example.com"},
		},
		Logger: logger,
	})
	if err == nil {
		t.Fatal("expected an error without redis")
	}
	if svc != nil {
		t.Fatalf("BuildAuthService() = %v, want nil", svc)
	}
}

func TestBuildAuthProvider(t *testing.T) {
	tests := []struct {
		name    string
		auth    config.AuthConfig
		wantDev bool
		wantErr bool
	}{
		{
			name: "mock mode builds the dev provider",
			auth: config.AuthConfig{
				Mode:       config.AuthModeMock,
				DevAuth:    config.DevAuthConfig{SubjectID: "dev", Email: "dev@example.com"},
				SessionTTL: time.Hour,
			},
			wantDev: true,
		},
		{
			name: "mock mode without email",
			auth: config.AuthConfig{
				Mode:    config.AuthModeMock,
				DevAuth: config.DevAuthConfig{SubjectID: "dev"},
			},
			wantErr: true,
		},
		{
			name: "oauth without client id",
			auth: config.AuthConfig{
				Mode:  config.AuthModeOAuth,
				OAuth: config.OAuthConfig{DiscoveryURL: "https://issuer.example.com"},
			},
			wantErr: true,
		},
		{
			name:    "unknown mode",
			auth:    config.AuthConfig{Mode: "saml"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prov, err := buildAuthProvider(context.Background(), tt.auth)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got provider %T", prov)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if _, ok := prov.(*devauth.Provider); ok != tt.wantDev {
				t.Fatalf("provider type = %T", prov)
			}
		})
	}
}
