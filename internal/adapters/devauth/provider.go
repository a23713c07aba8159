// Package devauth provides a config-driven AuthProvider for local development.
package devauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"time"

	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/ports"
)

// Config controls the dev auth provider behavior.
// SubjectID and Email are required.
type Config struct {
	SubjectID       string
	Email           string
	DisplayName     string
	SessionDuration time.Duration // default 8h when zero
}

// Provider implements ports.AuthProvider for local development.
// Begin redirects straight back to our own callback; Exchange ignores the
// code and returns the configured subject. The subject still needs a profile
// with a role before any guarded page opens.
type Provider struct {
	subject         domainauth.ProviderIdentity
	sessionDuration time.Duration
	now             func() time.Time
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.SubjectID == "" {
		return nil, errors.New("dev auth: SubjectID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	dur := cfg.SessionDuration
	if dur == 0 {
		dur = 8 * time.Hour
	}
	return &Provider{
		subject: domainauth.ProviderIdentity{
			SubjectID:   cfg.SubjectID,
			Email:       cfg.Email,
			DisplayName: cfg.DisplayName,
		},
		sessionDuration: dur,
		now:             time.Now,
	}, nil
}

// Begin returns a local callback URL with fresh state and nonce.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	q := url.Values{"code": {"dev"}, "state": {state}}
	return "/auth/callback?" + q.Encode(), state, nonce, nil
}

// Exchange returns the dev subject with a fresh expiry. State and nonce are
// checked by the auth service, not here.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (domainauth.ProviderIdentity, error) {
	id := p.subject
	id.ExpiresAt = p.now().Add(p.sessionDuration)
	return id, nil
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	b := make([]byte, (n*3+3)/4+1)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}

var _ ports.AuthProvider = (*Provider)(nil)
