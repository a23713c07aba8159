package ports

// Package ports defines interfaces (hexagonal ports) for auth, eventing and storage.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"errors"

	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
)

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// AuthProvider initiates and completes an authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow and returns the authenticated subject.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.ProviderIdentity, error)
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// ErrSessionNotFound is returned by SessionStore.Get for an unknown or evicted session.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists and retrieves sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}
