package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/ports"
)

// ErrSessionExpired is returned for a session past its expiry.
var ErrSessionExpired = errors.New("session expired")

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	Sessions ports.SessionStore
	Events   ports.AuthEventStream // Optional: publishes sign-in and sign-out

	// SessionTTL overrides the provider's expiry when positive.
	SessionTTL time.Duration
	Logger     *slog.Logger
}

// AuthService runs the login flow and owns session persistence. It never
// decides roles; a session only proves who the subject is.
type AuthService struct {
	provider   ports.AuthProvider
	sessions   ports.SessionStore
	events     ports.AuthEventStream
	sessionTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	if opts.Provider == nil {
		panic("AuthProvider is required")
	}
	if opts.Sessions == nil {
		panic("SessionStore is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		provider:   opts.Provider,
		sessions:   opts.Sessions,
		events:     opts.Events,
		sessionTTL: opts.SessionTTL,
		logger:     logger.With("component", "auth_service"),
		now:        time.Now,
	}
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an authentication flow and returns the provider auth URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}
	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLogin exchanges the code, persists a session and announces the
// sign-in so live guards for the subject re-resolve.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*domainauth.Session, error) {
	switch {
	case input.Code == "":
		return nil, errors.New("authorization code is required")
	case input.State == "":
		return nil, errors.New("state parameter is required")
	case input.Nonce == "":
		return nil, errors.New("nonce parameter is required")
	}

	id, err := s.provider.Exchange(ctx, ports.ExchangeInput(input))
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	if id.SubjectID == "" {
		return nil, errors.New("provider returned no subject")
	}

	session := domainauth.Session{
		ID:          uuid.NewString(),
		SubjectID:   id.SubjectID,
		Email:       id.Email,
		DisplayName: id.DisplayName,
		ExpiresAt:   id.ExpiresAt,
	}
	if s.sessionTTL > 0 {
		session.ExpiresAt = s.now().Add(s.sessionTTL)
	}
	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	subject := session.Subject()
	s.publish(ctx, ports.AuthEvent{SubjectID: subject.ID, Subject: &subject, Cause: ports.CauseSignIn})
	return &session, nil
}

// GetSession retrieves a live session by ID, removing it when expired.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.Expired(s.now()) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(ErrSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, ErrSessionExpired
	}
	return &session, nil
}

// Logout removes a session and announces the sign-out.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	// The subject is only needed for the event; a missing session still logs out.
	session, getErr := s.sessions.Get(ctx, sessionID)

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if getErr == nil && session.SubjectID != "" {
		s.publish(ctx, ports.AuthEvent{SubjectID: session.SubjectID, Cause: ports.CauseSignOut})
	}
	return nil
}

func (s *AuthService) publish(ctx context.Context, ev ports.AuthEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "failed to publish auth event",
			"subject_id", ev.SubjectID, "cause", ev.Cause, "error", err)
	}
}
