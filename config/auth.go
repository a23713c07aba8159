package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses OAuth/OIDC for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

const (
	minSessionTTL   = 5 * time.Minute
	maxTicketTTL    = 5 * time.Minute
	minTicketSecret = 32
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// OAuthConfig contains OAuth/OIDC configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	// DiscoveryURL is the issuer or its .well-known/openid-configuration URL.
	DiscoveryURL string `env:"DISCOVERY_URL"`
}

// DevAuthConfig controls the mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing. The identity only
// proves who signs in; its role still comes from the profile table.
type DevAuthConfig struct {
	SubjectID   string `env:"SUBJECT_ID"   envDefault:"dev-user"`
	Email       string `env:"EMAIL"        envDefault:"dev@example.com"`
	DisplayName string `env:"DISPLAY_NAME" envDefault:"Dev User"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// SessionTTL is how long a signed-in session lives in Redis.
	SessionTTL time.Duration `env:"AUTH_SESSION_TTL" envDefault:"8h"`

	// TicketSecret signs the websocket handshake tickets (HS256).
	TicketSecret string `env:"AUTH_TICKET_SECRET"`

	// TicketTTL bounds how long a ticket may be presented.
	TicketTTL time.Duration `env:"AUTH_TICKET_TTL" envDefault:"60s"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	a.TicketSecret = strings.TrimSpace(a.TicketSecret)
	a.OAuth.DiscoveryURL = strings.TrimSpace(a.OAuth.DiscoveryURL)
	if a.SessionTTL < minSessionTTL {
		a.SessionTTL = minSessionTTL
	}
	if a.TicketTTL <= 0 || a.TicketTTL > maxTicketTTL {
		a.TicketTTL = 60 * time.Second
	}
}

// Validate checks that the selected mode is fully configured. Mock mode is
// refused outside development.
func (a *AuthConfig) Validate(isDev bool) error {
	if len(a.TicketSecret) < minTicketSecret {
		return fmt.Errorf("AUTH_TICKET_SECRET must be at least %d bytes", minTicketSecret)
	}
	switch a.Mode {
	case AuthModeMock:
		if !isDev {
			return errors.New("AUTH_MODE=mock requires DEV=true")
		}
		if a.DevAuth.SubjectID == "" || a.DevAuth.Email == "" {
			return errors.New("dev auth requires DEV_AUTH_SUBJECT_ID and DEV_AUTH_EMAIL")
		}
	case AuthModeOAuth:
		if a.OAuth.ClientID == "" || a.OAuth.ClientSecret == "" || a.OAuth.DiscoveryURL == "" {
			return errors.New("oauth requires OAUTH_CLIENT_ID, OAUTH_CLIENT_SECRET and OAUTH_DISCOVERY_URL")
		}
	default:
		return fmt.Errorf("unknown auth mode %q", a.Mode)
	}
	return nil
}
