package config

import (
	"strings"
	"time"
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the base URL of the application (e.g., "https://app.example.com").
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// AllowedOrigins lists origins allowed to open websockets. Empty means
	// same origin only.
	AllowedOrigins []string `env:"HTTP_ALLOWED_ORIGINS" envSeparator:","`

	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"30s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT"     envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// AuthRateLimit throttles login, registration and feedback per client IP.
	AuthRateLimit RateLimitConfig `envPrefix:"HTTP_AUTH_RATE_"`
}

// RateLimitConfig is a token bucket: PerSecond refill and Burst capacity.
type RateLimitConfig struct {
	PerSecond float64       `env:"PER_SECOND" envDefault:"1"`
	Burst     int           `env:"BURST"      envDefault:"5"`
	IdleTTL   time.Duration `env:"IDLE_TTL"   envDefault:"5m"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if strings.TrimSpace(h.Addr) == "" {
		h.Addr = ":8080"
	}
	h.BaseURL = strings.TrimSuffix(strings.TrimSpace(h.BaseURL), "/")

	origins := h.AllowedOrigins[:0]
	for _, o := range h.AllowedOrigins {
		if o = strings.TrimSuffix(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	h.AllowedOrigins = origins

	if h.ReadTimeout <= 0 {
		h.ReadTimeout = 30 * time.Second
	}
	if h.IdleTimeout <= 0 {
		h.IdleTimeout = 120 * time.Second
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 15 * time.Second
	}
	if h.AuthRateLimit.PerSecond <= 0 {
		h.AuthRateLimit.PerSecond = 1
	}
	if h.AuthRateLimit.Burst < 1 {
		h.AuthRateLimit.Burst = 1
	}
	if h.AuthRateLimit.IdleTTL <= 0 {
		h.AuthRateLimit.IdleTTL = 5 * time.Minute
	}
}
