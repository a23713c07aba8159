package config

import (
	"log/slog"
	"strings"
)

// ObservabilityConfig groups configuration that controls logging and metrics.
type ObservabilityConfig struct {
	Logging ObservabilityLoggingConfig
	Metrics ObservabilityMetricsConfig
}

// Sanitize applies guardrails to observability sub-configs.
func (c *ObservabilityConfig) Sanitize() {
	c.Logging.Sanitize()
	c.Metrics.Sanitize()
}

// ObservabilityLoggingConfig controls the process logger.
type ObservabilityLoggingConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// Sanitize normalises the level name.
func (c *ObservabilityLoggingConfig) Sanitize() {
	c.Level = strings.ToLower(strings.TrimSpace(c.Level))
	if _, ok := logLevels[c.Level]; !ok {
		c.Level = "info"
	}
}

//nolint:gochecknoglobals // fixed lookup table
var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel returns the configured level, Info when unknown.
func (c ObservabilityLoggingConfig) SlogLevel() slog.Level {
	return logLevels[c.Level]
}

// ObservabilityMetricsConfig controls the Prometheus scrape endpoint.
type ObservabilityMetricsConfig struct {
	Enabled bool   `env:"OBSERVABILITY_METRICS_ENABLED" envDefault:"true"`
	Path    string `env:"OBSERVABILITY_METRICS_PATH"    envDefault:"/metrics"`
}

// Sanitize normalises derived fields and enforces safe defaults.
func (c *ObservabilityMetricsConfig) Sanitize() {
	c.Path = strings.TrimSpace(c.Path)
	if c.Path == "" {
		c.Path = "/metrics"
	}
	if !strings.HasPrefix(c.Path, "/") {
		c.Path = "/" + c.Path
	}
}
