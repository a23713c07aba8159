package config

import (
	"errors"
	"strings"
	"time"
)

const (
	defaultMaxUploadBytes = 10 << 20
	maxUploadBytesCeiling = 100 << 20
)

// StorageConfig configures the S3-compatible bucket that holds evidence
// uploads (MinIO in development).
type StorageConfig struct {
	Enabled   bool   `env:"ENABLED"    envDefault:"true"`
	Endpoint  string `env:"ENDPOINT"   envDefault:"localhost:9000"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Bucket    string `env:"BUCKET"     envDefault:"crimetracker-evidence"`
	Region    string `env:"REGION"     envDefault:"us-east-1"`
	UseSSL    bool   `env:"USE_SSL"    envDefault:"false"`

	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	URLTTL         time.Duration `env:"URL_TTL"          envDefault:"24h"`
}

// Sanitize applies guardrails to storage configuration values.
func (s *StorageConfig) Sanitize() {
	s.Endpoint = strings.TrimSpace(s.Endpoint)
	s.Endpoint = strings.TrimPrefix(strings.TrimPrefix(s.Endpoint, "https://"), "http://")
	s.Bucket = strings.TrimSpace(s.Bucket)
	if s.MaxUploadBytes <= 0 {
		s.MaxUploadBytes = defaultMaxUploadBytes
	}
	if s.MaxUploadBytes > maxUploadBytesCeiling {
		s.MaxUploadBytes = maxUploadBytesCeiling
	}
	if s.URLTTL <= 0 {
		s.URLTTL = 24 * time.Hour
	}
}

// Validate checks that an enabled store can connect.
func (s *StorageConfig) Validate() error {
	switch {
	case s.Endpoint == "":
		return errors.New("STORAGE_ENDPOINT is required")
	case s.Bucket == "":
		return errors.New("STORAGE_BUCKET is required")
	case s.AccessKey == "" || s.SecretKey == "":
		return errors.New("STORAGE_ACCESS_KEY and STORAGE_SECRET_KEY are required")
	}
	return nil
}
