// Package core defines the repository and cache contracts the service layer depends on.
package core

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// The data layer provides the Redis implementation.
type CacheRepository interface {
	// Set stores a value with the given TTL. A TTL of 0 never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns nil when the key does not exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete returns true if the key was deleted.
	Delete(ctx context.Context, key string) (bool, error)

	// Health checks the health of the cache connection.
	Health(ctx context.Context) error
}
