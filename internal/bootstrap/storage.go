package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/crimetracker/crimetracker-api/config"
	"github.com/crimetracker/crimetracker-api/internal/adapters/objectstore"
)

// ConnectEvidenceStore builds the MinIO client and makes sure the bucket
// exists. It returns nil, nil when storage is disabled.
func ConnectEvidenceStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*objectstore.MinioStore, error) {
	if !cfg.Enabled {
		if logger != nil {
			logger.WarnContext(ctx, "evidence storage disabled; uploads will be refused")
		}
		return nil, nil //nolint:nilnil // disabled is not an error
	}

	store, err := objectstore.NewMinioStore(objectstore.Config{
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
		UseSSL:    cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create evidence store: %w", err)
	}

	ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := store.EnsureBucket(ensureCtx); err != nil {
		return nil, fmt.Errorf("ensure evidence bucket: %w", err)
	}

	if logger != nil {
		logger.InfoContext(ctx, "evidence storage connected", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)
	}
	return store, nil
}
