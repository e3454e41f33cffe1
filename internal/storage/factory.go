package storage

import (
	"context"
	"fmt"

	"github.com/hackclub/s3purge/internal/config"
)

// FromConfig builds the client selected by cfg.StorageDriver.
func FromConfig(ctx context.Context, cfg *config.Config) (API, error) {
	switch cfg.StorageDriver {
	case config.DriverLocal:
		if cfg.LocalStorageDir == "" {
			return nil, fmt.Errorf("storage: local_storage_dir is required for the local driver")
		}
		client, err := NewLocalClient(cfg.LocalStorageDir)
		if err != nil {
			return nil, err
		}
		return client, nil

	case config.DriverS3, "":
		client, err := NewS3Client(ctx, Options{
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		return client, nil

	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.StorageDriver)
	}
}
