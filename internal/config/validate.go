package config

import (
	"fmt"

	"github.com/hackclub/s3purge/internal/purge"
)

// Validate checks the settings needed before any request is served. Storage
// problems wrap purge.ErrInvalidConfiguration.
func (c *Config) Validate() error {
	if err := purge.ValidateBucket(c.S3Bucket); err != nil {
		return fmt.Errorf("S3_BUCKET: %w", err)
	}
	if err := purge.ValidateRegion(c.S3Region); err != nil {
		return fmt.Errorf("S3_REGION: %w", err)
	}

	switch c.StorageDriver {
	case DriverS3:
		if (c.S3AccessKeyID == "") != (c.S3SecretAccessKey == "") {
			return fmt.Errorf("S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must be set together: %w", purge.ErrInvalidConfiguration)
		}
	case DriverLocal:
		if c.LocalStorageDir == "" {
			return fmt.Errorf("LOCAL_STORAGE_DIR is required for the local driver: %w", purge.ErrInvalidConfiguration)
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER %q is not one of %q, %q: %w", c.StorageDriver, DriverS3, DriverLocal, purge.ErrInvalidConfiguration)
	}

	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative, got %d", c.RateLimitPerMinute)
	}

	return nil
}
