package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// LoadFile reads a YAML, TOML or JSON config file. Keys match the
// mapstructure tags on Config; ${VAR} references in values are expanded from
// the environment so secrets can stay out of the file.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("rate_limit_per_minute", 120)
	v.SetDefault("storage_driver", DriverS3)
	v.SetDefault("local_storage_dir", "./data")
	v.SetDefault("s3_base_path", DefaultBasePath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	expandEnv(&cfg)

	return &cfg, nil
}

func expandEnv(cfg *Config) {
	for _, s := range []*string{
		&cfg.Port,
		&cfg.LogLevel,
		&cfg.WebhookToken,
		&cfg.StorageDriver,
		&cfg.LocalStorageDir,
		&cfg.S3Bucket,
		&cfg.S3Region,
		&cfg.S3BasePath,
		&cfg.S3Endpoint,
		&cfg.S3AccessKeyID,
		&cfg.S3SecretAccessKey,
	} {
		*s = os.ExpandEnv(*s)
	}
	for i := range cfg.AllowedOrigins {
		cfg.AllowedOrigins[i] = os.ExpandEnv(cfg.AllowedOrigins[i])
	}
}
