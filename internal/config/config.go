package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverS3    = "s3"
	DriverLocal = "local"

	DefaultBasePath = "wp-content/uploads/"
)

type Config struct {
	Port               string   `mapstructure:"port"`
	LogLevel           string   `mapstructure:"log_level"`
	WebhookToken       string   `mapstructure:"webhook_token"`
	AllowedOrigins     []string `mapstructure:"allowed_origins"`
	RateLimitPerMinute int      `mapstructure:"rate_limit_per_minute"`
	StorageDriver      string   `mapstructure:"storage_driver"`
	LocalStorageDir    string   `mapstructure:"local_storage_dir"`
	S3Bucket           string   `mapstructure:"s3_bucket"`
	S3Region           string   `mapstructure:"s3_region"`
	S3BasePath         string   `mapstructure:"s3_base_path"`
	S3Endpoint         string   `mapstructure:"s3_endpoint"`
	S3AccessKeyID      string   `mapstructure:"s3_access_key_id"`
	S3SecretAccessKey  string   `mapstructure:"s3_secret_access_key"`
}

func Load() *Config {
	// Try to load .env file from the parent directory
	envPath := filepath.Join("..", ".env")
	godotenv.Load(envPath)

	// Also try loading from current directory
	godotenv.Load(".env")

	return &Config{
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		WebhookToken:       getEnv("WEBHOOK_TOKEN", ""),
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "")),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		StorageDriver:      getEnv("STORAGE_DRIVER", DriverS3),
		LocalStorageDir:    getEnv("LOCAL_STORAGE_DIR", "./data"),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3Region:           getEnv("S3_REGION", ""),
		S3BasePath:         getEnv("S3_BASE_PATH", DefaultBasePath),
		S3Endpoint:         getEnv("S3_ENDPOINT", ""),
		S3AccessKeyID:      getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey:  getEnv("S3_SECRET_ACCESS_KEY", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
