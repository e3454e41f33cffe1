package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hackclub/s3purge/internal/attachments"
	"github.com/hackclub/s3purge/internal/config"
	httphandler "github.com/hackclub/s3purge/internal/http"
	"github.com/hackclub/s3purge/internal/purge"
	"github.com/hackclub/s3purge/internal/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx := context.Background()

	// Load configuration
	cfg := config.Load()
	if !setLogLevel(cfg.LogLevel) {
		logger.Warn().Str("log_level", cfg.LogLevel).Msg("unknown LOG_LEVEL, using info")
	}
	logger.Info().Msg("starting attachment purge service")

	// Validate once at startup
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.WebhookToken == "" {
		logger.Warn().Msg("WEBHOOK_TOKEN is empty, API routes are unauthenticated")
	}

	client, err := storage.FromConfig(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage client")
	}

	// Initialize purger
	purger, err := purge.New(purge.Options{
		Bucket:   cfg.S3Bucket,
		Region:   cfg.S3Region,
		BasePath: cfg.S3BasePath,
	}, client, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize purger")
	}

	attachmentHandler := attachments.NewHandler(purger, logger)

	// Initialize HTTP server
	server := httphandler.NewServer(cfg, logger, attachmentHandler)
	defer server.Close()

	httpServer := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        server.Routes(),
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   90 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server starting")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited")
}

// setLogLevel sets the global level from name, falling back to info. It
// reports whether name was a valid level.
func setLogLevel(name string) bool {
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return false
	}
	zerolog.SetGlobalLevel(level)
	return true
}
