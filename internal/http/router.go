package http

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hackclub/s3purge/internal/attachments"
	"github.com/hackclub/s3purge/internal/config"
	"github.com/rs/zerolog"
)

type Server struct {
	config            *config.Config
	logger            zerolog.Logger
	attachmentHandler *attachments.Handler
	limiter           *rateLimitStore
}

func NewServer(
	cfg *config.Config,
	logger zerolog.Logger,
	attachmentHandler *attachments.Handler,
) *Server {
	return &Server{
		config:            cfg,
		logger:            logger,
		attachmentHandler: attachmentHandler,
		limiter:           newRateLimitStore(),
	}
}

// Close stops background work started by NewServer.
func (s *Server) Close() {
	s.limiter.Stop()
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.LoggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	if len(s.config.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.config.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}

	// Health check
	r.Get("/healthz", s.HealthCheck)

	// Protected API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(s.AuthMiddleware)
		if s.config.RateLimitPerMinute > 0 {
			r.Use(rateLimitMiddleware(s.limiter, s.config.RateLimitPerMinute))
		}

		r.Post("/attachments/{id}/purge", s.attachmentHandler.HandlePurge)
		r.Post("/attachments/purge/batch", s.attachmentHandler.HandleBatch)
		r.Post("/attachments/keys", s.attachmentHandler.HandleKeys)
	})

	return r
}

// Middleware

func (s *Server) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("ip", r.RemoteAddr).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

// AuthMiddleware requires "Authorization: Bearer <WEBHOOK_TOKEN>". It lets
// everything through when no token is configured.
func (s *Server) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.WebhookToken == "" {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.config.WebhookToken)) != 1 {
			s.logger.Debug().Str("path", r.URL.Path).Msg("authentication failed")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Handlers

func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}
