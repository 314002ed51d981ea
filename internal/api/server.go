// Package api provides the HTTP surface of the campuscare backend.
//
// Endpoints:
//
//	POST /api/chat  →  student message in, assistant reply out
//	GET  /health    →  liveness probe
//	GET  /ready     →  readiness probe (knowledge base loadable)
//	GET  /          →  embedded front-end bundle
//
// File structure:
//   - server.go: route registration and middleware stack
//   - chat.go: chat endpoint
//   - health.go: health check endpoints
//   - middleware.go: recovery, request ID, logging, CORS
//   - ratelimit.go: per-IP token bucket limiter
//   - response.go: JSON response helpers
//   - static.go: embedded static assets
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/campuscare/campuscare/internal/knowledge"
)

// Replier generates a reply to a student's message. Satisfied by
// *assistant.Assistant; narrowed to an interface so handler tests can use a
// deterministic stub.
type Replier interface {
	Reply(ctx context.Context, message string) (string, error)
}

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger    *slog.Logger
	Assistant Replier          // Required
	Knowledge *knowledge.Store // Optional: nil disables the readiness file check

	CORSOrigins []string // Allowed origins; "*" allows any
	TrustProxy  bool     // Trust X-Real-IP/X-Forwarded-For (behind reverse proxy)
	RateBurst   int      // Rate limiter burst size per IP (0 = default 60)
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates a new API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Assistant == nil {
		return nil, errors.New("assistant is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ch := &chatHandler{
		logger:    logger,
		assistant: cfg.Assistant,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", ch.chat)

	// Front-end bundle at the root; ServeMux routes /api/* ahead of it.
	mux.Handle("GET /", staticHandler())

	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}
	rl := newRateLimiter(1.0, burst)

	// Middleware stack (outermost first):
	//   Recovery → RequestID → Logging → CORS → RateLimit → Routes
	// RequestID must be before Logging so request_id is available in log
	// attributes. CORS must be before RateLimit so preflight OPTIONS gets
	// proper CORS headers.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(handler)
	handler = corsMiddleware(cfg.CORSOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Health probes bypass the middleware stack.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health)
	topMux.Handle("GET /ready", readiness(cfg.Knowledge, logger))
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
