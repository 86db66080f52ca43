// Package server provides the HTTP REST API for the outreach tracker.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/cors"
	"github.com/jonathan/outreach-tracker/internal/config"
	"github.com/jonathan/outreach-tracker/internal/server/middleware"
	"github.com/jonathan/outreach-tracker/internal/server/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server represents the HTTP server
type Server struct {
	responder
	httpServer  *http.Server
	handler     http.Handler
	db          DBClient
	clock       func() time.Time
	location    *time.Location
	rateLimiter *ratelimit.Limiter
	metrics     *httpMetrics
	authHandler *AuthHandler
}

// Config holds server configuration
type Config struct {
	Port               int
	AuthEnabled        bool
	CORSAllowedOrigins []string
	// Location decides which calendar day counts as today. Defaults to time.Local.
	Location *time.Location
	// Clock defaults to time.Now.
	Clock     func() time.Time
	RateLimit *ratelimit.Config
	// JWT and Password are required when AuthEnabled is set.
	JWT      *config.JWTConfig
	Password *config.PasswordConfig
	// Registry receives the HTTP metrics and is served on /metrics. Defaults to a new registry.
	Registry *prometheus.Registry
	Logger   *zap.Logger
}

// New creates a new server instance
func New(cfg Config, store DBClient) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("server requires a store")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	s := &Server{
		responder:   responder{log: cfg.Logger},
		db:          store,
		clock:       cfg.Clock,
		location:    cfg.Location,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		metrics:     newHTTPMetrics(cfg.Registry),
	}

	protect := func(h http.HandlerFunc) http.Handler { return h }
	if cfg.AuthEnabled {
		if cfg.JWT == nil || cfg.Password == nil {
			return nil, fmt.Errorf("auth is enabled but JWT or password config is missing")
		}
		jwtService := NewJWTService(cfg.JWT)
		s.authHandler = NewAuthHandler(s.responder, NewAdminService(store, cfg.Password), jwtService)
		auth := middleware.AuthMiddleware(jwtService.AsTokenValidator())
		protect = func(h http.HandlerFunc) http.Handler { return auth(h) }
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))

	if s.authHandler != nil {
		mux.HandleFunc("POST /auth/register", s.authHandler.Register)
		mux.HandleFunc("POST /auth/login", s.authHandler.Login)
		mux.Handle("PUT /auth/password", protect(s.authHandler.UpdatePassword))
	}

	// Companies
	mux.Handle("GET /companies", protect(s.handleListCompanies))
	mux.Handle("POST /companies", protect(s.handleCreateCompany))
	mux.Handle("GET /companies/{id}", protect(s.handleGetCompany))
	mux.Handle("PUT /companies/{id}", protect(s.handleUpdateCompany))
	mux.Handle("DELETE /companies/{id}", protect(s.handleDeleteCompany))
	mux.Handle("PUT /companies/{id}/periodicity", protect(s.handleUpdatePeriodicity))

	// Communications and schedule
	mux.Handle("GET /companies/{id}/communications", protect(s.handleListCommunications))
	mux.Handle("POST /companies/{id}/communications", protect(s.handleAddCommunication))
	mux.Handle("GET /companies/{id}/schedule", protect(s.handleGetSchedule))
	mux.Handle("GET /follow-ups", protect(s.handleListFollowUps))

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:         300,
	})

	s.handler = s.withRateLimit(s.withLogging(s.withMetrics(corsHandler(mux))))
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.rateLimiter.Stop()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}

// now is the single evaluation instant for a request, in the configured location.
func (s *Server) now() time.Time {
	return s.clock().In(s.location)
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(extractClientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging logs each request once it completes.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := recorderFor(w)
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", r.RemoteAddr),
		)
	})
}

// handleHealth reports whether the database is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.log.Warn("health check failed", zap.Error(err))
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// extractClientID uses the IP part of RemoteAddr. Forwarded headers are not trusted.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":   "rate_limit_exceeded",
		"message": "Rate limit exceeded. Please try again later.",
		"limit":   info.Limit,
	}
	if info.RetryAfter > 0 {
		secs := int(info.RetryAfter.Round(time.Second).Seconds())
		response["retry_after"] = secs
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}

	s.log.Warn("rate limit exceeded",
		zap.String("client", extractClientID(r)),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit),
	)
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
