// Package server provides the HTTP server for the bilingual corporate site.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/corpsite/internal/config"
	"github.com/jonathan/corpsite/internal/i18n"
	"github.com/jonathan/corpsite/internal/logging"
	"github.com/jonathan/corpsite/internal/metrics"
	"github.com/jonathan/corpsite/internal/pages"
	"github.com/jonathan/corpsite/internal/seo"
	"github.com/jonathan/corpsite/internal/server/middleware"
	"github.com/jonathan/corpsite/internal/server/ratelimit"
	"github.com/jonathan/corpsite/internal/types"
)

// JobSource supplies the listed, normalized postings. It never fails; an
// unavailable board yields an empty list.
type JobSource interface {
	FetchJobs(ctx context.Context) []types.NormalizedJob
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	cfg         *config.Config
	locales     i18n.Config
	site        *seo.Site
	renderer    *pages.Renderer
	jobs        JobSource
	rateLimiter *ratelimit.Limiter
	metrics     *metrics.Registry
	logger      *slog.Logger
	validate    *validator.Validate
	startedAt   time.Time
}

// Options holds the server's dependencies
type Options struct {
	Config    *config.Config
	Jobs      JobSource
	Logger    *slog.Logger
	Metrics   *metrics.Registry
	RateLimit *ratelimit.Config // nil loads RATE_LIMIT_* from the environment
}

// New creates a new server instance
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("server config is required")
	}
	if opts.Jobs == nil {
		return nil, fmt.Errorf("job source is required")
	}

	locales, err := opts.Config.LocaleConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid locale config: %w", err)
	}
	site := seo.NewSite(opts.Config.BaseURL, locales)
	renderer, err := pages.NewRenderer(site, locales)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	rlConfig := opts.RateLimit
	if rlConfig == nil {
		rlConfig = ratelimit.LoadConfig()
	}

	s := &Server{
		cfg:         opts.Config,
		locales:     locales,
		site:        site,
		renderer:    renderer,
		jobs:        opts.Jobs,
		rateLimiter: ratelimit.NewLimiter(rlConfig),
		metrics:     opts.Metrics,
		logger:      logger,
		validate:    validator.New(),
		startedAt:   time.Now().UTC(),
	}

	// Setup router
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("GET /sitemap.xml", s.handleSitemap)
	mux.HandleFunc("GET /robots.txt", s.handleRobots)

	// JSON API
	mux.HandleFunc("GET /api/jobs", s.handleJobs)

	// Pages. Unprefixed paths never get here: the locale middleware
	// redirects them first. Unknown API paths also land on handleNotFound.
	mux.HandleFunc("GET /{locale}", s.handlePage)
	mux.HandleFunc("GET /{locale}/{$}", s.handlePage)
	mux.HandleFunc("GET /{locale}/{page}", s.handlePage)
	mux.HandleFunc("GET /", s.handleNotFound)

	localize := middleware.Locale(middleware.LocaleOptions{
		Resolver: i18n.NewResolver(locales),
		Reserved: opts.Config.IsReserved,
		Metrics:  s.metrics,
	})
	s.handler = middleware.RequestID(s.withLogging(s.withRateLimit(localize(mux))))

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Config.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests and blocks until ctx is cancelled or
// the process receives SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server_starting", "addr", s.httpServer.Addr, "base_url", s.site.BaseURL())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}
	s.logger.Info("server_stopping")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Stop rate limiter cleanup goroutine
	s.rateLimiter.Stop()

	s.logger.Info("server_stopped")
	return nil
}

// Close releases background resources without serving.
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// withLogging adds request logging and response counting
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		s.metrics.RecordRequest(rec.status)

		level := slog.LevelDebug
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.Log(r.Context(), level, "http_request",
			"request_id", middleware.GetRequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration", time.Since(start),
		)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; forwarded headers are not
// trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		retry := int(info.RetryAfter.Seconds())
		if retry < 1 {
			retry = 1
		}
		response["retry_after"] = retry
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retry))
	}

	s.logger.Warn("rate_limit_exceeded",
		"request_id", middleware.GetRequestID(r.Context()),
		"client", s.extractClientID(r),
		"path", r.URL.Path,
		"limit", info.Limit,
	)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("json_encode_failed", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
