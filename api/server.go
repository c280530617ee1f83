// Package api is the HTTP surface of the service: document upload and
// field extraction, XLSX export, extraction history, stats, health and
// Prometheus metrics.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"aura_backend/db"
	"aura_backend/docparse"
	"aura_backend/logging"
	"aura_backend/metrics"
)

// Parser decodes an upload and extracts its fields. docparse.Service
// implements it.
type Parser interface {
	Parse(ctx context.Context, upload docparse.Upload) (*docparse.ParseResult, error)
}

// HistoryReader reads recorded extraction runs. db.Repository implements it.
type HistoryReader interface {
	RecentRuns(ctx context.Context, limit int) ([]db.ExtractionRun, error)
	GetRun(ctx context.Context, id string) (*db.ExtractionRun, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// ServerConfig configures the Server.
type ServerConfig struct {
	// Host and Port to listen on (default: 0.0.0.0:8080)
	Host string
	Port int

	// ReadTimeout for HTTP requests (default: 30s)
	ReadTimeout time.Duration

	// WriteTimeout for HTTP responses (default: 60s)
	WriteTimeout time.Duration

	// IdleTimeout for keep-alive connections (default: 120s)
	IdleTimeout time.Duration

	// ShutdownTimeout for graceful shutdown (default: 10s)
	ShutdownTimeout time.Duration

	// MaxUploadBytes is the largest accepted document (default: 10 MiB)
	MaxUploadBytes int64

	// DefaultLimit and MaxLimit bound the history page size
	DefaultLimit int
	MaxLimit     int

	// UploadsPerMinute caps uploads per client address; 0 disables the limit
	UploadsPerMinute int

	// LogSkipPaths are paths to skip logging
	LogSkipPaths []string

	// Version is reported by /health and the stats endpoint
	Version string
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "0.0.0.0",
		Port:            8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MaxUploadBytes:  docparse.DefaultMaxBytes,
		DefaultLimit:    50,
		MaxLimit:        1000,
		LogSkipPaths:    []string{"/health", "/metrics"},
		Version:         "0.0.0",
	}
}

// Dependencies are the collaborators the Server routes requests to.
// Parser is required; a nil History disables the history endpoints and a
// nil Collector disables /metrics.
type Dependencies struct {
	Parser    Parser
	History   HistoryReader
	Collector *metrics.Collector
	Logger    *logging.Logger
}

// Server is the HTTP server. It wires together:
//   - LoggingMiddleware for request IDs and request logging
//   - the parse and export handlers backed by a Parser
//   - history handlers backed by a HistoryReader
//   - the Prometheus handler of a metrics.Collector
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	config     ServerConfig
	deps       Dependencies
	logger     *logging.Logger
	loggingMw  *LoggingMiddleware
	limiter    *RateLimiter
}

// NewServer creates a Server and registers its routes.
func NewServer(config ServerConfig, deps Dependencies) (*Server, error) {
	if deps.Parser == nil {
		return nil, errors.New("api: a parser is required")
	}
	defaults := DefaultServerConfig()
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = defaults.MaxUploadBytes
	}
	if config.DefaultLimit < 1 {
		config.DefaultLimit = defaults.DefaultLimit
	}
	if config.MaxLimit < config.DefaultLimit {
		config.MaxLimit = config.DefaultLimit
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = defaults.ShutdownTimeout
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.Named("http")

	s := &Server{
		mux:       http.NewServeMux(),
		config:    config,
		deps:      deps,
		logger:    logger,
		loggingMw: NewLoggingMiddleware(&ZapRequestLogger{Logger: logger}, config.LogSkipPaths...),
	}
	if config.UploadsPerMinute > 0 {
		s.limiter = NewRateLimiter(config.UploadsPerMinute, time.Minute)
	}
	s.setupRoutes()

	addr := net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      config.WriteTimeout,
		IdleTimeout:       config.IdleTimeout,
	}

	logger.Info("http server created",
		zap.String("addr", addr),
		zap.Bool("history_enabled", deps.History != nil),
		zap.Bool("metrics_enabled", deps.Collector != nil),
	)
	return s, nil
}

// setupRoutes configures all the HTTP routes.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	if s.deps.Collector != nil {
		s.mux.Handle("GET /metrics", s.deps.Collector.Handler())
	}

	parse := http.Handler(http.HandlerFunc(s.handleParse))
	exportWorkbook := http.Handler(http.HandlerFunc(s.handleExport))
	if s.limiter != nil {
		parse = s.limiter.Middleware(parse)
		exportWorkbook = s.limiter.Middleware(exportWorkbook)
	}
	s.mux.Handle("POST /api/v1/parse-business-brief", parse)
	s.mux.Handle("POST /api/v1/parse-business-brief/export", exportWorkbook)
	s.mux.HandleFunc("GET /api/v1/extractions", s.handleListExtractions)
	s.mux.HandleFunc("GET /api/v1/extractions/{id}", s.handleGetExtraction)
	s.mux.HandleFunc("GET /api/v1/stats", s.handleStats)
}

// Handler returns the routes wrapped with middleware.
func (s *Server) Handler() http.Handler {
	return s.loggingMw.Handler(s.mux)
}

type healthResponse struct {
	Status  string `json:"status"`
	Health  string `json:"health,omitempty"`
	Version string `json:"version"`
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Version: s.config.Version}
	if store := s.store(); store != nil {
		resp.Health = store.GetSystemStatus().Health
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) store() *metrics.Store {
	if s.deps.Collector == nil {
		return nil
	}
	return s.deps.Collector.Store()
}

// Start listens on the configured address and blocks until the server is
// shut down.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln and blocks until the server is shut down.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("http server starting", zap.String("addr", ln.Addr().String()))
	err := s.httpServer.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting at most the
// configured shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown error: %w", err)
	}

	s.logger.Info("http server stopped")
	return nil
}

// RateLimiter returns the upload limiter, or nil when uploads are unlimited.
func (s *Server) RateLimiter() *RateLimiter {
	return s.limiter
}

// Addr returns the server's configured address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
