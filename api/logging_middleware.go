package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"aura_backend/logging"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestIDFrom returns the request ID stored by LoggingMiddleware, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestLogger receives one entry per completed request.
type RequestLogger interface {
	LogRequest(entry RequestLogEntry)
}

// RequestLogEntry contains all information about a logged HTTP request
type RequestLogEntry struct {
	// RequestID is the client-supplied or generated request ID
	RequestID string

	// Timestamp when the request started
	Timestamp time.Time

	// Method is the HTTP method (GET, POST, etc.)
	Method string

	// Path is the URL path
	Path string

	// StatusCode is the HTTP response status code
	StatusCode int

	// Duration is how long the request took
	Duration time.Duration

	// RemoteAddr is the client's address
	RemoteAddr string

	// UserAgent is the client's user agent string
	UserAgent string

	// BytesWritten is the response body size
	BytesWritten int64
}

// ZapRequestLogger writes request entries through the service logger.
// Server errors are logged at error level, client errors at warn level.
type ZapRequestLogger struct {
	Logger *logging.Logger
}

// LogRequest implements RequestLogger.
func (z *ZapRequestLogger) LogRequest(entry RequestLogEntry) {
	fields := []zap.Field{
		zap.String("request_id", entry.RequestID),
		zap.String("method", entry.Method),
		zap.String("path", entry.Path),
		zap.Int("status", entry.StatusCode),
		zap.Duration("duration", entry.Duration),
		zap.String("remote_addr", entry.RemoteAddr),
		zap.Int64("bytes", entry.BytesWritten),
	}
	switch {
	case entry.StatusCode >= 500:
		z.Logger.Error("http request", fields...)
	case entry.StatusCode >= 400:
		z.Logger.Warn("http request", fields...)
	default:
		z.Logger.Info("http request", fields...)
	}
}

// NoopLogger discards all log entries.
type NoopLogger struct{}

// LogRequest does nothing
func (NoopLogger) LogRequest(RequestLogEntry) {}

// LoggingMiddleware assigns each request an ID and logs method, path,
// status and duration once the handler returns.
//
// Thread-safe for concurrent HTTP requests.
type LoggingMiddleware struct {
	logger    RequestLogger
	skipPaths map[string]bool
}

// NewLoggingMiddleware creates a LoggingMiddleware. Requests to skipPaths
// still get an ID but are not logged.
func NewLoggingMiddleware(logger RequestLogger, skipPaths ...string) *LoggingMiddleware {
	if logger == nil {
		logger = NoopLogger{}
	}
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}
	return &LoggingMiddleware{logger: logger, skipPaths: skip}
}

// Handler wraps next with request logging.
func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, requestID))

		if m.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		wrapped := &responseWriterWrapper{
			ResponseWriter: w,
			statusCode:     http.StatusOK, // Default if not explicitly set
		}

		next.ServeHTTP(wrapped, r)

		m.logger.LogRequest(RequestLogEntry{
			RequestID:    requestID,
			Timestamp:    start,
			Method:       r.Method,
			Path:         r.URL.Path,
			StatusCode:   wrapped.statusCode,
			Duration:     time.Since(start),
			RemoteAddr:   getClientIP(r),
			UserAgent:    r.UserAgent(),
			BytesWritten: wrapped.bytesWritten,
		})
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

// WriteHeader captures the status code
func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.statusCode = statusCode
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

// Write captures the bytes written and ensures header is written
func (w *responseWriterWrapper) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += int64(n)
	return n, err
}

// Flush implements http.Flusher if the underlying writer supports it
func (w *responseWriterWrapper) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// getClientIP extracts the client IP from the request
// Checks X-Forwarded-For and X-Real-IP headers first for proxied requests
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
