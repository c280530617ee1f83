package api

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// MsgTooManyUploads is returned with 429 responses.
const MsgTooManyUploads = "Too many uploads. Please try again later."

// uploadWindow tracks one client's uploads in the current window.
type uploadWindow struct {
	count   int
	resetAt time.Time
}

// RateLimiter caps uploads per client address in fixed windows.
//
//	limiter := NewRateLimiter(30, time.Minute)
//	limiter.StartCleanupTicker(ctx, 5*time.Minute)
//	handler = limiter.Middleware(handler)
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]uploadWindow
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewRateLimiter allows limit uploads per client in every window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]uploadWindow),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Allow counts one upload for client. When the client is over the limit
// it returns false and the time until its window resets.
func (l *RateLimiter) Allow(client string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[client]
	if !ok || !now.Before(w.resetAt) {
		w = uploadWindow{resetAt: now.Add(l.window)}
	}
	if w.count >= l.limit {
		return false, w.resetAt.Sub(now)
	}
	w.count++
	l.windows[client] = w
	return true, 0
}

// Cleanup drops expired windows and returns how many were removed.
func (l *RateLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for client, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, client)
			removed++
		}
	}
	return removed
}

// StartCleanupTicker runs Cleanup every interval until ctx is cancelled.
func (l *RateLimiter) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Cleanup()
			}
		}
	}()
}

// Count returns the number of tracked clients.
func (l *RateLimiter) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Middleware rejects over-limit requests with 429 and a Retry-After header.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retry := l.Allow(clientKey(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			writeError(w, http.StatusTooManyRequests, MsgTooManyUploads)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey is the client address without its port.
func clientKey(r *http.Request) string {
	ip := getClientIP(r)
	if host, _, err := net.SplitHostPort(ip); err == nil {
		return host
	}
	return ip
}
