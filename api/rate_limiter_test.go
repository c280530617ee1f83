package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	l := NewRateLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if ok, _ := l.Allow("10.0.0.1"); !ok {
			t.Fatalf("upload %d refused", i+1)
		}
	}
	ok, retry := l.Allow("10.0.0.1")
	if ok {
		t.Fatal("third upload allowed")
	}
	if retry != time.Minute {
		t.Errorf("retry = %v, want 1m", retry)
	}
	if ok, _ := l.Allow("10.0.0.2"); !ok {
		t.Error("other client refused")
	}

	now = now.Add(time.Minute)
	if ok, _ := l.Allow("10.0.0.1"); !ok {
		t.Error("upload refused after the window reset")
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	l := NewRateLimiter(5, time.Minute)
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(30 * time.Second)
	l.Allow("b")
	now = now.Add(45 * time.Second)

	if removed := l.Cleanup(); removed != 1 {
		t.Errorf("Cleanup() = %d, want 1", removed)
	}
	if l.Count() != 1 {
		t.Errorf("Count() = %d, want 1", l.Count())
	}
}

func TestRateLimiter_Middleware(t *testing.T) {
	l := NewRateLimiter(1, time.Minute)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/parse-business-brief", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := send("192.0.2.1:5000"); rec.Code != http.StatusNoContent {
		t.Fatalf("first status = %d", rec.Code)
	}
	rec := send("192.0.2.1:5001")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", rec.Header().Get("Retry-After"))
	}
	if resp := decodeResponse(t, rec); resp.Message != MsgTooManyUploads {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestServer_UploadLimit(t *testing.T) {
	config := DefaultServerConfig()
	config.UploadsPerMinute = 1
	server, err := NewServer(config, Dependencies{Parser: refusingParser{}})
	if err != nil {
		t.Fatal(err)
	}
	if server.RateLimiter() == nil {
		t.Fatal("RateLimiter() = nil with a limit set")
	}

	codes := make([]int, 2)
	for i := range codes {
		req := uploadRequest(t, "/api/v1/parse-business-brief", documentField, "brief.txt", "text/plain", []byte(sampleBrief))
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, req)
		codes[i] = rec.Code
	}
	if codes[0] != http.StatusServiceUnavailable || codes[1] != http.StatusTooManyRequests {
		t.Errorf("status codes = %v, want [503 429]", codes)
	}

	unlimited, _ := NewServer(DefaultServerConfig(), Dependencies{Parser: refusingParser{}})
	if unlimited.RateLimiter() != nil {
		t.Error("RateLimiter() set without a limit")
	}
}
