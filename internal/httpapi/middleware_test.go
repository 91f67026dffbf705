package httpapi

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vntrieu/mafia/internal/ratelimit"
)

// denyAllLimiter rejects every request with a fixed Retry-After.
type denyAllLimiter struct{}

func (denyAllLimiter) Allow(string) (bool, int) { return false, 60 }

func TestRateLimitMiddleware_Returns429WhenDenied(t *testing.T) {
	handler := RateLimitMiddleware(denyAllLimiter{}, RateLimitKeyByIP)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("denied request must not reach the handler")
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/rooms", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Errorf("expected Retry-After 60, got %q", w.Header().Get("Retry-After"))
	}
}

func TestRateLimitMiddleware_PassesWhenAllowed(t *testing.T) {
	handler := RateLimitMiddleware(&ratelimit.Noop{}, RateLimitKeyByIP)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "ok" {
		t.Errorf("expected body ok, got %q", w.Body.String())
	}
}

func TestLimitRequestBody(t *testing.T) {
	handler := LimitRequestBody(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err == nil {
			t.Error("oversized body should not read cleanly")
		}
	}))
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64)))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
}
