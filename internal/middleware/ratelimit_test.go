package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter_AllowWithinBudget(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	now := time.Now()

	for i := 0; i < 3; i++ {
		if !rl.allow("10.0.0.1:1234", now) {
			t.Fatalf("request %d should be inside the budget", i+1)
		}
	}
	if rl.allow("10.0.0.1:1234", now) {
		t.Fatal("fourth request should exceed a limit of 3")
	}

	// Other clients have their own window.
	if !rl.allow("10.0.0.2:1234", now) {
		t.Fatal("a different client must not share the exhausted budget")
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	now := time.Now()

	if !rl.allow("10.0.0.1:1234", now) {
		t.Fatal("first request should pass")
	}
	if rl.allow("10.0.0.1:1234", now.Add(30*time.Second)) {
		t.Fatal("second request inside the window should be rejected")
	}
	if !rl.allow("10.0.0.1:1234", now.Add(2*time.Minute)) {
		t.Fatal("request after the window ages out should open a fresh budget")
	}
}

func TestRateLimiter_MiddlewareRejectsWith429(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/google", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, rr.Code)
	}
	if code := errorCode(t, rr); code != "RATE_LIMITED" {
		t.Errorf("expected code RATE_LIMITED, got %q", code)
	}
}
