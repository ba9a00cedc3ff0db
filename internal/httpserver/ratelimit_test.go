package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/fdg312/mealcraft/internal/config"
)

func TestRateLimit_SecondRequestReturns429(t *testing.T) {
	cfg := &config.Config{
		RateLimitRPS:   1,
		RateLimitBurst: 1,
	}

	handler := RateLimit(cfg, zap.NewNop())(okHandler())

	req1 := httptest.NewRequest(http.MethodGet, "/recipes", nil)
	req1.RemoteAddr = "1.2.3.4:12345"
	rr1 := httptest.NewRecorder()
	handler.ServeHTTP(rr1, req1)

	if rr1.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", rr1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/recipes", nil)
	req2.RemoteAddr = "1.2.3.4:12345"
	rr2 := httptest.NewRecorder()
	handler.ServeHTTP(rr2, req2)

	if rr2.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", rr2.Code)
	}
	if got := rr2.Header().Get("Retry-After"); got != "1" {
		t.Errorf("expected Retry-After=1, got %q", got)
	}

	var body map[string]map[string]string
	if err := json.NewDecoder(rr2.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if code := body["error"]["code"]; code != "rate_limited" {
		t.Errorf("expected code=rate_limited, got %q", code)
	}
}

func TestRateLimit_DisabledWhenZero(t *testing.T) {
	cfg := &config.Config{RateLimitRPS: 0}
	handler := RateLimit(cfg, zap.NewNop())(okHandler())

	for i := 0; i < 100; i++ {
		req := httptest.NewRequest(http.MethodGet, "/recipes", nil)
		req.RemoteAddr = "1.2.3.4:12345"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rr.Code)
		}
	}
}

func TestRateLimit_DifferentIPsIndependent(t *testing.T) {
	cfg := &config.Config{RateLimitRPS: 1, RateLimitBurst: 1}
	handler := RateLimit(cfg, zap.NewNop())(okHandler())

	for _, addr := range []string{"1.1.1.1:1000", "2.2.2.2:1000"} {
		req := httptest.NewRequest(http.MethodGet, "/recipes", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", addr, rr.Code)
		}
	}
}

func TestLimiterStore_EvictsIdleClients(t *testing.T) {
	store := newLimiterStore(1, 1)
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.allow("1.1.1.1")
	store.allow("2.2.2.2")
	if got := store.size(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	now = now.Add(limiterIdleTTL + time.Minute)
	store.allow("3.3.3.3")

	if got := store.size(); got != 1 {
		t.Errorf("expected idle clients evicted, got %d", got)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		remote string
		want   string
	}{
		{"remote addr", "", "10.0.0.1:5555", "10.0.0.1"},
		{"forwarded first hop", "203.0.113.7, 10.0.0.1", "10.0.0.1:5555", "203.0.113.7"},
		{"remote without port", "", "10.0.0.2", "10.0.0.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
