package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func limitedCall(h http.Handler, remote, forwarded string) int {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/shipping/cities", nil)
	req.RemoteAddr = remote
	if forwarded != "" {
		req.Header.Set("X-Forwarded-For", forwarded)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr.Code
}

func TestIPRateLimiter_Middleware(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(0.001), 2, false, zap.NewNop())
	h := limiter.Middleware(okHandler())

	assert.Equal(t, http.StatusNoContent, limitedCall(h, "10.0.0.1:5000", ""))
	assert.Equal(t, http.StatusNoContent, limitedCall(h, "10.0.0.1:5001", ""))
	assert.Equal(t, http.StatusTooManyRequests, limitedCall(h, "10.0.0.1:5002", ""))

	// another client has its own budget
	assert.Equal(t, http.StatusNoContent, limitedCall(h, "10.0.0.2:5000", ""))

	// a forged header does not buy a fresh budget
	assert.Equal(t, http.StatusTooManyRequests, limitedCall(h, "10.0.0.1:5003", "192.0.2.7"))
}

func TestIPRateLimiter_TrustedProxy(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(0.001), 1, true, zap.NewNop())
	h := limiter.Middleware(okHandler())

	assert.Equal(t, http.StatusNoContent, limitedCall(h, "10.0.0.1:80", "192.0.2.7"))
	assert.Equal(t, http.StatusTooManyRequests, limitedCall(h, "10.0.0.1:80", "192.0.2.7, 10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, limitedCall(h, "10.0.0.1:80", "192.0.2.8"))
}

func TestIPRateLimiter_Evict(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(0.001), 1, false, nil)
	h := limiter.Middleware(okHandler())

	assert.Equal(t, http.StatusNoContent, limitedCall(h, "10.0.0.1:80", ""))
	assert.Equal(t, http.StatusTooManyRequests, limitedCall(h, "10.0.0.1:80", ""))

	assert.Equal(t, 0, limiter.Evict(time.Now().Add(-time.Hour)))
	assert.Equal(t, 1, limiter.Evict(time.Now().Add(time.Second)))

	// an evicted client starts over with a full bucket
	assert.Equal(t, http.StatusNoContent, limitedCall(h, "10.0.0.1:80", ""))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name      string
		remote    string
		forwarded string
		trust     bool
		want      string
	}{
		{"host and port", "203.0.113.5:443", "", false, "203.0.113.5"},
		{"no port", "203.0.113.5", "", false, "203.0.113.5"},
		{"forwarded ignored without trust", "10.0.0.1:80", "198.51.100.9", false, "10.0.0.1"},
		{"forwarded chain", "10.0.0.1:80", " 198.51.100.9 , 10.0.0.1", true, "198.51.100.9"},
		{"empty forwarded entry", "10.0.0.1:80", " , 10.0.0.1", true, "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, clientIP(req, tt.trust))
		})
	}
}

func TestRequestLogger_PassesStatusThrough(t *testing.T) {
	h := RequestLogger(zap.NewNop())(okHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusNoContent, rr.Code)
}
