package api

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RequestLogger logs HTTP requests with timing
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("latency", time.Since(start)),
				zap.String("remote_ip", clientIP(r, false)),
				zap.String("forwarded_for", r.Header.Get("X-Forwarded-For")),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// IPRateLimiter manages per-IP rate limiters
type IPRateLimiter struct {
	limiters     sync.Map // ip -> *clientLimiter
	rate         rate.Limit
	burst        int
	trustProxies bool
	logger       *zap.Logger
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// NewIPRateLimiter creates a new IP-based rate limiter. X-Forwarded-For is
// only honoured with trustProxies, i.e. when a proxy in front of the service
// sets it.
func NewIPRateLimiter(r rate.Limit, burst int, trustProxies bool, logger *zap.Logger) *IPRateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IPRateLimiter{
		rate:         r,
		burst:        burst,
		trustProxies: trustProxies,
		logger:       logger,
	}
}

func (i *IPRateLimiter) getLimiter(ip string, now time.Time) *rate.Limiter {
	v, ok := i.limiters.Load(ip)
	if !ok {
		v, _ = i.limiters.LoadOrStore(ip, &clientLimiter{limiter: rate.NewLimiter(i.rate, i.burst)})
	}
	cl := v.(*clientLimiter)
	cl.lastSeen.Store(now.UnixNano())
	return cl.limiter
}

// Middleware rejects requests over the per-IP budget with 429
func (i *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r, i.trustProxies)
		if !i.getLimiter(ip, time.Now()).Allow() {
			i.logger.Warn("Rate limit exceeded", zap.String("client_ip", ip), zap.String("path", r.URL.Path))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Evict drops the limiters of clients not seen since before and returns how
// many were removed.
func (i *IPRateLimiter) Evict(before time.Time) int {
	cutoff := before.UnixNano()
	removed := 0
	i.limiters.Range(func(key, value any) bool {
		if value.(*clientLimiter).lastSeen.Load() < cutoff {
			i.limiters.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// Run evicts clients idle for longer than maxIdle every interval until ctx is done
func (i *IPRateLimiter) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := i.Evict(now.Add(-maxIdle)); n > 0 {
				i.logger.Debug("Evicted idle rate limiters", zap.Int("count", n))
			}
		}
	}
}

func clientIP(r *http.Request, trustProxies bool) string {
	if trustProxies {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
