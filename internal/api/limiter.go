package api

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"shareit/internal/config"
	"shareit/internal/models"

	"golang.org/x/time/rate"
)

// RateLimiter keeps a token bucket per caller, keyed by identity header or remote host.
type RateLimiter struct {
	limiters sync.Map
	cfg      config.GatewayRateLimitConfig
}

func NewRateLimiter(cfg config.GatewayRateLimitConfig) *RateLimiter {
	return &RateLimiter{cfg: cfg}
}

// Middleware answers 429 once the caller's bucket is empty. RPS <= 0 disables limiting.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.cfg.RPS > 0 && !l.getLimiter(clientKey(r)).Allow() {
			WriteError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		if lim, ok := v.(*rate.Limiter); ok {
			return lim
		}
	}

	burst := l.cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(l.cfg.RPS), burst)
	actual, loaded := l.limiters.LoadOrStore(key, lim)
	if loaded {
		if actualLim, ok := actual.(*rate.Limiter); ok {
			return actualLim
		}
	}
	return lim
}

func clientKey(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(models.HeaderUserID)); id != "" {
		return "user:" + id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return "addr:" + host
	}
	return "unknown"
}
