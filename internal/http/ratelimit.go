package http

import (
	"context"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterSweep   = 5 * time.Minute
	limiterIdleTTL = 30 * time.Minute
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// RateLimiter applies a token bucket per client IP.
type RateLimiter struct {
	rps      rate.Limit
	burst    int
	limiters sync.Map // map[string]*ipLimiter
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{rps: rate.Limit(rps), burst: burst}
}

func (l *RateLimiter) limiterFor(ip string) *ipLimiter {
	if v, ok := l.limiters.Load(ip); ok {
		return v.(*ipLimiter)
	}
	v, _ := l.limiters.LoadOrStore(ip, &ipLimiter{limiter: rate.NewLimiter(l.rps, l.burst)})
	return v.(*ipLimiter)
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		il := l.limiterFor(remoteIP(r))
		il.lastSeen.Store(time.Now().UnixNano())
		if !il.limiter.Allow() {
			respondError(w, r, http.StatusTooManyRequests, "rate_limit_exceeded", "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Run drops limiters of clients that went quiet, until ctx is done.
func (l *RateLimiter) Run(ctx context.Context) {
	t := time.NewTicker(limiterSweep)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			l.sweep(time.Now())
		case <-ctx.Done():
			return
		}
	}
}

func (l *RateLimiter) sweep(now time.Time) {
	l.limiters.Range(func(key, val any) bool {
		il := val.(*ipLimiter)
		if now.Sub(time.Unix(0, il.lastSeen.Load())) > limiterIdleTTL {
			l.limiters.Delete(key)
		}
		return true
	})
}

// remoteIP expects middleware.RealIP to have run.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
