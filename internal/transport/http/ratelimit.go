package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/timexa/timexa-backend/internal/util"
)

// IPRateLimiter throttles requests per client IP. Idle entries are evicted
// lazily whenever a new IP shows up.
type IPRateLimiter struct {
	rate  rate.Limit
	burst int
	ttl   time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
}

func NewIPRateLimiter(r rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		rate:     r,
		burst:    burst,
		ttl:      10 * time.Minute,
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
	}
}

func (l *IPRateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.limiterFor(c.RealIP()).Allow() {
				return c.JSON(http.StatusTooManyRequests, util.Error("too many requests"))
			}
			return next(c)
		}
	}
}

func (l *IPRateLimiter) limiterFor(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, ok := l.limiters[ip]; ok {
		l.lastSeen[ip] = time.Now()
		return limiter
	}

	l.evictIdleLocked()
	limiter := rate.NewLimiter(l.rate, l.burst)
	l.limiters[ip] = limiter
	l.lastSeen[ip] = time.Now()
	return limiter
}

func (l *IPRateLimiter) evictIdleLocked() {
	cutoff := time.Now().Add(-l.ttl)
	for ip, seen := range l.lastSeen {
		if seen.Before(cutoff) {
			delete(l.lastSeen, ip)
			delete(l.limiters, ip)
		}
	}
}
