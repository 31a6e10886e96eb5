package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/jordanlanch/adcreativelab/pkg/models"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const visitorCleanupInterval = 3 * time.Minute

// RateLimiter holds one token bucket per client IP.
type RateLimiter struct {
	visitors map[string]*rate.Limiter
	mu       sync.Mutex
	r        rate.Limit // requests per second
	b        int        // burst
	stop     chan struct{}
	once     sync.Once
}

// NewRateLimiter creates a new rate limiter. Call Stop to end its cleanup loop.
func NewRateLimiter(requestsPerMinute, burst int) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*rate.Limiter),
		r:        rate.Limit(float64(requestsPerMinute) / 60.0),
		b:        burst,
		stop:     make(chan struct{}),
	}
	go rl.cleanupVisitors()
	return rl
}

// GetLimiter returns the rate limiter for the given IP
func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.visitors[ip]
	if !exists {
		limiter = rate.NewLimiter(rl.r, rl.b)
		rl.visitors[ip] = limiter
	}
	return limiter
}

// Visitors returns the number of tracked IPs.
func (rl *RateLimiter) Visitors() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// Stop ends the cleanup loop.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanupVisitors() {
	ticker := time.NewTicker(visitorCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.prune()
		}
	}
}

// prune drops visitors whose bucket has refilled.
func (rl *RateLimiter) prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, limiter := range rl.visitors {
		if limiter.Tokens() >= float64(rl.b) {
			delete(rl.visitors, ip)
		}
	}
}

func tooManyRequests(c echo.Context) error {
	return c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
		Error:   "rate_limit_exceeded",
		Message: "Too many requests. Please try again later.",
	})
}

// RateLimitMiddleware creates an Echo middleware for rate limiting
func (rl *RateLimiter) RateLimitMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = c.Request().RemoteAddr
			}
			if !rl.GetLimiter(ip).Allow() {
				return tooManyRequests(c)
			}
			return next(c)
		}
	}
}

// PerEndpointRateLimiter applies tighter limits to selected routes, such as
// the LLM-backed report endpoints, on top of the global limiter.
type PerEndpointRateLimiter struct {
	limiters map[string]*RateLimiter
	mu       sync.RWMutex
}

// NewPerEndpointRateLimiter creates an empty per-endpoint limiter.
func NewPerEndpointRateLimiter() *PerEndpointRateLimiter {
	return &PerEndpointRateLimiter{limiters: make(map[string]*RateLimiter)}
}

// SetEndpointLimit limits "METHOD /route/path" per client IP.
func (perl *PerEndpointRateLimiter) SetEndpointLimit(endpoint string, requestsPerMinute, burst int) {
	perl.mu.Lock()
	defer perl.mu.Unlock()

	if old, ok := perl.limiters[endpoint]; ok {
		old.Stop()
	}
	perl.limiters[endpoint] = NewRateLimiter(requestsPerMinute, burst)
}

// Stop stops every endpoint limiter.
func (perl *PerEndpointRateLimiter) Stop() {
	perl.mu.RLock()
	defer perl.mu.RUnlock()
	for _, l := range perl.limiters {
		l.Stop()
	}
}

// RateLimitMiddleware limits endpoints that have a configured limit and
// passes everything else through.
func (perl *PerEndpointRateLimiter) RateLimitMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			endpoint := c.Request().Method + " " + c.Path()

			perl.mu.RLock()
			limiter, exists := perl.limiters[endpoint]
			perl.mu.RUnlock()

			if !exists {
				return next(c)
			}
			return limiter.RateLimitMiddleware()(next)(c)
		}
	}
}
