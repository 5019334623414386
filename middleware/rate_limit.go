package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines the configuration for rate limiting
type RateLimitConfig struct {
	// Requests is the maximum number of requests allowed within the window
	Requests int
	// Window is the time window for rate limiting
	Window time.Duration
	// KeyFunc is a function that returns a unique key for rate limiting (defaults to IP)
	KeyFunc func(c echo.Context) string
	// Message is the error message returned when rate limit is exceeded
	Message string
	// OnLimit answers a rejected request. Defaults to a 429 error with Message.
	OnLimit func(c echo.Context) error
}

// rateLimitEntry is a token bucket per key
type rateLimitEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-endpoint rate limiter
type RateLimiter struct {
	config RateLimitConfig
	limit  rate.Limit
	store  map[string]*rateLimitEntry
	mu     sync.Mutex
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter with the given configuration. A full window of
// requests may burst; after that tokens refill evenly across the window.
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c echo.Context) string {
			return c.RealIP()
		}
	}
	if config.Message == "" {
		config.Message = "Too many requests. Please try again later."
	}
	if config.OnLimit == nil {
		message := config.Message
		config.OnLimit = func(c echo.Context) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, message)
		}
	}

	return &RateLimiter{
		config: config,
		limit:  rate.Every(config.Window / time.Duration(max(config.Requests, 1))),
		store:  make(map[string]*rateLimitEntry),
		now:    time.Now,
	}
}

// Allow reports whether one more request for key fits in the budget
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	entry, ok := rl.store[key]
	if !ok {
		entry = &rateLimitEntry{limiter: rate.NewLimiter(rl.limit, rl.config.Requests)}
		rl.store[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// Middleware returns the rate limiting middleware
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.Allow(rl.config.KeyFunc(c)) {
				return rl.config.OnLimit(c)
			}
			return next(c)
		}
	}
}

// Cleanup drops keys idle for longer than a window. Returns how many were removed.
func (rl *RateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.config.Window)
	removed := 0
	for key, entry := range rl.store {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.store, key)
			removed++
		}
	}
	return removed
}

// Size returns the number of tracked keys
func (rl *RateLimiter) Size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.store)
}
