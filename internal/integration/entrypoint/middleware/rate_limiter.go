// Package middleware provides HTTP middleware for the API endpoints.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	domainerror "github.com/sales-backoffice/backend/internal/domain/error"
	"github.com/sales-backoffice/backend/internal/integration/entrypoint/dto"
)

const (
	// Sized for a reviewer working through a statement line by line; a burst
	// of link/unlink/override calls stays well under it.
	defaultMaxAttempts    = 120
	defaultWindowDuration = 1 * time.Minute
)

// windowState tracks one client's attempts inside the current window.
type windowState struct {
	attempts int
	resetAt  time.Time
}

// RateLimiter throttles mutating requests per client IP with a fixed window.
// It guards the write endpoints against runaway scripts, not against abuse;
// there is no authentication layer behind it.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*windowState
	max     int
	window  time.Duration
}

// NewRateLimiter creates a limiter with the default window and attempt count.
func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithConfig(defaultMaxAttempts, defaultWindowDuration)
}

// NewRateLimiterWithConfig creates a limiter with custom settings.
func NewRateLimiterWithConfig(maxAttempts int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*windowState),
		max:     maxAttempts,
		window:  window,
	}
}

// Middleware returns a Gin handler enforcing the limit, answering 429 with
// the rate-limited error code when a client exhausts its window.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if clientIP == "" {
			clientIP = c.Request.RemoteAddr
		}

		if !rl.allow(clientIP) {
			c.JSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error: "Too many requests. Please try again later.",
				Code:  string(domainerror.ErrCodeRateLimited),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	state, ok := rl.windows[key]
	if !ok || now.After(state.resetAt) {
		rl.windows[key] = &windowState{attempts: 1, resetAt: now.Add(rl.window)}
		return true
	}

	if state.attempts < rl.max {
		state.attempts++
		return true
	}
	return false
}

// Reset clears all tracked windows.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.windows = make(map[string]*windowState)
}

// Cleanup drops expired windows; call periodically to bound memory.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for key, state := range rl.windows {
		if now.After(state.resetAt) {
			delete(rl.windows, key)
		}
	}
}
