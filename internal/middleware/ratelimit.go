// ratelimit.go implements per-caller rate limiting using a token bucket algorithm.
//
// How token bucket works:
// - Each caller gets a "bucket" with N tokens (the key's rate_limit, or the
//   configured default for signed-in users)
// - Each request consumes 1 token
// - Tokens refill at a steady rate (N tokens per hour)
// - If the bucket is empty, the request is rejected with 429 Too Many Requests
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf-term-search/internal/models"
)

// RateLimiter tracks request rates per API key or user.
type RateLimiter struct {
	mu           sync.Mutex
	buckets      map[string]*bucket
	defaultLimit int
	owner        OwnerKey
	now          func() time.Time
}

// bucket tracks the token state for a single caller.
type bucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// allowResult contains the result of a rate limit check,
// including header information for the response.
type allowResult struct {
	allowed   bool
	remaining float64
	limit     float64
}

// NewRateLimiter creates a rate limiter. defaultLimit applies to keys with no
// limit of their own and to JWT users.
func NewRateLimiter(defaultLimit int, owner OwnerKey) *RateLimiter {
	return &RateLimiter{
		buckets:      make(map[string]*bucket),
		defaultLimit: defaultLimit,
		owner:        owner,
		now:          time.Now,
	}
}

// RateLimit returns Gin middleware that enforces per-caller rate limits.
// It must run after DualAuth, APIKeyAuth or JWTAuth.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, limit, ok := rl.caller(c)
		if !ok {
			c.Next()
			return
		}

		result := rl.allow(id, limit)
		c.Header("X-RateLimit-Limit", formatFloat(result.limit))
		if !result.allowed {
			c.Header("X-RateLimit-Remaining", "0")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error:   "rate_limit_exceeded",
				Message: "Rate limit exceeded. Try again later.",
				Code:    http.StatusTooManyRequests,
			})
			return
		}
		c.Header("X-RateLimit-Remaining", formatFloat(result.remaining))

		c.Next()
	}
}

// caller picks the bucket for this request. ok is false for the owner key and
// for unauthenticated requests (the auth middleware rejects those).
func (rl *RateLimiter) caller(c *gin.Context) (id string, limit int, ok bool) {
	if apiKey := GetAPIKey(c); apiKey != nil {
		if rl.owner.Matches(apiKey) {
			return "", 0, false
		}
		limit = apiKey.RateLimit
		if limit <= 0 {
			limit = rl.defaultLimit
		}
		return "key:" + apiKey.ID, limit, true
	}
	if user := GetUser(c); user != nil {
		return "user:" + user.ID, rl.defaultLimit, true
	}
	return "", 0, false
}

// allow checks if a request should be allowed, consuming a token if so.
// The check and the header values are read under one lock.
func (rl *RateLimiter) allow(id string, rateLimit int) allowResult {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, exists := rl.buckets[id]
	if !exists {
		b = &bucket{
			tokens:     float64(rateLimit),
			maxTokens:  float64(rateLimit),
			refillRate: float64(rateLimit) / 3600.0, // tokens per second (rate per hour)
			lastRefill: now,
		}
		rl.buckets[id] = b
	}

	// Refill tokens based on elapsed time
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens = min(b.tokens+elapsed*b.refillRate, b.maxTokens)
	b.lastRefill = now

	if b.tokens < 1.0 {
		return allowResult{allowed: false, remaining: 0, limit: b.maxTokens}
	}

	b.tokens--
	return allowResult{allowed: true, remaining: b.tokens, limit: b.maxTokens}
}

// Cleanup removes buckets idle for over an hour, every interval, until ctx is done.
func (rl *RateLimiter) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for id, b := range rl.buckets {
		if now.Sub(b.lastRefill) > time.Hour {
			delete(rl.buckets, id)
		}
	}
}

// formatFloat converts a float to a string for headers.
func formatFloat(f float64) string {
	return fmt.Sprintf("%.0f", f)
}
