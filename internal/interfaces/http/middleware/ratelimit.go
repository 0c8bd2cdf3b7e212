package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// RateLimitConfig configures the per-client rate limiter
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type tokenBucket struct {
	tokens   float64
	lastSeen time.Time
}

// RateLimit applies a token bucket per client IP. Buckets idle for
// over ten minutes are evicted on the next refill pass.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 20
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 40
	}

	var mu sync.Mutex
	buckets := make(map[string]*tokenBucket)
	lastSweep := time.Now()

	return func(c *gin.Context) {
		now := time.Now()
		ip := c.ClientIP()

		mu.Lock()
		if now.Sub(lastSweep) > time.Minute {
			for key, b := range buckets {
				if now.Sub(b.lastSeen) > 10*time.Minute {
					delete(buckets, key)
				}
			}
			lastSweep = now
		}

		b, ok := buckets[ip]
		if !ok {
			b = &tokenBucket{tokens: float64(cfg.Burst), lastSeen: now}
			buckets[ip] = b
		}

		elapsed := now.Sub(b.lastSeen).Seconds()
		b.tokens += elapsed * cfg.RequestsPerSecond
		if b.tokens > float64(cfg.Burst) {
			b.tokens = float64(cfg.Burst)
		}
		b.lastSeen = now

		allowed := b.tokens >= 1
		if allowed {
			b.tokens--
		}
		remaining := int(b.tokens)
		mu.Unlock()

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Burst))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeValidation, "rate limit exceeded", GetRequestID(c)))
			return
		}
		c.Next()
	}
}
