package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

type RateLimiterConfig struct {
	Rate  rate.Limit
	Burst int
	// IdleTTL evicts limiters of clients not seen for this long.
	IdleTTL time.Duration
}

// RateLimiter keeps one token bucket per client IP. Buckets of clients not
// seen for IdleTTL expire from the cache.
type RateLimiter struct {
	cfg      RateLimiterConfig
	mu       sync.Mutex
	visitors *cache.Cache
}

func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	return &RateLimiter{
		cfg:      cfg,
		visitors: cache.New(cfg.IdleTTL, cfg.IdleTTL),
	}
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	lim, ok := rl.visitors.Get(key)
	if !ok {
		lim = rate.NewLimiter(rl.cfg.Rate, rl.cfg.Burst)
	}
	// refresh the idle deadline
	rl.visitors.SetDefault(key, lim)
	return lim.(*rate.Limiter)
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error_code": "rate_limited",
				"message":    "Too many requests.",
			})
			return
		}
		c.Next()
	}
}
