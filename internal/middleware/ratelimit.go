package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/yigit/campusportal/internal/app/models/dto"
)

// clientIdleTTL is how long an idle client's limiter is remembered
const clientIdleTTL = 15 * time.Minute

// RateLimiter hands out one token bucket per client IP
type RateLimiter struct {
	rps     rate.Limit
	burst   int
	clients *cache.Cache
	mu      sync.Mutex
	logger  zerolog.Logger
}

// NewRateLimiter allows rps requests per second per IP with the given burst
func NewRateLimiter(rps float64, burst int, logger zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		clients: cache.New(clientIdleTTL, 10*time.Minute),
		logger:  logger,
	}
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, ok := rl.clients.Get(ip); ok {
		limiter := v.(*rate.Limiter)
		// Touch to extend the idle window
		rl.clients.SetDefault(ip, limiter)
		return limiter
	}

	limiter := rate.NewLimiter(rl.rps, rl.burst)
	rl.clients.SetDefault(ip, limiter)
	rl.logger.Debug().Str("ip", ip).Float64("rps", float64(rl.rps)).Int("burst", rl.burst).Msg("Created client limiter")
	return limiter
}

// Allow reports whether ip may make another request now
func (rl *RateLimiter) Allow(ip string) bool {
	return rl.limiterFor(ip).Allow()
}

// Middleware answers 429 with an envelope once a client runs out of tokens
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !rl.Allow(ip) {
			rl.logger.Warn().Str("ip", ip).Str("path", c.Request.URL.Path).Msg("Rate limit exceeded")
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewEnvelope(http.StatusTooManyRequests, "too many requests, please try again later", nil))
			return
		}
		c.Next()
	}
}
