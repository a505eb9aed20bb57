package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
)

const (
	visitorTTL      = 10 * time.Minute
	cleanupInterval = 5 * time.Minute
)

// RateLimiter holds a token bucket per client IP.
type RateLimiter struct {
	visitors    map[string]*visitor
	mu          sync.Mutex
	rate        rate.Limit
	burst       int
	lastCleanup time.Time
	now         func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows rps requests per second per IP with bursts up to burst.
func NewRateLimiter(rps rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rps,
		burst:    burst,
		now:      time.Now,
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	// The cleanup window starts at the first request and restarts if the clock steps back.
	if rl.lastCleanup.IsZero() || now.Before(rl.lastCleanup) {
		rl.lastCleanup = now
	}
	if now.Sub(rl.lastCleanup) > cleanupInterval {
		for key, v := range rl.visitors {
			if now.Sub(v.lastSeen) > visitorTTL {
				delete(rl.visitors, key)
			}
		}
		rl.lastCleanup = now
	}

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Handler rejects requests over the limit with 429.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rl.allow(c.IP()) {
			return apperr.TooManyRequests("Rate limit exceeded. Please try again later.")
		}
		return c.Next()
	}
}
