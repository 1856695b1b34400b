package middleware

import (
	"fmt"
	"time"

	"allumino/internal/infrastructure/cache"

	"github.com/gofiber/fiber/v3"
)

// RateLimitMiddleware enforces a fixed window per client address, backed by
// redis counters. When redis is down the limiter lets requests through.
type RateLimitMiddleware struct {
	redis  *cache.Redis
	scope  string
	max    int
	window time.Duration
}

func NewRateLimitMiddleware(redis *cache.Redis, scope string, max int, window time.Duration) *RateLimitMiddleware {
	return &RateLimitMiddleware{redis: redis, scope: scope, max: max, window: window}
}

func (m *RateLimitMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		if m.max <= 0 || !m.redis.Available() {
			return c.Next()
		}

		key := fmt.Sprintf("ratelimit:%s:%s", m.scope, c.IP())
		count, err := m.redis.IncrWindow(c.Context(), key, m.window)
		if err != nil {
			// Degrade open.
			return c.Next()
		}

		if count > int64(m.max) {
			return NewAppError(fiber.StatusTooManyRequests,
				"Too many requests, please try again later", nil)
		}

		return c.Next()
	}
}
