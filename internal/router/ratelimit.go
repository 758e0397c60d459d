package router

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/purinat/auth-account-server/package/redis"
)

// RateLimiter applies a fixed-window counter per client IP and route group,
// backed by redis so the limit holds across prefork workers and replicas.
type RateLimiter struct {
	redisService redis.RedisService
	logger       zerolog.Logger
}

func NewRateLimiter(redisService redis.RedisService, logger zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		redisService: redisService,
		logger:       logger,
	}
}

// Limit allows max requests per window for the named group. Redis being down
// fails open; throttling is protection, not a correctness dependency.
func (l *RateLimiter) Limit(name string, max int64, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("ratelimit:%s:%s", name, c.IP())

		count, err := l.redisService.Incr(c.Context(), key)
		if err != nil {
			l.logger.Warn().Err(err).Str("key", key).Msg("rate limit counter unavailable")
			return c.Next()
		}

		if count == 1 {
			if err := l.redisService.Expire(c.Context(), key, window); err != nil {
				l.logger.Warn().Err(err).Str("key", key).Msg("failed to set rate limit window")
			}
		}

		if count > max {
			retryAfter := window
			if ttl, err := l.redisService.TTL(c.Context(), key); err == nil && ttl > 0 {
				retryAfter = ttl
			}

			c.Set("Retry-After", strconv.FormatInt(int64(retryAfter.Round(time.Second).Seconds()), 10))

			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "Too Many Requests",
				"message": "Too many requests, please try again later",
			})
		}

		return c.Next()
	}
}
