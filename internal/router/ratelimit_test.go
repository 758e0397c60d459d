package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/purinat/auth-account-server/package/redis"
)

type mockRedisService struct {
	mock.Mock
}

func (m *mockRedisService) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockRedisService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *mockRedisService) Incr(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRedisService) Expire(ctx context.Context, key string, expiration time.Duration) error {
	args := m.Called(ctx, key, expiration)
	return args.Error(0)
}

func (m *mockRedisService) TTL(ctx context.Context, key string) (time.Duration, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(time.Duration), args.Error(1)
}

func (m *mockRedisService) Delete(ctx context.Context, keys ...string) (int64, error) {
	args := m.Called(ctx, keys)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRedisService) HealthCheck(ctx context.Context) redis.HealthStatus {
	args := m.Called(ctx)
	return args.Get(0).(redis.HealthStatus)
}

func (m *mockRedisService) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newRateLimitedApp(redisService redis.RedisService, max int64, window time.Duration) *fiber.App {
	limiter := NewRateLimiter(redisService, zerolog.Nop())

	app := fiber.New()
	app.Get("/limited", limiter.Limit("test", max, window), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "ok"})
	})

	return app
}

func TestRateLimiter_Limit(t *testing.T) {
	t.Run("admits requests under the limit", func(t *testing.T) {
		redisService := &mockRedisService{}
		redisService.On("Incr", mock.Anything, mock.AnythingOfType("string")).Return(int64(1), nil)
		redisService.On("Expire", mock.Anything, mock.AnythingOfType("string"), 10*time.Minute).Return(nil)

		app := newRateLimitedApp(redisService, 3, 10*time.Minute)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/limited", nil))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		redisService.AssertExpectations(t)
	})

	t.Run("only the first hit arms the window", func(t *testing.T) {
		redisService := &mockRedisService{}
		redisService.On("Incr", mock.Anything, mock.AnythingOfType("string")).Return(int64(2), nil)

		app := newRateLimitedApp(redisService, 3, 10*time.Minute)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/limited", nil))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		redisService.AssertNotCalled(t, "Expire", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects past the limit with the window TTL as Retry-After", func(t *testing.T) {
		redisService := &mockRedisService{}
		redisService.On("Incr", mock.Anything, mock.AnythingOfType("string")).Return(int64(4), nil)
		redisService.On("TTL", mock.Anything, mock.AnythingOfType("string")).Return(90*time.Second, nil)

		app := newRateLimitedApp(redisService, 3, 10*time.Minute)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/limited", nil))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, "90", resp.Header.Get("Retry-After"))
	})

	t.Run("falls back to the configured window when TTL is unavailable", func(t *testing.T) {
		redisService := &mockRedisService{}
		redisService.On("Incr", mock.Anything, mock.AnythingOfType("string")).Return(int64(4), nil)
		redisService.On("TTL", mock.Anything, mock.AnythingOfType("string")).
			Return(time.Duration(0), errors.New("connection refused"))

		app := newRateLimitedApp(redisService, 3, 10*time.Minute)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/limited", nil))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, "600", resp.Header.Get("Retry-After"))
	})

	t.Run("fails open when redis is down", func(t *testing.T) {
		redisService := &mockRedisService{}
		redisService.On("Incr", mock.Anything, mock.AnythingOfType("string")).
			Return(int64(0), errors.New("connection refused"))

		app := newRateLimitedApp(redisService, 3, 10*time.Minute)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/limited", nil))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}
