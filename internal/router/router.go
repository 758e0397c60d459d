package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/purinat/auth-account-server/internal/config"
	"github.com/purinat/auth-account-server/internal/module/account"
	"github.com/purinat/auth-account-server/package/redis"
)

type RouterConfig struct {
	Config         *config.Config
	AccountService account.AccountService
	RedisService   redis.RedisService
	HealthCheck    fiber.Handler
	Logger         zerolog.Logger
}

func Setup(rc RouterConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      rc.Config.Server.AppName,
		ReadTimeout:  rc.Config.Server.ReadTimeout,
		WriteTimeout: rc.Config.Server.WriteTimeout,
		IdleTimeout:  rc.Config.Server.IdleTimeout,
		BodyLimit:    8 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestLogger(rc.Logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     rc.Config.Server.CORSOrigins,
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: true,
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": rc.Config.Server.AppName,
			"version": "1.0.0",
			"status":  "running",
		})
	})

	if rc.HealthCheck != nil {
		app.Get("/health", rc.HealthCheck)
	}

	handler := account.NewAccountHandler(rc.AccountService, account.HandlerConfig{
		CookieDomain: rc.Config.Auth.CookieDomain,
		Production:   rc.Config.Server.IsProduction(),
		AccessTTL:    rc.Config.Auth.AccessTokenTTL,
		RefreshTTL:   rc.Config.Auth.RefreshTokenTTL,
	}, rc.Logger)
	middleware := account.NewAccountMiddleware(rc.AccountService, handler)
	limiter := NewRateLimiter(rc.RedisService, rc.Logger)

	api := app.Group("/api")
	v1 := api.Group("/v1")
	auth := v1.Group("/auth")

	auth.Post("/signup", limiter.Limit("signup", 5, 15*time.Minute), handler.Signup)
	auth.Post("/signin", limiter.Limit("signin", 5, 15*time.Minute), handler.Signin)
	auth.Post("/google-signin", limiter.Limit("signin", 5, 15*time.Minute), handler.GoogleSignin)

	auth.Post("/request-otp", limiter.Limit("otp-request", 3, 10*time.Minute), handler.RequestOtp)
	auth.Post("/verify-otp", limiter.Limit("otp-verify", 10, 10*time.Minute), handler.VerifyOtp)

	auth.Post("/refresh-token", handler.RefreshToken)
	auth.Post("/logout", middleware.RequireAuth(), handler.Logout)

	auth.Get("/profile", middleware.RequireAuth(), handler.GetProfile)
	auth.Patch("/update-profile", middleware.RequireAuth(), handler.UpdateProfile)

	auth.Post("/change-password", limiter.Limit("password", 5, 15*time.Minute), middleware.RequireAuth(), handler.ChangePassword)
	auth.Post("/reset-password", limiter.Limit("password", 5, 15*time.Minute), handler.ResetPassword)

	auth.Delete("/delete-account", limiter.Limit("account", 5, 15*time.Minute), middleware.RequireAuth(), handler.DeleteAccount)
	auth.Put("/reactivate-account", limiter.Limit("account", 5, 15*time.Minute), handler.ReactivateAccount)

	app.Use("*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
			"path":    c.Path(),
		})
	})

	return app
}

func requestLogger(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		logger.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("duration", time.Since(start)).
			Str("ip", c.IP()).
			Msg("request")

		return err
	}
}
