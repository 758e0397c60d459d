package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/purinat/auth-account-server/internal/config"
	"github.com/purinat/auth-account-server/internal/module/account"
	"github.com/purinat/auth-account-server/internal/router"
	"github.com/purinat/auth-account-server/package/jwt"
	"github.com/purinat/auth-account-server/package/log"
	"github.com/purinat/auth-account-server/package/minio"
	"github.com/purinat/auth-account-server/package/mongo"
	"github.com/purinat/auth-account-server/package/redis"
	"github.com/purinat/auth-account-server/package/resend"
)

// Run wires the whole server together: infrastructure clients, the account
// service stack, the challenge sweeper and the fiber app, then blocks until
// a shutdown signal drains everything in reverse order.
func Run() {
	logger := log.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	mongoService, err := mongo.NewMongoService(mongo.MongoConfig{
		URL:      cfg.MongoDB.URL,
		Database: cfg.MongoDB.Database,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	if err := mongoService.EnsureIndexes(indexCtx, account.CollectionName, account.AccountIndexes()); err != nil {
		logger.Fatal().Err(err).Msg("failed to create account indexes")
	}
	if err := mongoService.EnsureIndexes(indexCtx, account.OtpCollectionName, account.OtpChallengeIndexes()); err != nil {
		logger.Fatal().Err(err).Msg("failed to create otp challenge indexes")
	}
	cancelIndexes()

	redisService, err := redis.NewRedisService(redis.RedisConfig{
		Address:  cfg.Redis.Address,
		Password: cfg.Redis.Password,
		Database: cfg.Redis.Database,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}

	minioService, err := minio.NewMinIOService(minio.MinIOConfig{
		Endpoint:         cfg.MinIO.Endpoint,
		AccessKey:        cfg.MinIO.AccessKey,
		SecretKey:        cfg.MinIO.SecretKey,
		BucketName:       cfg.MinIO.BucketName,
		Region:           cfg.MinIO.Region,
		UseSSL:           cfg.MinIO.UseSSL,
		AutoCreateBucket: cfg.MinIO.AutoCreateBucket,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MinIO")
	}

	tokenService, err := jwt.NewTokenService(jwt.TokenConfig{
		AccessSecret:  cfg.Auth.AccessTokenSecret,
		RefreshSecret: cfg.Auth.RefreshTokenSecret,
		AccessTTL:     cfg.Auth.AccessTokenTTL,
		RefreshTTL:    cfg.Auth.RefreshTokenTTL,
		Issuer:        cfg.Auth.Issuer,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build token service")
	}

	var resendService resend.ResendService
	if cfg.Resend.ApiKey != "" {
		resendService, err = resend.NewClient(resend.ResendConfig{ApiKey: cfg.Resend.ApiKey})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build resend client")
		}
	} else {
		logger.Warn().Msg("RESEND_API_KEY is not set, outbound email is disabled")
	}

	accountRepository := account.NewAccountRepository(mongoService)
	otpRepository := account.NewOtpChallengeRepository(mongoService)
	avatarStore := account.NewAvatarStore(minioService, cfg.MinIO.PresignedExpiry)

	otpService := account.NewOtpService(otpRepository, resendService, cfg.Resend.SenderEmail, logger)
	accountService := account.NewAccountService(
		accountRepository,
		otpService,
		tokenService,
		avatarStore,
		resendService,
		cfg.Resend.SenderEmail,
		logger,
	)

	sweeperCtx, cancelSweeper := context.WithCancel(context.Background())
	sweeper := account.NewChallengeSweeper(otpService, account.ChallengeSweepInterval, logger)
	sweeper.Start(sweeperCtx)

	app := router.Setup(router.RouterConfig{
		Config:         cfg,
		AccountService: accountService,
		RedisService:   redisService,
		HealthCheck:    healthCheck(mongoService, redisService, minioService),
		Logger:         logger,
	})

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		address := cfg.Server.Host + ":" + cfg.Server.Port
		logger.Info().Str("address", address).Msg("server starting")
		if err := app.Listen(address); err != nil {
			logger.Error().Err(err).Msg("server stopped")
		}
	}()

	<-shutdown
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}

	cancelSweeper()
	sweeper.Stop()

	if resendService != nil {
		if err := resendService.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close resend client")
		}
	}

	if err := minioService.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close MinIO client")
	}

	if err := redisService.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close redis client")
	}

	if err := mongoService.Close(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to close MongoDB client")
	}

	logger.Info().Msg("server exited")
}

func healthCheck(mongoService *mongo.MongoService, redisService redis.RedisService, minioService minio.MinIOService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mongoStatus := mongoService.HealthCheck(c.Context())
		redisStatus := redisService.HealthCheck(c.Context())
		minioStatus := minioService.HealthCheck(c.Context())

		healthy := mongoStatus.Connected && redisStatus.Connected && minioStatus.Connected

		status := fiber.StatusOK
		overall := "healthy"
		if !healthy {
			status = fiber.StatusServiceUnavailable
			overall = "degraded"
		}

		return c.Status(status).JSON(fiber.Map{
			"status": overall,
			"checks": fiber.Map{
				"mongodb": mongoStatus,
				"redis":   redisStatus,
				"minio":   minioStatus,
			},
			"timestamp": time.Now().Unix(),
		})
	}
}
