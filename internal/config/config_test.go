package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setRequiredSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_ACCESS_SECRET", "test-access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "test-refresh-secret")
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		setRequiredSecrets(t)

		cfg, err := Load()

		assert.NoError(t, err)
		assert.Equal(t, "3000", cfg.Server.Port)
		assert.Equal(t, "development", cfg.Server.Environment)
		assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URL)
		assert.Equal(t, "auth_accounts", cfg.MongoDB.Database)
		assert.Equal(t, "localhost:6379", cfg.Redis.Address)
		assert.Equal(t, "account-avatars", cfg.MinIO.BucketName)
		assert.Equal(t, 25*time.Minute, cfg.Auth.AccessTokenTTL)
		assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenTTL)
		assert.Equal(t, "info", cfg.Logging.Level)
	})

	t.Run("reads overrides from the environment", func(t *testing.T) {
		setRequiredSecrets(t)
		t.Setenv("PORT", "8080")
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("JWT_ACCESS_TTL", "15m")

		cfg, err := Load()

		assert.NoError(t, err)
		assert.Equal(t, "8080", cfg.Server.Port)
		assert.True(t, cfg.Server.IsProduction())
		assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	})

	t.Run("fails without the signing secrets", func(t *testing.T) {
		t.Setenv("JWT_ACCESS_SECRET", "")
		t.Setenv("JWT_REFRESH_SECRET", "")

		_, err := Load()

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_ACCESS_SECRET")
	})

	t.Run("fails on an unparsable duration", func(t *testing.T) {
		setRequiredSecrets(t)
		t.Setenv("JWT_ACCESS_TTL", "not-a-duration")

		_, err := Load()

		assert.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	validConfig := func() *Config {
		setRequiredSecrets(t)
		cfg, err := Load()
		assert.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name          string
		mutate        func(*Config)
		expectedError string
	}{
		{
			name:   "accepts the defaults",
			mutate: func(c *Config) {},
		},
		{
			name:          "rejects an unknown environment",
			mutate:        func(c *Config) { c.Server.Environment = "sandbox" },
			expectedError: "environment must be one of",
		},
		{
			name:          "rejects a missing port",
			mutate:        func(c *Config) { c.Server.Port = "" },
			expectedError: "server port is required",
		},
		{
			name:          "rejects a missing mongo database",
			mutate:        func(c *Config) { c.MongoDB.Database = "" },
			expectedError: "mongoDB database name is required",
		},
		{
			name:          "rejects a negative redis database",
			mutate:        func(c *Config) { c.Redis.Database = -1 },
			expectedError: "redis database number must be non-negative",
		},
		{
			name:          "rejects a non-positive presigned expiry",
			mutate:        func(c *Config) { c.MinIO.PresignedExpiry = 0 },
			expectedError: "presigned expiry must be positive",
		},
		{
			name: "rejects identical signing secrets",
			mutate: func(c *Config) {
				c.Auth.AccessTokenSecret = "same-secret"
				c.Auth.RefreshTokenSecret = "same-secret"
			},
			expectedError: "secrets must differ",
		},
		{
			name: "rejects a refresh TTL at or below the access TTL",
			mutate: func(c *Config) {
				c.Auth.AccessTokenTTL = time.Hour
				c.Auth.RefreshTokenTTL = time.Hour
			},
			expectedError: "must exceed the access token TTL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestServerConfig_IsProduction(t *testing.T) {
	production := ServerConfig{Environment: "production"}
	development := ServerConfig{Environment: "development"}

	assert.True(t, production.IsProduction())
	assert.False(t, development.IsProduction())
}
