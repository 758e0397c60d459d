package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/purinat/auth-account-server/package/env"
)

type Config struct {
	Server  ServerConfig  `json:"server"`
	MongoDB MongoDBConfig `json:"mongodb"`
	Redis   RedisConfig   `json:"redis"`
	MinIO   MinIOConfig   `json:"minio"`
	Resend  ResendConfig  `json:"resend"`
	Auth    AuthConfig    `json:"auth"`
	Logging LoggingConfig `json:"logging"`
}

type ServerConfig struct {
	Port         string        `json:"port"`
	Host         string        `json:"host"`
	AppName      string        `json:"app_name"`
	Environment  string        `json:"environment"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
	CORSOrigins  string        `json:"cors_origins"`
}

type MongoDBConfig struct {
	URL      string `json:"url"`
	Database string `json:"database"`
}

type RedisConfig struct {
	Address  string `json:"address"`
	Password string `json:"password"`
	Database int    `json:"database"`
}

type MinIOConfig struct {
	Endpoint         string        `json:"endpoint"`
	AccessKey        string        `json:"access_key"`
	SecretKey        string        `json:"secret_key"`
	BucketName       string        `json:"bucket_name"`
	Region           string        `json:"region"`
	UseSSL           bool          `json:"use_ssl"`
	AutoCreateBucket bool          `json:"auto_create_bucket"`
	PresignedExpiry  time.Duration `json:"presigned_expiry"`
}

type ResendConfig struct {
	ApiKey      string `json:"api_key"`
	SenderEmail string `json:"sender_email"`
}

type AuthConfig struct {
	AccessTokenSecret  string        `json:"access_token_secret"`
	RefreshTokenSecret string        `json:"refresh_token_secret"`
	AccessTokenTTL     time.Duration `json:"access_token_ttl"`
	RefreshTokenTTL    time.Duration `json:"refresh_token_ttl"`
	Issuer             string        `json:"issuer"`
	CookieDomain       string        `json:"cookie_domain"`
}

type LoggingConfig struct {
	Level string `json:"level"`
}

// IsProduction reports whether the server runs with production cookie and
// transport hardening.
func (s *ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

func Load() (*Config, error) {
	config := &Config{}
	var err error

	config.Server.Port, err = env.Get("PORT", "3000")
	if err != nil {
		return nil, err
	}

	config.Server.Host, err = env.Get("HOST", "0.0.0.0")
	if err != nil {
		return nil, err
	}

	config.Server.AppName, err = env.Get("APP_NAME", "Auth Account Server")
	if err != nil {
		return nil, err
	}

	config.Server.Environment, err = env.Get("ENVIRONMENT", "development")
	if err != nil {
		return nil, err
	}

	config.Server.ReadTimeout, err = env.Get("READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	config.Server.WriteTimeout, err = env.Get("WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	config.Server.IdleTimeout, err = env.Get("IDLE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	config.Server.CORSOrigins, err = env.Get("CORS_ORIGINS", "http://localhost:5173")
	if err != nil {
		return nil, err
	}

	config.MongoDB.URL, err = env.Get("MONGODB_URL", "mongodb://localhost:27017")
	if err != nil {
		return nil, err
	}

	config.MongoDB.Database, err = env.Get("MONGODB_DATABASE", "auth_accounts")
	if err != nil {
		return nil, err
	}

	config.Redis.Address, err = env.Get("REDIS_ADDRESS", "localhost:6379")
	if err != nil {
		return nil, err
	}

	config.Redis.Password, err = env.Get("REDIS_PASSWORD", "")
	if err != nil {
		return nil, err
	}

	config.Redis.Database, err = env.Get("REDIS_DATABASE", 0)
	if err != nil {
		return nil, err
	}

	config.MinIO.Endpoint, err = env.Get("MINIO_ENDPOINT", "localhost:9000")
	if err != nil {
		return nil, err
	}

	config.MinIO.AccessKey, err = env.Get("MINIO_ACCESS_KEY", "minioadmin")
	if err != nil {
		return nil, err
	}

	config.MinIO.SecretKey, err = env.Get("MINIO_SECRET_KEY", "minioadmin")
	if err != nil {
		return nil, err
	}

	config.MinIO.BucketName, err = env.Get("MINIO_BUCKET_NAME", "account-avatars")
	if err != nil {
		return nil, err
	}

	config.MinIO.Region, err = env.Get("MINIO_REGION", "us-east-1")
	if err != nil {
		return nil, err
	}

	config.MinIO.UseSSL, err = env.Get("MINIO_USE_SSL", false)
	if err != nil {
		return nil, err
	}

	config.MinIO.AutoCreateBucket, err = env.Get("MINIO_AUTO_CREATE_BUCKET", true)
	if err != nil {
		return nil, err
	}

	config.MinIO.PresignedExpiry, err = env.Get("MINIO_PRESIGNED_EXPIRY", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	config.Resend.ApiKey, err = env.Get("RESEND_API_KEY", "")
	if err != nil {
		return nil, err
	}

	config.Resend.SenderEmail, err = env.Get("RESEND_SENDER_EMAIL", "no-reply@auth-account-server.dev")
	if err != nil {
		return nil, err
	}

	config.Auth.AccessTokenSecret, err = env.Require("JWT_ACCESS_SECRET")
	if err != nil {
		return nil, err
	}

	config.Auth.RefreshTokenSecret, err = env.Require("JWT_REFRESH_SECRET")
	if err != nil {
		return nil, err
	}

	config.Auth.AccessTokenTTL, err = env.Get("JWT_ACCESS_TTL", 25*time.Minute)
	if err != nil {
		return nil, err
	}

	config.Auth.RefreshTokenTTL, err = env.Get("JWT_REFRESH_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}

	config.Auth.Issuer, err = env.Get("JWT_ISSUER", "auth-account-server")
	if err != nil {
		return nil, err
	}

	config.Auth.CookieDomain, err = env.Get("COOKIE_DOMAIN", "")
	if err != nil {
		return nil, err
	}

	config.Logging.Level, err = env.Get("LOG_LEVEL", "info")
	if err != nil {
		return nil, err
	}

	return config, nil
}

func MustLoad() *Config {
	config, err := Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}
	return config
}

func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	if err := c.MongoDB.Validate(); err != nil {
		return fmt.Errorf("mongoDB config validation failed: %w", err)
	}

	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("redis config validation failed: %w", err)
	}

	if err := c.MinIO.Validate(); err != nil {
		return fmt.Errorf("minIO config validation failed: %w", err)
	}

	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth config validation failed: %w", err)
	}

	return nil
}

func (s *ServerConfig) Validate() error {
	if s.Port == "" {
		return fmt.Errorf("server port is required")
	}

	validEnvironments := []string{"development", "staging", "production"}
	if !slices.Contains(validEnvironments, s.Environment) {
		return fmt.Errorf("environment must be one of: %v", validEnvironments)
	}

	return nil
}

func (m *MongoDBConfig) Validate() error {
	if m.URL == "" {
		return fmt.Errorf("mongoDB URL is required")
	}

	if m.Database == "" {
		return fmt.Errorf("mongoDB database name is required")
	}

	return nil
}

func (r *RedisConfig) Validate() error {
	if r.Address == "" {
		return fmt.Errorf("redis address is required")
	}

	if r.Database < 0 {
		return fmt.Errorf("redis database number must be non-negative")
	}

	return nil
}

func (m *MinIOConfig) Validate() error {
	if m.Endpoint == "" {
		return fmt.Errorf("minIO endpoint is required")
	}

	if m.AccessKey == "" {
		return fmt.Errorf("minIO access key is required")
	}

	if m.SecretKey == "" {
		return fmt.Errorf("minIO secret key is required")
	}

	if m.BucketName == "" {
		return fmt.Errorf("minIO bucket name is required")
	}

	if m.PresignedExpiry <= 0 {
		return fmt.Errorf("minIO presigned expiry must be positive")
	}

	return nil
}

func (a *AuthConfig) Validate() error {
	if a.AccessTokenSecret == "" {
		return fmt.Errorf("JWT access secret is required")
	}

	if a.RefreshTokenSecret == "" {
		return fmt.Errorf("JWT refresh secret is required")
	}

	if a.AccessTokenSecret == a.RefreshTokenSecret {
		return fmt.Errorf("JWT access and refresh secrets must differ")
	}

	if a.AccessTokenTTL <= 0 {
		return fmt.Errorf("JWT access token TTL must be positive")
	}

	if a.RefreshTokenTTL <= a.AccessTokenTTL {
		return fmt.Errorf("JWT refresh token TTL must exceed the access token TTL")
	}

	return nil
}
