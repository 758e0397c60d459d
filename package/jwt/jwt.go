package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// TokenPair is one access/refresh issuance. Both tokens carry the account id
// as the subject; the refresh token is signed with its own secret so a leaked
// access key cannot mint refresh tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type TokenService struct {
	config TokenConfig
}

func NewTokenService(config TokenConfig) (*TokenService, error) {
	if config.AccessSecret == "" || config.RefreshSecret == "" {
		return nil, fmt.Errorf("JWT access and refresh secrets are required")
	}

	if config.AccessTTL <= 0 {
		config.AccessTTL = 25 * time.Minute
	}

	if config.RefreshTTL <= 0 {
		config.RefreshTTL = 7 * 24 * time.Hour
	}

	if config.Issuer == "" {
		config.Issuer = "auth-account-server"
	}

	return &TokenService{config: config}, nil
}

func (s *TokenService) IssuePair(subject string) (*TokenPair, error) {
	access, err := s.sign(subject, s.config.AccessSecret, s.config.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh, err := s.sign(subject, s.config.RefreshSecret, s.config.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess validates an access token and returns its subject.
func (s *TokenService) VerifyAccess(tokenString string) (string, error) {
	return s.verify(tokenString, s.config.AccessSecret)
}

// VerifyRefresh validates a refresh token and returns its subject.
func (s *TokenService) VerifyRefresh(tokenString string) (string, error) {
	return s.verify(tokenString, s.config.RefreshSecret)
}

func (s *TokenService) AccessTTL() time.Duration {
	return s.config.AccessTTL
}

func (s *TokenService) RefreshTTL() time.Duration {
	return s.config.RefreshTTL
}

func (s *TokenService) sign(subject, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    s.config.Issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (s *TokenService) verify(tokenString, secret string) (string, error) {
	keyFunc := func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected token signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
