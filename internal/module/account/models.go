package account

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Policy limits for signin, OTP and account lifecycle flows.
const (
	LoginMaxAttempts = 5
	LoginLockTime    = time.Hour

	OtpCodeLength  = 6
	OtpCodeExpiry  = 5 * time.Minute
	OtpMaxAttempts = 5
	OtpResendDelay = time.Minute

	ResetPasswordTokenExpiry = 5 * time.Minute
	ReactivationDelay        = 6 * time.Hour
	ChallengeSweepInterval   = 5 * time.Minute
)

type Provider string

const (
	ProviderLocal  Provider = "local"
	ProviderGoogle Provider = "google"
	ProviderGithub Provider = "github"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole validates a wire-level role string.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleUser, RoleAdmin:
		return Role(raw), true
	default:
		return "", false
	}
}

// NormalizeEmail canonicalizes an address for storage and lookup. Every
// service entry point that accepts an email runs it through here, so
// "Alice@X.com" and "alice@x.com" resolve to the same account.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type Avatar struct {
	ObjectID string `json:"object_id" bson:"object_id"`
	URL      string `json:"url" bson:"url"`
	Size     int64  `json:"size" bson:"size"`
}

type Account struct {
	ID                    primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email                 string             `json:"email" bson:"email"`
	Name                  string             `json:"name" bson:"name"`
	PasswordHash          string             `json:"-" bson:"password_hash,omitempty"`
	Provider              Provider           `json:"provider" bson:"provider"`
	ProviderID            string             `json:"-" bson:"provider_id,omitempty"`
	Role                  Role               `json:"role" bson:"role"`
	IsEmailVerified       bool               `json:"is_email_verified" bson:"is_email_verified"`
	Avatar                *Avatar            `json:"avatar,omitempty" bson:"avatar,omitempty"`
	LastLoginAt           *time.Time         `json:"last_login_at,omitempty" bson:"last_login_at,omitempty"`
	FailedLoginAttempts   int                `json:"-" bson:"failed_login_attempts"`
	LockUntil             *time.Time         `json:"-" bson:"lock_until,omitempty"`
	IsDeleted             bool               `json:"-" bson:"is_deleted"`
	DeletedAt             *time.Time         `json:"-" bson:"deleted_at,omitempty"`
	ReactivateAvailableAt *time.Time         `json:"-" bson:"reactivate_available_at,omitempty"`
	CreatedAt             time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at" bson:"updated_at"`
}

// IsLocked reports whether the lockout window is still in effect at now.
func (a *Account) IsLocked(now time.Time) bool {
	return a.LockUntil != nil && a.LockUntil.After(now)
}

// CanReactivate reports whether a soft-deleted account's reactivation
// waiting period has elapsed at now. A missing timestamp means no waiting
// period applies.
func (a *Account) CanReactivate(now time.Time) bool {
	if !a.IsDeleted {
		return false
	}
	return a.ReactivateAvailableAt == nil || !a.ReactivateAvailableAt.After(now)
}

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type FederatedSigninRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Name       string `json:"name" validate:"required"`
	ProviderID string `json:"provider_id" validate:"required"`
	AvatarURL  string `json:"avatar_url"`
}

type RequestOtpRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Purpose string `json:"purpose" validate:"required"`
}

type VerifyOtpRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Purpose string `json:"purpose" validate:"required"`
	Code    string `json:"code" validate:"required,len=6"`
}

type UpdateProfileRequest struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Role   *string `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
	Avatar *AvatarUpload
}

type AvatarUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Data        []byte
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

type DeleteAccountRequest struct {
	Password  string `json:"password"`
	Permanent bool   `json:"permanent"`
}

type ReactivateRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AccountResponse struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Name            string     `json:"name"`
	Provider        Provider   `json:"provider"`
	Role            Role       `json:"role"`
	IsEmailVerified bool       `json:"is_email_verified"`
	AvatarURL       string     `json:"avatar_url,omitempty"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type SigninResponse struct {
	Account      *AccountResponse `json:"account"`
	AccessToken  string           `json:"-"`
	RefreshToken string           `json:"-"`
}

type OtpChallengeResponse struct {
	Email               string    `json:"email"`
	Purpose             string    `json:"purpose"`
	ExpiresAt           time.Time `json:"expires_at"`
	NextResendAllowedAt time.Time `json:"next_resend_allowed_at"`
}

func (a *Account) ToResponse() *AccountResponse {
	response := &AccountResponse{
		ID:              a.ID.Hex(),
		Email:           a.Email,
		Name:            a.Name,
		Provider:        a.Provider,
		Role:            a.Role,
		IsEmailVerified: a.IsEmailVerified,
		LastLoginAt:     a.LastLoginAt,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}

	if a.Avatar != nil {
		response.AvatarURL = a.Avatar.URL
	}

	return response
}
