package account

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OtpPurpose string

const (
	OtpPurposeSignin            OtpPurpose = "signin"
	OtpPurposeSignup            OtpPurpose = "signup"
	OtpPurposeEmailVerification OtpPurpose = "email-verification"
	OtpPurposePasswordReset     OtpPurpose = "password-reset"
	OtpPurposePasswordChange    OtpPurpose = "password-change"
	OtpPurposeDeleteAccount     OtpPurpose = "delete-account"
)

// ParseOtpPurpose validates a wire-level purpose string.
func ParseOtpPurpose(raw string) (OtpPurpose, bool) {
	switch OtpPurpose(raw) {
	case OtpPurposeSignin, OtpPurposeSignup, OtpPurposeEmailVerification,
		OtpPurposePasswordReset, OtpPurposePasswordChange, OtpPurposeDeleteAccount:
		return OtpPurpose(raw), true
	default:
		return "", false
	}
}

// OtpChallenge is one pending second-factor check. The plaintext code is only
// ever held in memory long enough to email it; the document stores a SHA-256
// digest.
type OtpChallenge struct {
	ID                  primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email               string             `json:"email" bson:"email"`
	Purpose             OtpPurpose         `json:"purpose" bson:"purpose"`
	CodeHash            string             `json:"-" bson:"code_hash"`
	Attempts            int                `json:"attempts" bson:"attempts"`
	IsVerified          bool               `json:"is_verified" bson:"is_verified"`
	ExpiresAt           time.Time          `json:"expires_at" bson:"expires_at"`
	NextResendAllowedAt time.Time          `json:"next_resend_allowed_at" bson:"next_resend_allowed_at"`
	CreatedAt           time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at" bson:"updated_at"`
}

func (o *OtpChallenge) IsExpired(now time.Time) bool {
	return !o.ExpiresAt.After(now)
}

func (o *OtpChallenge) CanResend(now time.Time) bool {
	return !o.NextResendAllowedAt.After(now)
}

func (o *OtpChallenge) ToResponse() *OtpChallengeResponse {
	return &OtpChallengeResponse{
		Email:               o.Email,
		Purpose:             string(o.Purpose),
		ExpiresAt:           o.ExpiresAt,
		NextResendAllowedAt: o.NextResendAllowedAt,
	}
}

// HashOtpCode digests a plaintext code for storage and comparison.
func HashOtpCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
