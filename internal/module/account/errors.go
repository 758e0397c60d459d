package account

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmailAlreadyInUse  = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountDeactivated = errors.New("account has been deactivated")
	ErrEmailNotVerified   = errors.New("email address has not been verified")
	ErrProviderMismatch   = errors.New("account was registered with a different signin provider")

	ErrOtpNotFoundOrExpired  = errors.New("no active verification code found, request a new one")
	ErrOtpMaxAttemptsReached = errors.New("too many incorrect attempts, request a new code")
	ErrOtpAlreadyVerified    = errors.New("verification code has already been used")
	ErrOtpExpired            = errors.New("verification code has expired, request a new one")
	ErrInvalidOtpCode        = errors.New("incorrect verification code")
	ErrOtpNotVerified        = errors.New("verification code has not been confirmed")

	ErrUnauthorized      = errors.New("authentication required")
	ErrForbidden         = errors.New("insufficient permissions")
	ErrInvalidResetToken = errors.New("password reset was not authorized or has expired")
	ErrSamePassword      = errors.New("new password must differ from the current password")
	ErrInvalidInput      = errors.New("invalid request")
)

// LockedError is returned when the lockout window is active; RetryAfter is
// the remaining lock duration rounded up to whole seconds.
type LockedError struct {
	RetryAfter time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account is locked, try again in %s", formatRetryAfter(e.RetryAfter))
}

// ThrottledError is returned when an OTP resend is requested before the
// per-challenge cooldown has elapsed.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("please wait %s before requesting another code", formatRetryAfter(e.RetryAfter))
}

// ReactivationPendingError is returned when a soft-deleted account tries to
// reactivate before its waiting period has elapsed.
type ReactivationPendingError struct {
	RetryAfter time.Duration
}

func (e *ReactivationPendingError) Error() string {
	return fmt.Sprintf("account can be reactivated in %s", formatRetryAfter(e.RetryAfter))
}

// formatRetryAfter renders a remaining wait at the coarsest sensible unit,
// always rounding up so the caller never retries early.
func formatRetryAfter(d time.Duration) string {
	if d < time.Minute {
		seconds := int((d + time.Second - 1) / time.Second)
		if seconds <= 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", seconds)
	}

	if d <= time.Hour {
		minutes := int((d + time.Minute - 1) / time.Minute)
		if minutes <= 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}

	hours := int((d + time.Hour - 1) / time.Hour)
	if hours <= 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
