package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccount_IsLocked(t *testing.T) {
	now := time.Now()
	future := now.Add(30 * time.Minute)
	past := now.Add(-time.Minute)

	tests := []struct {
		name     string
		account  *Account
		expected bool
	}{
		{
			name:     "no lock armed",
			account:  CreateTestAccount(),
			expected: false,
		},
		{
			name:     "lock window still active",
			account:  CreateTestAccount(func(a *Account) { a.LockUntil = &future }),
			expected: true,
		},
		{
			name:     "lock window elapsed",
			account:  CreateTestAccount(func(a *Account) { a.LockUntil = &past }),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.account.IsLocked(now))
		})
	}
}

func TestAccount_CanReactivate(t *testing.T) {
	now := time.Now()
	pending := now.Add(2 * time.Hour)
	elapsed := now.Add(-time.Minute)

	tests := []struct {
		name     string
		account  *Account
		expected bool
	}{
		{
			name:     "not deactivated",
			account:  CreateTestAccount(),
			expected: false,
		},
		{
			name: "waiting period still running",
			account: CreateTestAccount(func(a *Account) {
				a.IsDeleted = true
				a.ReactivateAvailableAt = &pending
			}),
			expected: false,
		},
		{
			name: "waiting period elapsed",
			account: CreateTestAccount(func(a *Account) {
				a.IsDeleted = true
				a.ReactivateAvailableAt = &elapsed
			}),
			expected: true,
		},
		{
			name: "deactivated without a recorded wait",
			account: CreateTestAccount(func(a *Account) {
				a.IsDeleted = true
			}),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.account.CanReactivate(now))
		})
	}
}

func TestAccount_ToResponse(t *testing.T) {
	lastLogin := time.Now().Add(-time.Hour)
	account := CreateTestAccount(func(a *Account) {
		a.LastLoginAt = &lastLogin
		a.Avatar = &Avatar{ObjectID: "avatars/x/1.png", URL: "https://cdn.example.com/1.png", Size: 42}
	})

	response := account.ToResponse()

	assert.Equal(t, account.ID.Hex(), response.ID)
	assert.Equal(t, account.Email, response.Email)
	assert.Equal(t, account.Name, response.Name)
	assert.Equal(t, account.Provider, response.Provider)
	assert.Equal(t, account.Role, response.Role)
	assert.True(t, response.IsEmailVerified)
	assert.Equal(t, "https://cdn.example.com/1.png", response.AvatarURL)
	assert.NotNil(t, response.LastLoginAt)
}

func TestParseOtpPurpose(t *testing.T) {
	tests := []struct {
		raw      string
		expected OtpPurpose
		ok       bool
	}{
		{raw: "signin", expected: OtpPurposeSignin, ok: true},
		{raw: "signup", expected: OtpPurposeSignup, ok: true},
		{raw: "email-verification", expected: OtpPurposeEmailVerification, ok: true},
		{raw: "password-reset", expected: OtpPurposePasswordReset, ok: true},
		{raw: "password-change", expected: OtpPurposePasswordChange, ok: true},
		{raw: "delete-account", expected: OtpPurposeDeleteAccount, ok: true},
		{raw: "SIGNIN", ok: false},
		{raw: "password_reset", ok: false},
		{raw: "delete_account", ok: false},
		{raw: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			purpose, ok := ParseOtpPurpose(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, purpose)
		})
	}
}

func TestHashOtpCode(t *testing.T) {
	hash := HashOtpCode("123456")

	assert.Len(t, hash, 64)
	assert.Equal(t, hash, HashOtpCode("123456"))
	assert.NotEqual(t, hash, HashOtpCode("123457"))
}

func TestOtpChallenge_StateChecks(t *testing.T) {
	now := time.Now()

	live := CreateTestOtpChallenge()
	assert.False(t, live.IsExpired(now))
	assert.False(t, live.CanResend(now))

	stale := CreateTestOtpChallenge(func(c *OtpChallenge) {
		c.ExpiresAt = now.Add(-time.Second)
		c.NextResendAllowedAt = now.Add(-time.Second)
	})
	assert.True(t, stale.IsExpired(now))
	assert.True(t, stale.CanResend(now))
}

func TestFormatRetryAfter(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{name: "sub-second rounds up", duration: 300 * time.Millisecond, expected: "1 second"},
		{name: "seconds", duration: 45 * time.Second, expected: "45 seconds"},
		{name: "one minute", duration: time.Minute, expected: "1 minute"},
		{name: "partial minute rounds up", duration: 10*time.Minute + 20*time.Second, expected: "11 minutes"},
		{name: "minutes", duration: 59 * time.Minute, expected: "59 minutes"},
		{name: "an hour stays in minutes", duration: time.Hour, expected: "60 minutes"},
		{name: "partial hour rounds up", duration: 5*time.Hour + time.Minute, expected: "6 hours"},
		{name: "hours", duration: 6 * time.Hour, expected: "6 hours"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatRetryAfter(tt.duration))
		})
	}
}

func TestLockedError_Message(t *testing.T) {
	err := &LockedError{RetryAfter: 30 * time.Minute}
	assert.Contains(t, err.Error(), "30 minutes")
}

func TestThrottledError_Message(t *testing.T) {
	err := &ThrottledError{RetryAfter: 30 * time.Second}
	assert.Contains(t, err.Error(), "30 seconds")
}

func TestReactivationPendingError_Message(t *testing.T) {
	err := &ReactivationPendingError{RetryAfter: 6 * time.Hour}
	assert.Contains(t, err.Error(), "6 hours")
}
