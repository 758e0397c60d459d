package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveResetToken(t *testing.T) {
	token := DeriveResetToken("68a1f2e4b9c3d5a7e8f90123")

	assert.Len(t, token, 64)
	assert.Equal(t, token, DeriveResetToken("68a1f2e4b9c3d5a7e8f90123"))
	assert.NotEqual(t, token, DeriveResetToken("68a1f2e4b9c3d5a7e8f90124"))
}

func TestVerifyResetToken(t *testing.T) {
	accountID := "68a1f2e4b9c3d5a7e8f90123"
	token := DeriveResetToken(accountID)

	tests := []struct {
		name      string
		accountID string
		token     string
		expected  bool
	}{
		{
			name:      "accepts the derived token",
			accountID: accountID,
			token:     token,
			expected:  true,
		},
		{
			name:      "rejects a token for another account",
			accountID: "68a1f2e4b9c3d5a7e8f90124",
			token:     token,
			expected:  false,
		},
		{
			name:      "rejects a truncated token",
			accountID: accountID,
			token:     token[:32],
			expected:  false,
		},
		{
			name:      "rejects an empty token",
			accountID: accountID,
			token:     "",
			expected:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, VerifyResetToken(tt.accountID, tt.token))
		})
	}
}
