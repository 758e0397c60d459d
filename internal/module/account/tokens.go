package account

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// DeriveResetToken turns an account id into the opaque proof handed out after
// a verified password-reset OTP. The digest is applied twice so the proof
// neither reveals the id nor matches any single-round digest stored
// elsewhere.
func DeriveResetToken(accountID string) string {
	first := sha256.Sum256([]byte(accountID))
	second := sha256.Sum256([]byte(hex.EncodeToString(first[:])))
	return hex.EncodeToString(second[:])
}

// VerifyResetToken checks a presented proof against the expected derivation
// in constant time.
func VerifyResetToken(accountID, token string) bool {
	expected := DeriveResetToken(accountID)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 1
}
