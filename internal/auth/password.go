// Package auth verifies dashboard login credentials against the legacy users
// table.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashPassword returns the lowercase hex SHA-256 digest stored for new
// accounts.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(password)))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether input matches the stored credential. Both values are
// trimmed. Stored values are either a SHA-256 digest or, for accounts created
// before hashing, the plaintext itself.
//
// Comparison is not constant time and plaintext accounts are not rehashed on
// login.
func Verify(input, stored string) bool {
	input = strings.TrimSpace(input)
	stored = strings.TrimSpace(stored)
	if stored == "" {
		return false
	}
	return input == stored || HashPassword(input) == stored
}
