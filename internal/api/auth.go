package api

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// checkPassword compares password with the configured one, which may be
// a bcrypt hash ("$2a$", "$2b$" or "$2y$" prefix) or plain text.
func checkPassword(configured, password string) bool {
	if isBcryptHash(configured) {
		return bcrypt.CompareHashAndPassword([]byte(configured), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(password)) == 1
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") ||
		strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}
