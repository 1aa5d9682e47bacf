// Package users is the credential store: username to password-hash records.
//
// Records are created out of band (see cmd/useradd); the web application
// only reads them.
package users

import (
	"errors"
	"regexp"
)

// ErrUsernameTaken is returned by Create when the username already exists.
var ErrUsernameTaken = errors.New("username already taken")

// UserProfile is one credential record. PasswordHash is a salted hash,
// never the plaintext password.
type UserProfile struct {
	ID           string
	Username     string
	PasswordHash string
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidateUsername checks username requirements
func ValidateUsername(username string) (bool, string) {
	if len(username) < 3 {
		return false, "Username must be at least 3 characters long"
	}
	if len(username) > 50 {
		return false, "Username must be less than 50 characters"
	}
	if !usernamePattern.MatchString(username) {
		return false, "Username can only contain letters, numbers, and underscores"
	}
	return true, ""
}

// ValidatePassword checks password strength requirements
func ValidatePassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters long"
	}
	if len(password) > 72 {
		// bcrypt ignores everything past 72 bytes
		return false, "Password must be at most 72 characters"
	}
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)
	hasLetter := regexp.MustCompile(`[a-zA-Z]`).MatchString(password)
	if !hasNumber || !hasLetter {
		return false, "Password must contain both letters and numbers"
	}
	return true, ""
}
