package domain

import (
	"errors"
	"strings"
	"time"
)

// User is an account that can log in. Password fields are the two halves of the stored
// "salt:hash" credential.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Salt         string
	CreatedAt    time.Time
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.PasswordHash == "" || u.Salt == "" {
		return errors.New("password hash and salt are required")
	}
	return nil
}

// NormalizeEmail lower-cases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
