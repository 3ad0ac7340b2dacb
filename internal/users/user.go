// Package users holds the user records that authentication is checked against.
// Records live in a JSON document next to the mod catalog; the administrator is
// seeded when the document is first created.
package users

import (
	"strings"
	"time"
)

// User is the public view of a user record.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// Account is a persisted user record including its bcrypt password hash.
// It is never written to API responses; use the embedded User instead.
type Account struct {
	User
	PasswordHash string `json:"passwordHash"`
}

// NormalizeEmail returns the lookup form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
