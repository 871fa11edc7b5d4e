package models

import (
	"fmt"
	"strings"
	"time"
)

// Identity is the {id, email} pair an identity provider resolves a session to.
//
// The application only ever reads identities; providers own their lifecycle.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// User is a locally managed identity for the built-in provider.
type User struct {
	record
	email        string
	passwordHash string
}

// NewUser creates a [User] with the given sequence and email.
func NewUser(sequence int, email string) *User {
	u := &User{record: newRecord(), email: strings.TrimSpace(strings.ToLower(email))}
	u.sequence = sequence
	return u
}

func (u *User) Email() string               { return u.email }
func (u *User) PasswordHash() string        { return u.passwordHash }
func (u *User) SetPasswordHash(hash string) { u.passwordHash = hash }

// Identity projects the user onto the provider-neutral [Identity].
func (u *User) Identity() Identity {
	return Identity{ID: u.id, Email: u.email}
}

// Validate requires an email and a password hash.
func (u *User) Validate() error {
	if u.email == "" || !strings.Contains(u.email, "@") {
		return fmt.Errorf("invalid email: %q", u.email)
	}
	if u.passwordHash == "" {
		return fmt.Errorf("password hash is required")
	}
	return nil
}

// Session is a login session issued by the built-in provider.
type Session struct {
	Token     string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
