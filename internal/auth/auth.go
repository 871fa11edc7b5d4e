package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/gookit/validate"

	"github.com/desertthunder/tunebook/internal/models"
	"github.com/desertthunder/tunebook/internal/shared"
)

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 6

// SessionProvider defines the operations an identity backend offers.
type SessionProvider interface {
	// Current resolves token to the identity it was issued for.
	Current(ctx context.Context, token string) (*models.Identity, error)

	// Login exchanges an email and password for a session. Failures are not retried.
	Login(ctx context.Context, email, password string) (*Credentials, error)

	// Signup registers a new identity.
	Signup(ctx context.Context, email, password string) (*models.Identity, error)

	// Logout invalidates token. Logging out an unknown token is not an error.
	Logout(ctx context.Context, token string) error

	// Name returns the name of the provider (e.g., "local")
	Name() string
}

// Credentials is the result of a successful login.
type Credentials struct {
	Token     string          `json:"token"`
	User      models.Identity `json:"user"`
	ExpiresAt time.Time       `json:"expires_at"`
}

type credentialsForm struct {
	Email    string `json:"email" validate:"required|email" label:"Email"`
	Password string `json:"password" validate:"required|minLen:6" label:"Password"`
}

// ValidateCredentials checks the shape of a signup request before it reaches a provider.
func ValidateCredentials(email, password string) error {
	v := validate.Struct(&credentialsForm{Email: email, Password: password})
	if !v.Validate() {
		return fmt.Errorf("%w: %s", shared.ErrInvalidInput, v.Errors.One())
	}
	return nil
}

// NewProvider builds the provider selected by cfg.
func NewProvider(cfg shared.AuthConfig, users UserStore, sessions SessionStore) (SessionProvider, error) {
	switch cfg.Provider {
	case "", "local":
		return NewLocalProvider(users, sessions, LocalOpts{TTL: cfg.SessionTTL()}), nil
	case "remote":
		p, err := NewRemoteProvider(RemoteOpts{BaseURL: cfg.URL, APIKey: cfg.APIKey})
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: unknown auth provider %q", shared.ErrInvalidConfig, cfg.Provider)
	}
}
