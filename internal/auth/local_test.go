package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/desertthunder/tunebook/internal/repositories"
	"github.com/desertthunder/tunebook/internal/shared"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func setupLocalProvider(t *testing.T) (*LocalProvider, *clock) {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	c := &clock{now: time.Now()}
	p := NewLocalProvider(
		repositories.NewUserRepository(db),
		repositories.NewSessionRepository(db),
		LocalOpts{TTL: time.Hour, BcryptCost: bcrypt.MinCost, Now: c.Now},
	)
	return p, c
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{"valid", "fiddler@example.com", "secret1", false},
		{"missing email", "", "secret1", true},
		{"malformed email", "fiddler", "secret1", true},
		{"short password", "fiddler@example.com", "12345", true},
		{"minimum length password", "fiddler@example.com", "123456", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCredentials(tt.email, tt.password)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateCredentials() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestLocalProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("Name", func(t *testing.T) {
		p, _ := setupLocalProvider(t)
		if p.Name() != "local" {
			t.Errorf("expected name 'local', got %s", p.Name())
		}
	})

	t.Run("Signup then Login", func(t *testing.T) {
		p, _ := setupLocalProvider(t)

		identity, err := p.Signup(ctx, "Fiddler@Example.com", "secret1")
		if err != nil {
			t.Fatalf("Signup failed: %v", err)
		}
		if identity.ID == "" || identity.Email != "fiddler@example.com" {
			t.Errorf("unexpected identity %+v", identity)
		}

		creds, err := p.Login(ctx, "fiddler@example.com", "secret1")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if creds.Token == "" {
			t.Error("expected a session token")
		}
		if creds.User.ID != identity.ID {
			t.Errorf("expected user %s, got %s", identity.ID, creds.User.ID)
		}

		current, err := p.Current(ctx, creds.Token)
		if err != nil {
			t.Fatalf("Current failed: %v", err)
		}
		if current.ID != identity.ID {
			t.Errorf("expected current user %s, got %s", identity.ID, current.ID)
		}
	})

	t.Run("Signup rejects invalid input", func(t *testing.T) {
		p, _ := setupLocalProvider(t)
		if _, err := p.Signup(ctx, "fiddler@example.com", "123"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Signup rejects duplicate email", func(t *testing.T) {
		p, _ := setupLocalProvider(t)
		if _, err := p.Signup(ctx, "fiddler@example.com", "secret1"); err != nil {
			t.Fatalf("Signup failed: %v", err)
		}
		if _, err := p.Signup(ctx, "fiddler@example.com", "secret2"); !errors.Is(err, shared.ErrEmailTaken) {
			t.Errorf("expected ErrEmailTaken, got %v", err)
		}
	})

	t.Run("Login failures", func(t *testing.T) {
		p, _ := setupLocalProvider(t)
		if _, err := p.Signup(ctx, "fiddler@example.com", "secret1"); err != nil {
			t.Fatalf("Signup failed: %v", err)
		}

		if _, err := p.Login(ctx, "fiddler@example.com", "wrong-password"); !errors.Is(err, shared.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
		}
		if _, err := p.Login(ctx, "nobody@example.com", "secret1"); !errors.Is(err, shared.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
		}
	})

	t.Run("Current rejects unknown and empty tokens", func(t *testing.T) {
		p, _ := setupLocalProvider(t)
		if _, err := p.Current(ctx, ""); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated for empty token, got %v", err)
		}
		if _, err := p.Current(ctx, "bogus"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated for unknown token, got %v", err)
		}
	})

	t.Run("Current expires sessions", func(t *testing.T) {
		p, c := setupLocalProvider(t)
		if _, err := p.Signup(ctx, "fiddler@example.com", "secret1"); err != nil {
			t.Fatalf("Signup failed: %v", err)
		}
		creds, err := p.Login(ctx, "fiddler@example.com", "secret1")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}

		c.now = c.now.Add(2 * time.Hour)

		_, err = p.Current(ctx, creds.Token)
		if !errors.Is(err, shared.ErrNotAuthenticated) || !errors.Is(err, shared.ErrSessionExpired) {
			t.Errorf("expected expired session error, got %v", err)
		}
	})

	t.Run("Logout", func(t *testing.T) {
		p, _ := setupLocalProvider(t)
		if _, err := p.Signup(ctx, "fiddler@example.com", "secret1"); err != nil {
			t.Fatalf("Signup failed: %v", err)
		}
		creds, err := p.Login(ctx, "fiddler@example.com", "secret1")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}

		if err := p.Logout(ctx, creds.Token); err != nil {
			t.Fatalf("Logout failed: %v", err)
		}
		if _, err := p.Current(ctx, creds.Token); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated after logout, got %v", err)
		}
		if err := p.Logout(ctx, creds.Token); err != nil {
			t.Errorf("expected second logout to succeed, got %v", err)
		}
	})
}

func TestNewProvider(t *testing.T) {
	t.Run("local by default", func(t *testing.T) {
		p, err := NewProvider(shared.AuthConfig{}, nil, nil)
		if err != nil {
			t.Fatalf("NewProvider failed: %v", err)
		}
		if p.Name() != "local" {
			t.Errorf("expected local provider, got %s", p.Name())
		}
	})

	t.Run("remote", func(t *testing.T) {
		p, err := NewProvider(shared.AuthConfig{Provider: "remote", URL: "http://localhost:9999"}, nil, nil)
		if err != nil {
			t.Fatalf("NewProvider failed: %v", err)
		}
		if p.Name() != "remote" {
			t.Errorf("expected remote provider, got %s", p.Name())
		}
	})

	t.Run("remote without URL", func(t *testing.T) {
		if _, err := NewProvider(shared.AuthConfig{Provider: "remote"}, nil, nil); !errors.Is(err, shared.ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := NewProvider(shared.AuthConfig{Provider: "ldap"}, nil, nil); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
