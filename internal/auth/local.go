package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/desertthunder/tunebook/internal/models"
	"github.com/desertthunder/tunebook/internal/shared"
)

// UserStore is the subset of the user repository the local provider needs.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// SessionStore is the subset of the session repository the local provider needs.
type SessionStore interface {
	Create(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// LocalOpts configures a [LocalProvider].
type LocalOpts struct {
	TTL        time.Duration    // session lifetime (default: 30 days)
	BcryptCost int              // default: bcrypt.DefaultCost
	Now        func() time.Time // clock, overridable in tests
}

// LocalProvider implements [SessionProvider] with accounts stored in the local database.
type LocalProvider struct {
	users    UserStore
	sessions SessionStore
	ttl      time.Duration
	cost     int
	now      func() time.Time
}

// NewLocalProvider creates a [LocalProvider] over the given stores.
func NewLocalProvider(users UserStore, sessions SessionStore, opts LocalOpts) *LocalProvider {
	if opts.TTL <= 0 {
		opts.TTL = 30 * 24 * time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &LocalProvider{users: users, sessions: sessions, ttl: opts.TTL, cost: opts.BcryptCost, now: opts.Now}
}

// Name returns the provider name.
func (p *LocalProvider) Name() string {
	return "local"
}

// Signup creates an account that can log in immediately.
func (p *LocalProvider) Signup(ctx context.Context, email, password string) (*models.Identity, error) {
	if err := ValidateCredentials(email, password); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(0, email)
	user.SetPasswordHash(string(hashed))
	if err := p.users.Create(ctx, user); err != nil {
		return nil, err
	}

	identity := user.Identity()
	return &identity, nil
}

// Login checks the password and issues a new session token.
func (p *LocalProvider) Login(ctx context.Context, email, password string) (*Credentials, error) {
	user, err := p.users.GetByEmail(ctx, email)
	if errors.Is(err, shared.ErrUserNotFound) {
		return nil, shared.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash()), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}

	now := p.now()
	session := &models.Session{Token: token, UserID: user.ID(), CreatedAt: now, ExpiresAt: now.Add(p.ttl)}
	if err := p.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	if _, err := p.sessions.DeleteExpired(ctx, now); err != nil {
		return nil, err
	}

	return &Credentials{Token: token, User: user.Identity(), ExpiresAt: session.ExpiresAt}, nil
}

// Current resolves a session token, removing it when it has expired.
func (p *LocalProvider) Current(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}

	session, err := p.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	if session.Expired(p.now()) {
		if err := p.sessions.Delete(ctx, token); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", shared.ErrNotAuthenticated, shared.ErrSessionExpired)
	}

	user, err := p.users.Get(ctx, session.UserID)
	if errors.Is(err, shared.ErrUserNotFound) {
		return nil, shared.ErrNotAuthenticated
	}
	if err != nil {
		return nil, err
	}

	identity := user.Identity()
	return &identity, nil
}

// Logout deletes the session.
func (p *LocalProvider) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return p.sessions.Delete(ctx, token)
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
