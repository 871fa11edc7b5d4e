package auth

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/tunebook/internal/models"
	"github.com/desertthunder/tunebook/internal/shared"
)

// Manager drives a [SessionProvider] on behalf of the process-wide [Session].
type Manager struct {
	provider SessionProvider
	session  *Session
	store    *FileStore
	logger   *log.Logger
}

// NewManager creates a [Manager]. store may be nil, in which case logins last for the process only.
func NewManager(provider SessionProvider, session *Session, store *FileStore, logger *log.Logger) *Manager {
	if session == nil {
		session = NewSession()
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Manager{provider: provider, session: session, store: store, logger: shared.WithLogger(logger, "provider", provider.Name())}
}

// Session returns the process-wide session context.
func (m *Manager) Session() *Session {
	return m.session
}

// Provider returns the underlying provider.
func (m *Manager) Provider() SessionProvider {
	return m.provider
}

// Restore loads the persisted token and verifies it with the provider. A stale token is discarded and the
// session stays logged out; only storage and transport failures are returned.
func (m *Manager) Restore(ctx context.Context) (State, error) {
	if m.store == nil {
		return m.session.Get(), nil
	}

	saved, err := m.store.Load()
	if err != nil {
		return State{}, err
	}
	if saved.Token == "" {
		return State{}, nil
	}

	user, err := m.provider.Current(ctx, saved.Token)
	if errors.Is(err, shared.ErrNotAuthenticated) {
		m.logger.Debug("stored session no longer valid", "error", err)
		return State{}, m.store.Remove()
	}
	if err != nil {
		return State{}, err
	}

	state := State{User: user, Token: saved.Token}
	m.session.Set(state)
	return state, nil
}

// Login authenticates and publishes the new state.
func (m *Manager) Login(ctx context.Context, email, password string) (State, error) {
	creds, err := m.provider.Login(ctx, email, password)
	if err != nil {
		m.logger.Warn("login failed", "email", email, "error", err)
		return State{}, err
	}

	user := creds.User
	state := State{User: &user, Token: creds.Token}
	if m.store != nil {
		if err := m.store.Save(state); err != nil {
			return State{}, err
		}
	}

	m.session.Set(state)
	m.logger.Info("logged in", "user", user.Email)
	return state, nil
}

// Signup registers a new identity without logging in.
func (m *Manager) Signup(ctx context.Context, email, password string) (*models.Identity, error) {
	return m.provider.Signup(ctx, email, password)
}

// Logout revokes the current token and clears the session even when the provider call fails.
func (m *Manager) Logout(ctx context.Context) error {
	state := m.session.Get()

	err := m.provider.Logout(ctx, state.Token)
	if err != nil {
		m.logger.Warn("provider logout failed", "error", err)
	}

	if m.store != nil {
		if rmErr := m.store.Remove(); rmErr != nil {
			err = errors.Join(err, rmErr)
		}
	}

	m.session.Clear()
	return err
}
