package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/sessions"

	"github.com/desertthunder/tunebook/internal/auth"
	"github.com/desertthunder/tunebook/internal/shared"
)

const (
	sessionCookieName = "tunebook_session"
	tokenKey          = "token"
)

// CookieSessions stores the identity provider's session token in a signed cookie.
type CookieSessions struct {
	store *sessions.CookieStore
}

// NewCookieSessions creates a cookie store signed with secret. Cookies live for ttl.
func NewCookieSessions(secret []byte, ttl time.Duration, secure bool) *CookieSessions {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &CookieSessions{store: store}
}

// Token returns the session token carried by r, or "".
func (c *CookieSessions) Token(r *http.Request) string {
	sess, err := c.store.Get(r, sessionCookieName)
	if err != nil {
		return ""
	}
	token, _ := sess.Values[tokenKey].(string)
	return token
}

// Save writes token into the session cookie.
func (c *CookieSessions) Save(w http.ResponseWriter, r *http.Request, token string) error {
	sess, err := c.store.New(r, sessionCookieName)
	if err != nil && sess == nil {
		return err
	}
	sess.Values[tokenKey] = token
	return sess.Save(r, w)
}

// Clear expires the session cookie.
func (c *CookieSessions) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, err := c.store.New(r, sessionCookieName)
	if err != nil && sess == nil {
		return err
	}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

type stateKey struct{}

// WithState returns a copy of ctx carrying state.
func WithState(ctx context.Context, state auth.State) context.Context {
	return context.WithValue(ctx, stateKey{}, state)
}

// StateFrom returns the session state stored by [Authenticate], or a logged out state.
func StateFrom(ctx context.Context) auth.State {
	state, _ := ctx.Value(stateKey{}).(auth.State)
	return state
}

// Authenticate resolves the request's session cookie through provider and stores the result in the
// request context. Stale cookies are cleared; provider outages leave the request logged out.
func Authenticate(provider auth.SessionProvider, cookies *CookieSessions, logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := cookies.Token(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := provider.Current(r.Context(), token)
			switch {
			case err == nil:
				r = r.WithContext(WithState(r.Context(), auth.State{User: user, Token: token}))
			case errors.Is(err, shared.ErrNotAuthenticated):
				if cerr := cookies.Clear(w, r); cerr != nil {
					logger.Warn("failed to clear stale session cookie", "error", cerr)
				}
			default:
				logger.Error("failed to resolve session", "provider", provider.Name(), "error", err)
			}

			next.ServeHTTP(w, r)
		})
	}
}
