// Package auth resolves and manages the identity of the person using tunebook.
//
// # Providers
//
// A [SessionProvider] exchanges credentials for sessions and resolves a session token to a
// [models.Identity]. Two implementations exist:
//
//   - [LocalProvider]: bcrypt-hashed accounts and opaque session tokens stored in SQLite
//   - [RemoteProvider]: a hosted identity service speaking the GoTrue HTTP API
//     (POST /signup, POST /token?grant_type=password, GET /user, POST /logout)
//
// # Session Context
//
// [Session] is the single process-wide holder of the current identity. Views and the TUI read it
// instead of querying the provider themselves and [Session.Subscribe] to learn about login and
// logout. [Manager] ties a provider, a [Session] and an optional [FileStore] together so the CLI can
// restore a login across invocations.
//
// The web server does not use the process-wide context; it resolves the identity per request from
// a cookie (see internal/web).
//
// # Error Handling
//
//   - [shared.ErrInvalidInput] : malformed email or a password shorter than [MinPasswordLength]
//   - [shared.ErrInvalidCredentials] : unknown email or wrong password
//   - [shared.ErrEmailTaken] : signup with an already registered email
//   - [shared.ErrNotAuthenticated] : unknown, revoked or expired session token
package auth
