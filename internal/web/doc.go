// Package web serves the tune library as server-rendered HTML.
//
// # Routes
//
//	GET  /                          → tune list, or the login form when logged out
//	POST /login                     → exchange credentials for a session cookie
//	GET  /signup, POST /signup      → register an identity
//	POST /logout                    → drop the session
//	GET  /add-tune, POST /add-tune  → create a tune, then redirect to /
//	GET  /tune/{id}, POST /tune/{id}→ view and save a tune with its recordings
//	POST /tune/{id}/delete          → delete a tune (requires confirm=yes)
//	GET|POST /tune/{id}/add-recording
//	GET  /recording/{id}, POST /recording/{id}
//	POST /recording/{id}/delete     → delete, then return to the parent tune
//
// # Rendering
//
// Pages are html/template files embedded with go:embed, one template set per page sharing a layout.
// Every handler builds a request-local view from the views package and renders it; store errors appear
// inline and missing records get a 404 page. Successful creates render a short page that refreshes to
// the next location after the configured delay (one second by default).
//
// # Sessions
//
// The session token lives in a gorilla/sessions cookie managed by [server.CookieSessions]. The
// [server.Authenticate] middleware resolves it on every request; handlers read it with [server.StateFrom].
package web
