// Package server provides HTTP routing, middleware, cookie sessions and operational endpoints for the web app.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation registers [http.ServeMux] method patterns ("GET /tune/{id}"), so handlers
// read wildcards with [http.Request.PathValue] and unsupported methods get a 405 from the mux.
//
// # Middleware
//
//   - [Logging]: one charmbracelet/log line per request
//   - [Recover]: converts panics into 500 responses
//   - [Instrument]: Prometheus request counters and latency histograms keyed by route pattern
//   - [Compress]: gzip via klauspost/compress/gzhttp
//   - [Authenticate]: resolves the session cookie through an [auth.SessionProvider]
//
// # Sessions
//
// [CookieSessions] keeps only the provider's opaque token in a signed gorilla/sessions cookie. Every request
// re-resolves the token, so a logout or expiry elsewhere takes effect on the next page load. Handlers read
// the result with [StateFrom].
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
// [HealthHandler] and [PrometheusMetrics] are registered this way.
package server
