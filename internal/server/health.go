package server

import (
	"context"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

// Pinger reports whether a dependency is reachable. [*sql.DB] satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves a liveness report including database reachability.
type HealthHandler struct {
	db        Pinger
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Database      string  `json:"database"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// NewHealthHandler creates a [HealthHandler].
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db, startTime: time.Now()}
}

// Routes implements [Handler].
func (h *HealthHandler) Routes() []string {
	return []string{"GET /healthz"}
}

// ServeHTTP answers 200 when the database responds and 503 otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Database: "ok", UptimeSeconds: time.Since(h.startTime).Seconds()}
	code := http.StatusOK

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		resp.Status = "degraded"
		resp.Database = err.Error()
		code = http.StatusServiceUnavailable
	}

	body, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}
