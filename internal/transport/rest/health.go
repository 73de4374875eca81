package rest

import (
	"context"
	"net/http"
	"time"
)

// dbPinger defines the minimal interface for DB health checks.
type dbPinger interface {
	Ping(ctx context.Context) error
}

// busPinger reports event-bus connectivity. Optional: nil means the bus is
// disabled and excluded from readiness.
type busPinger interface {
	Ping() error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db      dbPinger
	bus     busPinger
	version string
}

// NewHealthHandler creates a HealthHandler. bus may be nil.
func NewHealthHandler(db dbPinger, bus busPinger, version string) *HealthHandler {
	return &HealthHandler{db: db, bus: bus, version: version}
}

// HealthResponse is the JSON response for the probes.
type HealthResponse struct {
	Status     string            `json:"status"`
	Version    string            `json:"version,omitempty"`
	Components map[string]string `json:"components,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Live is the liveness probe. Always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Ready is the readiness probe: 200 when the database (and the bus, when
// enabled) are reachable, 503 otherwise.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	components := make(map[string]string)
	status := "ok"

	if err := h.db.Ping(ctx); err != nil {
		components["database"] = "down"
		status = "down"
	} else {
		components["database"] = "ok"
	}

	if h.bus != nil {
		if err := h.bus.Ping(); err != nil {
			components["event_bus"] = "down"
			status = "down"
		} else {
			components["event_bus"] = "ok"
		}
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, HealthResponse{
		Status:     status,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}
