package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/isdelr/taskmaster-be/internal/monitoring"
	"github.com/rs/zerolog/log"
)

// HealthHandler reports liveness of the process and its database.
type HealthHandler struct {
	db    *sql.DB
	stats *monitoring.StatUpdater
}

// NewHealthHandler creates a new HealthHandler. stats may be nil.
func NewHealthHandler(db *sql.DB, stats *monitoring.StatUpdater) *HealthHandler {
	return &HealthHandler{db: db, stats: stats}
}

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status   string               `json:"status"`
	Database string               `json:"database"`
	Process  *monitoring.Snapshot `json:"process,omitempty"`
}

// Get pings the database and includes the latest process sample.
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Database: "ok"}
	status := http.StatusOK
	if err := h.db.PingContext(ctx); err != nil {
		log.Error().Err(err).Msg("Health check: database unreachable")
		resp.Status = "degraded"
		resp.Database = "unreachable"
		status = http.StatusServiceUnavailable
	}
	if h.stats != nil {
		snap := h.stats.Latest()
		if snap.SampledAt.IsZero() {
			snap = h.stats.Update(ctx)
		}
		resp.Process = &snap
	}
	writeJSON(w, status, resp)
}
