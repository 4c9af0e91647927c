package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"go-covid-pipeline/internal/model"
)

// Pinger checks a dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SnapshotSource exposes the current snapshot, if any.
type SnapshotSource interface {
	Snapshot() *model.Snapshot
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string     `json:"status"`
	Database  string     `json:"database"`
	HasData   bool       `json:"has_data"`
	RunID     string     `json:"run_id,omitempty"`
	FetchedAt *time.Time `json:"fetched_at,omitempty"`
}

// Health reports liveness. A failed database ping makes it 503; missing data does not.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func Health(db Pinger, snaps SnapshotSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{Status: "ok", Database: "disabled"}
		if db != nil {
			resp.Database = "ok"
			if err := db.Ping(r.Context()); err != nil {
				resp.Status = "degraded"
				resp.Database = err.Error()
				render.Status(r, http.StatusServiceUnavailable)
			}
		}
		if snap := snaps.Snapshot(); snap != nil {
			resp.HasData = true
			resp.RunID = snap.RunID
			fetched := snap.FetchedAt
			resp.FetchedAt = &fetched
		}
		render.JSON(w, r, resp)
	}
}
