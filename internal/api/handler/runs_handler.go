package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "go-covid-pipeline/internal/errors"
	"go-covid-pipeline/internal/model"
)

// RunStore reads run history.
type RunStore interface {
	ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error)
	GetRun(ctx context.Context, id string) (model.RunRecord, error)
}

// DefaultRunLimit caps GET /runs when no limit is given.
const DefaultRunLimit = 50

// RunsHandler serves the refresh history.
type RunsHandler struct {
	store  RunStore
	logger *slog.Logger
}

// NewRunsHandler creates a runs handler.
func NewRunsHandler(store RunStore, logger *slog.Logger) *RunsHandler {
	return &RunsHandler{store: store, logger: logger.With(slog.String("component", "runs_handler"))}
}

// Routes returns the run history routes
func (h *RunsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListRuns)
	r.Get("/{id}", h.GetRun)
	return r
}

// ListRuns returns recent refreshes, newest first
// @Summary List runs
// @Tags runs
// @Produce json
// @Param limit query int false "Maximum number of runs" default(50)
// @Success 200 {array} model.RunRecord
// @Failure 400 {object} apperrors.ErrorResponse "Invalid limit"
// @Router /runs [get]
func (h *RunsHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := DefaultRunLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			apperrors.WriteError(w, r, apperrors.ErrValidationField("limit", "must be a positive integer"))
			return
		}
		limit = n
	}
	runs, err := h.store.ListRuns(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list runs", slog.String("error", err.Error()))
		apperrors.WriteError(w, r, err)
		return
	}
	render.JSON(w, r, runs)
}

// GetRun returns one refresh with its stages
// @Summary Get run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} model.RunRecord
// @Failure 404 {object} apperrors.ErrorResponse "Run not found"
// @Router /runs/{id} [get]
func (h *RunsHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apperrors.WriteError(w, r, err)
		return
	}
	render.JSON(w, r, run)
}
