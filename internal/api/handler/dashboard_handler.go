package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apperrors "go-covid-pipeline/internal/errors"
	"go-covid-pipeline/internal/model"
	"go-covid-pipeline/internal/pipeline"
)

// DashboardService is what the dashboard routes need from the service layer.
type DashboardService interface {
	View(ctx context.Context) (model.DashboardView, error)
	TotalView() (model.EntityView, error)
	CountryView(name string) (model.EntityView, error)
	Countries() ([]string, error)
	Selection(ctx context.Context) (model.Selection, error)
	SetSelection(ctx context.Context, raw string) (model.Selection, error)
	Refresh(ctx context.Context) (*model.Snapshot, error)
	ExportRows(ctx context.Context) (string, []pipeline.ExportRow, error)
}

// SelectionRequest replaces the countries-of-interest string. An empty string
// is valid and leaves only Total on the dashboard.
type SelectionRequest struct {
	Countries *string `json:"countries" validate:"required,max=4096"`
}

// RefreshResponse summarizes a successful refresh.
type RefreshResponse struct {
	RunID     string    `json:"run_id"`
	FetchedAt time.Time `json:"fetched_at"`
	Countries int       `json:"countries"`
	Dates     int       `json:"dates"`
}

// CountriesResponse lists the countries of the current snapshot.
type CountriesResponse struct {
	Countries []string `json:"countries"`
	Count     int      `json:"count"`
}

// DashboardHandler serves the chart-ready views and the selection.
type DashboardHandler struct {
	service  DashboardService
	logger   *slog.Logger
	validate *validator.Validate
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(service DashboardService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service:  service,
		logger:   logger.With(slog.String("component", "dashboard_handler")),
		validate: validator.New(),
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/dashboard", h.GetDashboard)
	r.Get("/total", h.GetTotal)
	r.Get("/countries", h.ListCountries)
	r.Get("/countries/{country}", h.GetCountry)
	r.Get("/selection", h.GetSelection)
	r.Put("/selection", h.UpdateSelection)
	r.Post("/refresh", h.Refresh)
	r.Get("/export", h.Export)
	return r
}

// GetDashboard returns Total and the selected countries
// @Summary Dashboard view
// @Description Total plus every matched country of interest, as chart-ready series
// @Tags dashboard
// @Produce json
// @Success 200 {object} model.DashboardView
// @Failure 503 {object} apperrors.ErrorResponse "No data loaded yet"
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.View(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// GetTotal returns the all-rows aggregate
// @Summary Total view
// @Tags dashboard
// @Produce json
// @Success 200 {object} model.EntityView
// @Failure 503 {object} apperrors.ErrorResponse "No data loaded yet"
// @Router /total [get]
func (h *DashboardHandler) GetTotal(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.TotalView()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// ListCountries returns the countries of the current snapshot
// @Summary List countries
// @Tags countries
// @Produce json
// @Success 200 {object} CountriesResponse
// @Failure 503 {object} apperrors.ErrorResponse "No data loaded yet"
// @Router /countries [get]
func (h *DashboardHandler) ListCountries(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.Countries()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, CountriesResponse{Countries: names, Count: len(names)})
}

// GetCountry returns one country's view
// @Summary Country view
// @Description Country names match ignoring case
// @Tags countries
// @Produce json
// @Param country path string true "Country name"
// @Success 200 {object} model.EntityView
// @Failure 404 {object} apperrors.ErrorResponse "Unknown country"
// @Failure 503 {object} apperrors.ErrorResponse "No data loaded yet"
// @Router /countries/{country} [get]
func (h *DashboardHandler) GetCountry(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "country"))
	if name == "" {
		h.fail(w, r, apperrors.ErrValidationField("country", "Country name is required"))
		return
	}
	view, err := h.service.CountryView(name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// GetSelection returns the countries of interest
// @Summary Get selection
// @Tags selection
// @Produce json
// @Success 200 {object} model.Selection
// @Router /selection [get]
func (h *DashboardHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	sel, err := h.service.Selection(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, sel)
}

// UpdateSelection replaces the countries of interest
// @Summary Update selection
// @Description Semicolon-separated country names, e.g. "US;Italy"
// @Tags selection
// @Accept json
// @Produce json
// @Param selection body SelectionRequest true "Countries of interest"
// @Success 200 {object} model.Selection
// @Failure 400 {object} apperrors.ErrorResponse "Invalid request payload"
// @Router /selection [put]
func (h *DashboardHandler) UpdateSelection(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, apperrors.ErrInvalidRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.fail(w, r, apperrors.ErrValidationField("countries", err.Error()))
		return
	}
	sel, err := h.service.SetSelection(r.Context(), *req.Countries)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, sel)
}

// Refresh fetches the sources and replaces the snapshot
// @Summary Refresh data
// @Description Runs the pipeline synchronously. On failure the previous snapshot is kept.
// @Tags dashboard
// @Produce json
// @Success 200 {object} RefreshResponse
// @Failure 422 {object} apperrors.ErrorResponse "Source data is malformed or misaligned"
// @Failure 502 {object} apperrors.ErrorResponse "Source retrieval failed"
// @Router /refresh [post]
func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Refresh(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, RefreshResponse{
		RunID:     snap.RunID,
		FetchedAt: snap.FetchedAt,
		Countries: len(snap.Countries),
		Dates:     len(snap.Dates),
	})
}

// Export downloads Total and the selected countries
// @Summary Export series
// @Tags export
// @Produce text/csv,application/json,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv, json or xlsx" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} apperrors.ErrorResponse "Unsupported format"
// @Failure 503 {object} apperrors.ErrorResponse "No data loaded yet"
// @Router /export [get]
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = pipeline.FormatCSV
	}
	if !pipeline.ValidFormat(format) {
		h.fail(w, r, apperrors.ErrValidationField("format", "must be csv, json or xlsx"))
		return
	}
	runID, rows, err := h.service.ExportRows(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", pipeline.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="series-%s.%s"`, runID, format))
	if err := pipeline.Write(w, format, runID, rows); err != nil {
		// Headers are already sent; all we can do is log.
		h.logger.ErrorContext(r.Context(), "export failed", slog.String("error", err.Error()))
	}
}

func (h *DashboardHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := apperrors.FromError(err)
	if apiErr.StatusCode >= http.StatusInternalServerError && apiErr.StatusCode != http.StatusServiceUnavailable {
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
	}
	apperrors.WriteError(w, r, apiErr)
}
