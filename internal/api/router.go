package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"go-covid-pipeline/internal/api/handler"
	"go-covid-pipeline/internal/config"
	apperrors "go-covid-pipeline/internal/errors"

	_ "go-covid-pipeline/docs" // registers the swagger document
)

// APIPrefix is where the versioned API is mounted.
const APIPrefix = "/api/v1"

// Dependencies are the services the router serves.
type Dependencies struct {
	Dashboard interface {
		handler.DashboardService
		handler.SnapshotSource
	}
	Runs      handler.RunStore // optional
	DB        handler.Pinger   // optional
	Gatherer  prometheus.Gatherer
	RateLimit config.RateLimitConfig
	Logger    *slog.Logger
}

// NewRouter builds the HTTP handler for the dashboard API.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Order: RequestID → Logger → Recoverer → RateLimit
	r.Use(RequestID)
	r.Use(StructuredLogger(deps.Logger))
	r.Use(Recoverer(deps.Logger))
	if deps.RateLimit.Enabled {
		r.Use(NewRateLimiter(deps.RateLimit.RPS, deps.RateLimit.Burst, deps.Logger).Handler)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apperrors.WriteError(w, r, apperrors.NotFoundError("Route"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apperrors.WriteError(w, r, apperrors.New(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed"))
	})

	r.Get("/health", handler.Health(deps.DB, deps.Dashboard))

	r.Route(APIPrefix, func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Mount("/", handler.NewDashboardHandler(deps.Dashboard, deps.Logger).Routes())
		if deps.Runs != nil {
			r.Mount("/runs", handler.NewRunsHandler(deps.Runs, deps.Logger).Routes())
		}
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	return r
}
