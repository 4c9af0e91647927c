// Package dashboard holds the current snapshot and the countries-of-interest
// selection, and renders both into chart-ready views.
package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	apperrors "go-covid-pipeline/internal/errors"
	"go-covid-pipeline/internal/model"
	"go-covid-pipeline/internal/pipeline"
)

// SelectionKey is the settings key of the countries-of-interest string.
const SelectionKey = "countries_of_interest"

// RunFunc produces a new snapshot. pipeline.Run bound to its sources and options
// is the production implementation.
type RunFunc func(ctx context.Context) (*model.Snapshot, error)

// SettingsStore persists the selection override.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Service is safe for concurrent use. Reads never wait for a refresh.
type Service struct {
	run              RunFunc
	settings         SettingsStore
	defaultSelection string
	logger           *slog.Logger

	snapshot  atomic.Pointer[model.Snapshot]
	refreshMu sync.Mutex
}

// New creates a service with no snapshot. settings may be nil, in which case
// selection changes live only in memory.
func New(run RunFunc, settings SettingsStore, defaultSelection string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if settings == nil {
		settings = newMemorySettings()
	}
	return &Service{
		run:              run,
		settings:         settings,
		defaultSelection: defaultSelection,
		logger:           logger.With(slog.String("component", "dashboard")),
	}
}

// Refresh runs the pipeline and, on success, replaces the snapshot. On failure
// the previous snapshot stays in place. Concurrent calls are serialized.
func (s *Service) Refresh(ctx context.Context) (*model.Snapshot, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	snap, err := s.run(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "refresh failed", slog.String("error", err.Error()))
		return nil, err
	}
	s.snapshot.Store(snap)
	s.logger.InfoContext(ctx, "snapshot replaced",
		slog.String("run_id", snap.RunID),
		slog.Int("countries", len(snap.Countries)))
	return snap, nil
}

// Snapshot returns the current snapshot, or nil before the first successful refresh.
func (s *Service) Snapshot() *model.Snapshot {
	return s.snapshot.Load()
}

func (s *Service) current() (*model.Snapshot, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil, apperrors.NewNoDataError()
	}
	return snap, nil
}

// Selection resolves the countries of interest: the stored override if present,
// else the compiled default.
func (s *Service) Selection(ctx context.Context) (model.Selection, error) {
	raw, ok, err := s.settings.GetSetting(ctx, SelectionKey)
	if err != nil {
		return model.Selection{}, err
	}
	if !ok {
		raw = s.defaultSelection
	}
	return pipeline.ParseSelection(raw), nil
}

// SetSelection stores a new countries-of-interest string.
func (s *Service) SetSelection(ctx context.Context, raw string) (model.Selection, error) {
	if err := s.settings.SetSetting(ctx, SelectionKey, raw); err != nil {
		return model.Selection{}, err
	}
	sel := pipeline.ParseSelection(raw)
	s.logger.InfoContext(ctx, "selection updated", slog.Int("names", len(sel.Names)))
	return sel, nil
}

// View renders Total and the selected countries of the current snapshot.
func (s *Service) View(ctx context.Context) (model.DashboardView, error) {
	snap, err := s.current()
	if err != nil {
		return model.DashboardView{}, err
	}
	sel, err := s.Selection(ctx)
	if err != nil {
		return model.DashboardView{}, err
	}
	return pipeline.BuildDashboardView(snap, sel), nil
}

// TotalView renders the all-rows aggregate.
func (s *Service) TotalView() (model.EntityView, error) {
	snap, err := s.current()
	if err != nil {
		return model.EntityView{}, err
	}
	return pipeline.BuildEntityView(pipeline.TotalTitle, snap.Total), nil
}

// CountryView renders one country, matched ignoring case.
func (s *Service) CountryView(name string) (model.EntityView, error) {
	snap, err := s.current()
	if err != nil {
		return model.EntityView{}, err
	}
	c, ok := pipeline.FindCountry(snap.Countries, name)
	if !ok {
		return model.EntityView{}, apperrors.NewNotFoundError("country " + name)
	}
	return pipeline.BuildEntityView(c.Country, c.Series), nil
}

// Countries lists the country names of the current snapshot.
func (s *Service) Countries() ([]string, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}
	return snap.CountryNames(), nil
}

// ExportRows flattens Total and the current selection for export.
func (s *Service) ExportRows(ctx context.Context) (string, []pipeline.ExportRow, error) {
	snap, err := s.current()
	if err != nil {
		return "", nil, err
	}
	sel, err := s.Selection(ctx)
	if err != nil {
		return "", nil, err
	}
	return snap.RunID, pipeline.BuildExportRows(snap, sel.Names), nil
}

// Start refreshes every interval until ctx is done. Failures are logged and
// the previous snapshot is kept. A non-positive interval disables the loop.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = s.Refresh(ctx)
		}
	}
}

// memorySettings is the in-process SettingsStore used when no store is configured.
type memorySettings struct {
	mu     sync.RWMutex
	values map[string]string
}

func newMemorySettings() *memorySettings {
	return &memorySettings{values: make(map[string]string)}
}

func (m *memorySettings) GetSetting(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memorySettings) SetSetting(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
