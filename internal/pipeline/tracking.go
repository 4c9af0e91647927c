package pipeline

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"go-covid-pipeline/internal/model"
)

// Stage names.
const (
	StageFetch     = "fetch"
	StageParse     = "parse"
	StageAggregate = "aggregate"
	StageDerive    = "derive"
)

// Stage statuses.
const (
	StageRunning   = "running"
	StageCompleted = "completed"
	StageFailed    = "failed"
)

// Metrics holds the prometheus collectors of the pipeline.
type Metrics struct {
	Runs          *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	RowsParsed    *prometheus.CounterVec
	Countries     prometheus.Gauge
	Dates         prometheus.Gauge
	LastSuccess   prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg. A nil reg skips
// registration, which keeps tests independent of the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "covid",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Pipeline runs by final status.",
		}, []string{"status"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "covid",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage", "source"}),
		RowsParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "covid",
			Subsystem: "pipeline",
			Name:      "rows_parsed_total",
			Help:      "Rows read from each source file.",
		}, []string{"source"}),
		Countries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "covid",
			Subsystem: "snapshot",
			Name:      "countries",
			Help:      "Countries in the current snapshot.",
		}),
		Dates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "covid",
			Subsystem: "snapshot",
			Name:      "dates",
			Help:      "Dates in the current snapshot.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "covid",
			Subsystem: "pipeline",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Runs, m.StageDuration, m.RowsParsed, m.Countries, m.Dates, m.LastSuccess)
	}
	return m
}

// Tracker records the stages of one run. It is safe for concurrent use by the
// fetch goroutines.
type Tracker struct {
	RunID   string
	metrics *Metrics

	mu     sync.Mutex
	record model.RunRecord
}

// NewTracker starts tracking a run. metrics may be nil.
func NewTracker(runID string, metrics *Metrics) *Tracker {
	return &Tracker{
		RunID:   runID,
		metrics: metrics,
		record: model.RunRecord{
			ID:        runID,
			Status:    model.RunStatusRunning,
			StartedAt: time.Now().UTC(),
		},
	}
}

// StartStage opens a stage and returns its index for EndStage.
func (t *Tracker) StartStage(stage, source string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.record.Stages = append(t.record.Stages, model.StageMetrics{
		StageName: stage,
		Source:    source,
		StartTime: time.Now(),
		Status:    StageRunning,
	})
	return len(t.record.Stages) - 1
}

// EndStage closes the stage opened at idx.
func (t *Tracker) EndStage(idx int, records int64, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if idx < 0 || idx >= len(t.record.Stages) {
		return
	}
	st := &t.record.Stages[idx]
	st.EndTime = time.Now()
	st.Duration = st.EndTime.Sub(st.StartTime)
	st.RecordsProcessed = records
	st.Status = StageCompleted
	if err != nil {
		st.Status = StageFailed
		st.Error = err.Error()
	}

	if t.metrics != nil {
		t.metrics.StageDuration.WithLabelValues(st.StageName, st.Source).Observe(st.Duration.Seconds())
		if st.StageName == StageParse && err == nil {
			t.metrics.RowsParsed.WithLabelValues(st.Source).Add(float64(records))
		}
	}
}

// Complete marks the run successful.
func (t *Tracker) Complete(snap *model.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now().UTC()
	t.record.Status = model.RunStatusCompleted
	t.record.FinishedAt = &now
	t.record.Countries = len(snap.Countries)
	t.record.Dates = len(snap.Dates)

	if t.metrics != nil {
		t.metrics.Runs.WithLabelValues(model.RunStatusCompleted).Inc()
		t.metrics.Countries.Set(float64(len(snap.Countries)))
		t.metrics.Dates.Set(float64(len(snap.Dates)))
		t.metrics.LastSuccess.Set(float64(now.Unix()))
	}
}

// Fail marks the run failed.
func (t *Tracker) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now().UTC()
	t.record.Status = model.RunStatusFailed
	t.record.FinishedAt = &now
	if err != nil {
		t.record.Error = err.Error()
	}
	if t.metrics != nil {
		t.metrics.Runs.WithLabelValues(model.RunStatusFailed).Inc()
	}
}

// Record returns a copy of the run record.
func (t *Tracker) Record() model.RunRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec := t.record
	rec.Stages = append([]model.StageMetrics(nil), t.record.Stages...)
	return rec
}
