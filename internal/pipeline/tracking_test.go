package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-covid-pipeline/internal/model"
)

func TestTrackerStages(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	tr := NewTracker("run-1", metrics)

	fetch := tr.StartStage(StageFetch, model.SourceConfirmed)
	parse := tr.StartStage(StageParse, model.SourceConfirmed)
	tr.EndStage(fetch, 100, nil)
	tr.EndStage(parse, 4, nil)
	failed := tr.StartStage(StageParse, model.SourceDeaths)
	tr.EndStage(failed, 0, errors.New("bad row"))
	tr.EndStage(99, 0, nil) // ignored

	rec := tr.Record()
	assert.Equal(t, "run-1", rec.ID)
	assert.Equal(t, model.RunStatusRunning, rec.Status)
	require.Len(t, rec.Stages, 3)
	assert.Equal(t, StageCompleted, rec.Stages[0].Status)
	assert.Equal(t, int64(4), rec.Stages[1].RecordsProcessed)
	assert.Equal(t, StageFailed, rec.Stages[2].Status)
	assert.Equal(t, "bad row", rec.Stages[2].Error)

	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.RowsParsed.WithLabelValues(model.SourceConfirmed)))
}

func TestTrackerCompleteAndFail(t *testing.T) {
	metrics := NewMetrics(nil)

	ok := NewTracker("ok", metrics)
	ok.Complete(&model.Snapshot{
		Dates:     []time.Time{day(1, 22), day(1, 23)},
		Countries: []model.CountryDerived{{Country: "Italy"}},
	})
	rec := ok.Record()
	assert.Equal(t, model.RunStatusCompleted, rec.Status)
	require.NotNil(t, rec.FinishedAt)
	assert.Equal(t, 1, rec.Countries)
	assert.Equal(t, 2, rec.Dates)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Countries))

	failed := NewTracker("failed", metrics)
	failed.Fail(errors.New("fetch failure"))
	rec = failed.Record()
	assert.Equal(t, model.RunStatusFailed, rec.Status)
	assert.Equal(t, "fetch failure", rec.Error)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Runs.WithLabelValues(model.RunStatusCompleted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Runs.WithLabelValues(model.RunStatusFailed)))
}
