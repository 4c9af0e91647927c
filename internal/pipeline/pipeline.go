package pipeline

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"go-covid-pipeline/internal/model"
)

// RunRecorder persists run history. Implemented by the store.
type RunRecorder interface {
	SaveRun(ctx context.Context, rec model.RunRecord) error
	UpdateRun(ctx context.Context, rec model.RunRecord) error
}

// Options configures a run. Zero values are usable.
type Options struct {
	Fetcher  Fetcher
	Recorder RunRecorder
	Metrics  *Metrics
	Logger   *slog.Logger
	// Timeout bounds the whole run. Zero means no limit beyond ctx.
	Timeout time.Duration
}

// Run fetches the three sources concurrently, aggregates and derives them, and
// returns a new snapshot. A failure in any source fails the whole run; nothing
// is retried.
func Run(ctx context.Context, sources model.SourceSet, opts Options) (snap *model.Snapshot, err error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = NewSourceFetcher(nil, logger)
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	runID := uuid.New().String()
	logger = logger.With(slog.String("run_id", runID))
	tracker := NewTracker(runID, opts.Metrics)
	start := time.Now()
	logger.InfoContext(ctx, "pipeline run started")

	if opts.Recorder != nil {
		if rerr := opts.Recorder.SaveRun(ctx, tracker.Record()); rerr != nil {
			logger.WarnContext(ctx, "failed to save run record", slog.String("error", rerr.Error()))
		}
	}
	defer func() {
		if err != nil {
			tracker.Fail(err)
			logger.ErrorContext(ctx, "pipeline run failed", slog.String("error", err.Error()))
		} else {
			tracker.Complete(snap)
			logger.InfoContext(ctx, "pipeline run completed",
				slog.Int("countries", len(snap.Countries)),
				slog.Int("dates", len(snap.Dates)),
				slog.Duration("duration", time.Since(start)))
		}
		if opts.Recorder != nil {
			// The run context may already be cancelled; the history entry still matters.
			if rerr := opts.Recorder.UpdateRun(context.WithoutCancel(ctx), tracker.Record()); rerr != nil {
				logger.WarnContext(ctx, "failed to update run record", slog.String("error", rerr.Error()))
			}
		}
	}()

	srcs := sources.All()
	results := make([]model.DatasetResult, len(srcs))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range srcs {
		i, src := i, src
		g.Go(func() error {
			res, err := loadTracked(gctx, fetcher, tracker, src)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	idx := tracker.StartStage(StageDerive, "")
	total, countries, err := DeriveAll(results[0], results[1], results[2])
	tracker.EndStage(idx, int64(len(countries)), err)
	if err != nil {
		return nil, err
	}

	return &model.Snapshot{
		RunID:     runID,
		FetchedAt: time.Now().UTC(),
		Dates:     results[0].Dates,
		Total:     total,
		Countries: countries,
	}, nil
}

// loadTracked is LoadDataset with one tracker stage per step.
func loadTracked(ctx context.Context, f Fetcher, t *Tracker, src model.Source) (model.DatasetResult, error) {
	idx := t.StartStage(StageFetch, src.Metric)
	body, err := f.Fetch(ctx, src)
	t.EndStage(idx, int64(len(body)), err)
	if err != nil {
		return model.DatasetResult{}, err
	}

	idx = t.StartStage(StageParse, src.Metric)
	table, err := ParseTable(bytes.NewReader(body))
	t.EndStage(idx, int64(len(table.Rows)), err)
	if err != nil {
		return model.DatasetResult{}, tagSource(err, src)
	}

	idx = t.StartStage(StageAggregate, src.Metric)
	result, err := Aggregate(table)
	t.EndStage(idx, int64(len(result.PerCountry)), err)
	if err != nil {
		return model.DatasetResult{}, tagSource(err, src)
	}
	result.Metric = src.Metric
	return result, nil
}
