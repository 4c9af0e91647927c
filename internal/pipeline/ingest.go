package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	apperrors "go-covid-pipeline/internal/errors"
	"go-covid-pipeline/internal/model"
)

// DefaultFetchTimeout bounds one HTTP request when the caller does not supply a client.
const DefaultFetchTimeout = 30 * time.Second

// Fetcher retrieves the raw text of a source file.
type Fetcher interface {
	Fetch(ctx context.Context, src model.Source) ([]byte, error)
}

// SourceFetcher reads http(s) locations over the network and anything else from disk.
type SourceFetcher struct {
	client *http.Client
	logger *slog.Logger
}

// NewSourceFetcher creates a fetcher. A nil client gets DefaultFetchTimeout.
func NewSourceFetcher(client *http.Client, logger *slog.Logger) *SourceFetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SourceFetcher{client: client, logger: logger}
}

// Fetch returns the whole body of src. Any retrieval problem is a FetchFailure.
func (f *SourceFetcher) Fetch(ctx context.Context, src model.Source) ([]byte, error) {
	start := time.Now()
	var (
		body []byte
		err  error
	)
	if isRemote(src.Location) {
		body, err = f.fetchHTTP(ctx, src)
	} else {
		body, err = f.fetchFile(ctx, src)
	}
	if err != nil {
		f.logger.ErrorContext(ctx, "fetch failed",
			slog.String("metric", src.Metric),
			slog.String("location", src.Location),
			slog.String("error", err.Error()))
		return nil, err
	}
	f.logger.DebugContext(ctx, "fetched source",
		slog.String("metric", src.Metric),
		slog.String("location", src.Location),
		slog.Int("bytes", len(body)),
		slog.Duration("duration", time.Since(start)))
	return body, nil
}

func (f *SourceFetcher) fetchHTTP(ctx context.Context, src model.Source) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.Location, nil)
	if err != nil {
		return nil, fetchError(src, "build request", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fetchError(src, "GET", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fetchError(src, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil).
			WithContext("status", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fetchError(src, "read body", err)
	}
	return body, nil
}

func (f *SourceFetcher) fetchFile(ctx context.Context, src model.Source) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fetchError(src, "cancelled", err)
	}
	body, err := os.ReadFile(src.Location)
	if err != nil {
		return nil, fetchError(src, "open file", err)
	}
	return body, nil
}

func isRemote(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

func fetchError(src model.Source, msg string, cause error) *apperrors.AppError {
	return apperrors.NewFetchError(fmt.Sprintf("%s %s: %s", src.Metric, src.Location, msg), cause).
		WithContext("metric", src.Metric).
		WithContext("location", src.Location)
}

// LoadDataset fetches, parses and aggregates one source.
func LoadDataset(ctx context.Context, f Fetcher, src model.Source) (model.DatasetResult, error) {
	return loadTracked(ctx, f, NewTracker("", nil), src)
}

// tagSource records which file a parse or aggregate error came from.
func tagSource(err error, src model.Source) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.WithContext("metric", src.Metric).WithContext("location", src.Location)
	}
	return fmt.Errorf("%s: %w", src.Metric, err)
}
