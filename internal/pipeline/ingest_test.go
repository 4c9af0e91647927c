package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "go-covid-pipeline/internal/errors"
	"go-covid-pipeline/internal/model"
)

func TestSourceFetcherHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/confirmed.csv":
			w.Write([]byte(sampleConfirmed))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	f := NewSourceFetcher(server.Client(), nil)

	body, err := f.Fetch(context.Background(), model.Source{Metric: model.SourceConfirmed, Location: server.URL + "/confirmed.csv"})
	require.NoError(t, err)
	assert.Equal(t, sampleConfirmed, string(body))

	_, err = f.Fetch(context.Background(), model.Source{Metric: model.SourceDeaths, Location: server.URL + "/missing.csv"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrFetchFailure))

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.Context["status"])
	assert.Equal(t, model.SourceDeaths, appErr.Context["metric"])
}

func TestSourceFetcherFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "confirmed.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfirmed), 0o644))

	f := NewSourceFetcher(nil, nil)
	body, err := f.Fetch(context.Background(), model.Source{Metric: model.SourceConfirmed, Location: path})
	require.NoError(t, err)
	assert.Equal(t, sampleConfirmed, string(body))

	_, err = f.Fetch(context.Background(), model.Source{Location: filepath.Join(t.TempDir(), "nope.csv")})
	assert.True(t, errors.Is(err, apperrors.ErrFetchFailure))
}

func TestSourceFetcherCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSourceFetcher(nil, nil).Fetch(ctx, model.Source{Location: "http://127.0.0.1:1/x.csv"})
	assert.True(t, errors.Is(err, apperrors.ErrFetchFailure))
}

func TestLoadDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "confirmed.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfirmed), 0o644))

	res, err := LoadDataset(context.Background(), NewSourceFetcher(nil, nil), model.Source{Metric: model.SourceConfirmed, Location: path})
	require.NoError(t, err)
	assert.Equal(t, model.SourceConfirmed, res.Metric)
	assert.Len(t, res.PerCountry, 3)

	bad := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("Country/Region,1/22/20\nItaly,x\n"), 0o644))
	_, err = LoadDataset(context.Background(), NewSourceFetcher(nil, nil), model.Source{Metric: model.SourceDeaths, Location: bad})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrParseFailure))

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, bad, appErr.Context["location"])
}
