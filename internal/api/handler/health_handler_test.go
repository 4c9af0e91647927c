package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-covid-pipeline/internal/model"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type staticSnapshot struct{ snap *model.Snapshot }

func (s staticSnapshot) Snapshot() *model.Snapshot { return s.snap }

func TestHealth(t *testing.T) {
	fetched := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("database is locked") })

	tests := []struct {
		name       string
		db         Pinger
		snap       *model.Snapshot
		wantStatus int
		want       HealthResponse
	}{
		{
			name:       "no store, no data",
			wantStatus: http.StatusOK,
			want:       HealthResponse{Status: "ok", Database: "disabled"},
		},
		{
			name:       "store up with data",
			db:         ok,
			snap:       &model.Snapshot{RunID: "r1", FetchedAt: fetched},
			wantStatus: http.StatusOK,
			want:       HealthResponse{Status: "ok", Database: "ok", HasData: true, RunID: "r1", FetchedAt: &fetched},
		},
		{
			name:       "store down",
			db:         down,
			wantStatus: http.StatusServiceUnavailable,
			want:       HealthResponse{Status: "degraded", Database: "database is locked"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(Health(tt.db, staticSnapshot{tt.snap}), http.MethodGet, "/health", "")
			require.Equal(t, tt.wantStatus, rec.Code)

			var got HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.want.Status, got.Status)
			assert.Equal(t, tt.want.Database, got.Database)
			assert.Equal(t, tt.want.HasData, got.HasData)
			assert.Equal(t, tt.want.RunID, got.RunID)
			if tt.want.FetchedAt != nil {
				require.NotNil(t, got.FetchedAt)
				assert.True(t, tt.want.FetchedAt.Equal(*got.FetchedAt))
			}
		})
	}
}
