package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-covid-pipeline/internal/config"
)

func TestLoggerInjectsTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := newLogger(config.LoggingConfig{Level: "info", Format: "json", Output: "console"}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	ctx := WithTraceID(context.Background(), "abc-123")
	logger.InfoContext(ctx, "refreshed", slog.Int("countries", 3))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "refreshed", entry["msg"])
	assert.Equal(t, "abc-123", entry["trace_id"])
	assert.Equal(t, float64(3), entry["countries"])
}

func TestLoggerLevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := newLogger(config.LoggingConfig{Level: "warn", Format: "text"}, &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.With("component", "api").Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "component=api")
}

func TestLoggerFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pipeline.log")
	var stdout bytes.Buffer
	logger, closer, err := newLogger(config.LoggingConfig{Level: "info", Output: "both", FilePath: path}, &stdout)
	require.NoError(t, err)

	logger.Info("to both")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "to both"))
	assert.Contains(t, stdout.String(), "to both")
}

func TestGetTraceID(t *testing.T) {
	assert.Equal(t, "", GetTraceID(context.Background()))
	assert.Equal(t, "x", GetTraceID(WithTraceID(context.Background(), "x")))
}
