package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "go-covid-pipeline/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Contains(t, cfg.Sources.Confirmed, "Confirmed.csv")
	assert.Equal(t, "US;Italy;Spain;Germany;China", cfg.DefaultSelection())
	assert.Equal(t, time.Hour, cfg.Refresh.Interval)

	set := cfg.SourceSet()
	assert.Equal(t, cfg.Sources.Deaths, set.Deaths.Location)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
sources:
  confirmed: data/confirmed.csv
selection:
  default: [France, "Korea, South"]
refresh:
  interval: 10m
`), 0o644))

	t.Setenv("COVID_SERVER_PORT", "9100")
	t.Setenv("COVID_LOGGING_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port, "env wins over file")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "data/confirmed.csv", cfg.Sources.Confirmed)
	assert.Contains(t, cfg.Sources.Deaths, "Deaths.csv", "unset fields keep defaults")
	assert.Equal(t, "France;Korea, South", cfg.DefaultSelection())
	assert.Equal(t, 10*time.Minute, cfg.Refresh.Interval)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, apperrors.ErrConfig))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("server: [1"), 0o644))
	_, err = Load(bad)
	assert.True(t, errors.Is(err, apperrors.ErrConfig))

	t.Setenv("COVID_SERVER_PORT", "not-a-number")
	_, err = Load("")
	assert.True(t, errors.Is(err, apperrors.ErrConfig))
}

func TestReadLeavesValidationToCaller(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("export:\n  format: pdf\n"), 0o644))

	_, err := Load(path)
	assert.True(t, errors.Is(err, apperrors.ErrConfig))

	cfg, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "pdf", cfg.Export.Format)

	cfg.Export.Format = "csv"
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"empty source", func(c *Config) { c.Sources.Recovered = " " }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"bad log output", func(c *Config) { c.Logging.Output = "syslog" }},
		{"bad export format", func(c *Config) { c.Export.Format = "pdf" }},
		{"negative interval", func(c *Config) { c.Refresh.Interval = -time.Second }},
		{"zero rps", func(c *Config) { c.Server.RateLimit.RPS = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := Default()
	assert.NoError(t, cfg.Validate())
}
