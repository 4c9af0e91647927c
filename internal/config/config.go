package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	apperrors "go-covid-pipeline/internal/errors"
	"go-covid-pipeline/internal/model"
)

// EnvPrefix prefixes every environment variable, e.g. COVID_SERVER_PORT.
const EnvPrefix = "COVID"

const csseBase = "https://raw.githubusercontent.com/CSSEGISandData/COVID-19/master/csse_covid_19_data/csse_covid_19_time_series/"

// DefaultCountries is the compiled countries-of-interest list used until a
// selection is stored.
var DefaultCountries = []string{"US", "Italy", "Spain", "Germany", "China"}

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" split_words:"true"`
	Logging   LoggingConfig   `yaml:"logging" split_words:"true"`
	Sources   SourcesConfig   `yaml:"sources" split_words:"true"`
	Selection SelectionConfig `yaml:"selection" split_words:"true"`
	Store     StoreConfig     `yaml:"store" split_words:"true"`
	Refresh   RefreshConfig   `yaml:"refresh" split_words:"true"`
	Export    ExportConfig    `yaml:"export" split_words:"true"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" split_words:"true"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" split_words:"true"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" split_words:"true"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" split_words:"true"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" split_words:"true"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" split_words:"true"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" split_words:"true"`
	RPS     float64 `yaml:"rps" split_words:"true"`
	Burst   int     `yaml:"burst" split_words:"true"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" split_words:"true"`
	Format   string `yaml:"format" split_words:"true"` // json or text
	Output   string `yaml:"output" split_words:"true"` // console, file or both
	FilePath string `yaml:"file_path" split_words:"true"`
}

// SourcesConfig names the three input files. Each is a URL or a local path.
type SourcesConfig struct {
	Confirmed    string        `yaml:"confirmed" split_words:"true"`
	Deaths       string        `yaml:"deaths" split_words:"true"`
	Recovered    string        `yaml:"recovered" split_words:"true"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" split_words:"true"`
}

// SelectionConfig holds the compiled default countries of interest.
type SelectionConfig struct {
	Default []string `yaml:"default" split_words:"true"`
}

// StoreConfig locates the sqlite database.
type StoreConfig struct {
	Path string `yaml:"path" split_words:"true"`
}

// RefreshConfig controls the periodic refresh of the server.
type RefreshConfig struct {
	Interval   time.Duration `yaml:"interval" split_words:"true"` // 0 disables
	RunTimeout time.Duration `yaml:"run_timeout" split_words:"true"`
}

// ExportConfig controls the CLI export.
type ExportConfig struct {
	Format string `yaml:"format" split_words:"true"`
	OutDir string `yaml:"out_dir" split_words:"true"`
	DB     bool   `yaml:"db" split_words:"true"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit:       RateLimitConfig{Enabled: true, RPS: 20, Burst: 40},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/pipeline.log",
		},
		Sources: SourcesConfig{
			Confirmed:    csseBase + "time_series_19-covid-Confirmed.csv",
			Deaths:       csseBase + "time_series_19-covid-Deaths.csv",
			Recovered:    csseBase + "time_series_19-covid-Recovered.csv",
			FetchTimeout: 30 * time.Second,
		},
		Selection: SelectionConfig{Default: append([]string(nil), DefaultCountries...)},
		Store:     StoreConfig{Path: "pipeline.db"},
		Refresh:   RefreshConfig{Interval: time.Hour, RunTimeout: 2 * time.Minute},
		Export:    ExportConfig{Format: "csv", OutDir: "output"},
	}
}

// Load builds the configuration in three layers: built-in defaults, then the
// YAML file at path (if path is non-empty), then COVID_* environment variables.
// The result is validated.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read layers the configuration like Load but leaves validation to the
// caller, for callers that apply further overrides first.
func Read(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, apperrors.NewConfigError("read config file", err).WithContext("path", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, apperrors.NewConfigError("parse config file", err).WithContext("path", path)
		}
	}

	// Unset variables leave fields untouched; no field has a default tag.
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, apperrors.NewConfigError("load config from env", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for values the services cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return apperrors.NewConfigError(fmt.Sprintf("invalid server port %d", c.Server.Port), nil)
	}
	for name, loc := range map[string]string{
		model.SourceConfirmed: c.Sources.Confirmed,
		model.SourceDeaths:    c.Sources.Deaths,
		model.SourceRecovered: c.Sources.Recovered,
	} {
		if strings.TrimSpace(loc) == "" {
			return apperrors.NewConfigError(fmt.Sprintf("source %s has no location", name), nil)
		}
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return apperrors.NewConfigError(fmt.Sprintf("invalid log format %q", c.Logging.Format), nil)
	}
	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
	default:
		return apperrors.NewConfigError(fmt.Sprintf("invalid log output %q", c.Logging.Output), nil)
	}
	switch strings.ToLower(c.Export.Format) {
	case "csv", "json", "xlsx":
	default:
		return apperrors.NewConfigError(fmt.Sprintf("invalid export format %q", c.Export.Format), nil)
	}
	if c.Refresh.Interval < 0 {
		return apperrors.NewConfigError("refresh interval must not be negative", nil)
	}
	if c.Server.RateLimit.Enabled && c.Server.RateLimit.RPS <= 0 {
		return apperrors.NewConfigError("rate limit rps must be positive", nil)
	}
	return nil
}

// SourceSet returns the configured input files.
func (c *Config) SourceSet() model.SourceSet {
	return model.NewSourceSet(c.Sources.Confirmed, c.Sources.Deaths, c.Sources.Recovered)
}

// DefaultSelection joins the compiled default list into a selection string.
func (c *Config) DefaultSelection() string {
	return strings.Join(c.Selection.Default, ";")
}
