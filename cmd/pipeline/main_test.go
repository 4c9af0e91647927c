package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-covid-pipeline/internal/config"
	"go-covid-pipeline/internal/dashboard"
	"go-covid-pipeline/internal/store"
)

const (
	confirmedCSV = `Province/State,Country/Region,Lat,Long,1/22/20,1/23/20
,Italy,43,12,0,2
Hubei,China,30,112,444,444
Beijing,China,40,116,14,22
`
	deathsCSV = `Province/State,Country/Region,Lat,Long,1/22/20,1/23/20
,Italy,43,12,0,0
Hubei,China,30,112,17,17
Beijing,China,40,116,0,0
`
	recoveredCSV = `Province/State,Country/Region,Lat,Long,1/22/20,1/23/20
,Italy,43,12,0,0
Hubei,China,30,112,28,28
Beijing,China,40,116,0,0
`
)

func writeSources(t *testing.T) (dir string, args []string) {
	t.Helper()
	dir = t.TempDir()
	files := map[string]string{"confirmed": confirmedCSV, "deaths": deathsCSV, "recovered": recoveredCSV}
	for name, body := range files {
		path := filepath.Join(dir, name+".csv")
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
		args = append(args, "-"+name, path)
	}
	return dir, args
}

func TestParseFlagsApply(t *testing.T) {
	opts, err := parseFlags([]string{"-confirmed", "c.csv", "-format", "XLSX", "-out-dir", "out", "-db"})
	require.NoError(t, err)

	cfg := config.Default()
	opts.apply(&cfg)
	assert.Equal(t, "c.csv", cfg.Sources.Confirmed)
	assert.Contains(t, cfg.Sources.Deaths, "Deaths.csv", "unset flags keep the configured value")
	assert.Equal(t, "xlsx", cfg.Export.Format)
	assert.Equal(t, "out", cfg.Export.OutDir)
	assert.True(t, cfg.Export.DB)

	_, err = parseFlags([]string{"-nope"})
	assert.Error(t, err)
}

func TestRunWritesCSV(t *testing.T) {
	t.Setenv("COVID_LOGGING_LEVEL", "error")
	dir, args := writeSources(t)
	outDir := filepath.Join(dir, "out")
	args = append(args, "-out-dir", outDir, "-countries", "china;Atlantis")

	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), args, &stdout))

	summary := stdout.String()
	assert.Contains(t, summary, "2 dates")
	assert.Regexp(t, `china\s+ok \(China\)`, summary)
	assert.Regexp(t, `Atlantis\s+no data`, summary)

	matches, err := filepath.Glob(filepath.Join(outDir, "*", "series.csv"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	f, err := os.Open(matches[0])
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	// header + Total and China, two dates each
	require.Len(t, records, 5)
	assert.Equal(t, []string{"Total", "2020-01-22", "458", "17", "28", "413"}, records[1][:6])
	assert.True(t, strings.HasPrefix(records[1][6], "0.3777"), records[1][6])
	assert.Equal(t, "China", records[3][0])
	assert.Equal(t, "466", records[4][2])
}

func TestRunStoresPoints(t *testing.T) {
	t.Setenv("COVID_LOGGING_LEVEL", "error")
	dir, args := writeSources(t)
	dbPath := filepath.Join(dir, "pipeline.db")
	t.Setenv("COVID_STORE_PATH", dbPath)
	args = append(args, "-out-dir", filepath.Join(dir, "out"), "-format", "json", "-countries", "Italy", "-db")

	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), args, &stdout))

	runID := strings.Fields(strings.TrimPrefix(stdout.String(), "run "))[0]
	runID = strings.TrimSuffix(runID, ":")

	db, err := store.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	matches, err := filepath.Glob(filepath.Join(dir, "out", runID, "series.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	n, err := db.CountPoints(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, 4, n, "Total and Italy, two dates each")

	rec, err := db.GetRun(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, "completed", rec.Status)
}

func TestRunUsesStoredSelection(t *testing.T) {
	t.Setenv("COVID_LOGGING_LEVEL", "error")
	dir, args := writeSources(t)
	dbPath := filepath.Join(dir, "pipeline.db")
	t.Setenv("COVID_STORE_PATH", dbPath)

	db, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.SetSetting(context.Background(), dashboard.SelectionKey, "italy"))
	require.NoError(t, db.Close())

	args = append(args, "-out-dir", filepath.Join(dir, "out"), "-db")
	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), args, &stdout))

	summary := stdout.String()
	assert.Regexp(t, `italy\s+ok \(Italy\)`, summary)
	assert.NotContains(t, summary, "China", "the stored override replaces the default")
}

func TestRunFlagOverridesInvalidFileFormat(t *testing.T) {
	t.Setenv("COVID_LOGGING_LEVEL", "error")
	dir, args := writeSources(t)
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("export:\n  format: pdf\n"), 0644))

	base := append([]string{"-config", cfgPath, "-out-dir", filepath.Join(dir, "out"), "-countries", "Italy"}, args...)
	assert.Error(t, run(context.Background(), base, &bytes.Buffer{}), "pdf is not an export format")

	require.NoError(t, run(context.Background(), append(base, "-format", "csv"), &bytes.Buffer{}))
	matches, err := filepath.Glob(filepath.Join(dir, "out", "*", "series.csv"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestRunFormatFromFileName(t *testing.T) {
	t.Setenv("COVID_LOGGING_LEVEL", "error")
	dir, args := writeSources(t)
	args = append(args, "-out-dir", filepath.Join(dir, "out"), "-out", "italy.xlsx", "-countries", "Italy")

	require.NoError(t, run(context.Background(), args, &bytes.Buffer{}))

	matches, err := filepath.Glob(filepath.Join(dir, "out", "*", "italy.xlsx"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	head := make([]byte, 2)
	f, err := os.Open(matches[0])
	require.NoError(t, err)
	defer f.Close()
	_, err = f.Read(head)
	require.NoError(t, err)
	assert.Equal(t, "PK", string(head), "xlsx is a zip archive")
}

func TestRunFailsOnMissingSource(t *testing.T) {
	t.Setenv("COVID_LOGGING_LEVEL", "error")
	dir, args := writeSources(t)
	args = append(args, "-deaths", filepath.Join(dir, "missing.csv"), "-out-dir", filepath.Join(dir, "out"))

	err := run(context.Background(), args, &bytes.Buffer{})
	assert.Error(t, err)
}
