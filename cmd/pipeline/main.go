// Command pipeline runs one refresh and writes Total plus the countries of
// interest to <out-dir>/<run-id>/series.<format>.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go-covid-pipeline/internal/config"
	"go-covid-pipeline/internal/dashboard"
	"go-covid-pipeline/internal/infrastructure"
	"go-covid-pipeline/internal/model"
	"go-covid-pipeline/internal/pipeline"
	"go-covid-pipeline/internal/store"
	"go-covid-pipeline/pkg/utils"
)

type options struct {
	configPath string
	confirmed  string
	deaths     string
	recovered  string
	countries  string
	format     string
	outDir     string
	outFile    string
	db         bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("pipeline", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	fs.StringVar(&opts.confirmed, "confirmed", "", "confirmed cases source (URL or path)")
	fs.StringVar(&opts.deaths, "deaths", "", "deaths source (URL or path)")
	fs.StringVar(&opts.recovered, "recovered", "", "recovered source (URL or path)")
	fs.StringVar(&opts.countries, "countries", "", `countries of interest, e.g. "US;Italy"`)
	fs.StringVar(&opts.format, "format", "", "export format: csv, json or xlsx")
	fs.StringVar(&opts.outDir, "out-dir", "", "base output directory")
	fs.StringVar(&opts.outFile, "out", "", "export file name inside the run directory; its extension picks the format when -format is unset")
	fs.BoolVar(&opts.db, "db", false, "also store the exported points in the sqlite database")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

// apply overrides cfg with every flag that was set.
func (o options) apply(cfg *config.Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Sources.Confirmed, o.confirmed)
	set(&cfg.Sources.Deaths, o.deaths)
	set(&cfg.Sources.Recovered, o.recovered)
	set(&cfg.Export.Format, strings.ToLower(o.format))
	set(&cfg.Export.OutDir, o.outDir)
	if o.db {
		cfg.Export.DB = true
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "pipeline: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	cfg, err := config.Read(opts.configPath)
	if err != nil {
		return err
	}
	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closer, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer closer.Close()

	runOpts := pipeline.Options{
		Fetcher: pipeline.NewSourceFetcher(&http.Client{Timeout: cfg.Sources.FetchTimeout}, logger),
		Logger:  logger,
		Timeout: cfg.Refresh.RunTimeout,
	}

	var db *store.Store
	if cfg.Export.DB {
		db, err = store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer db.Close()
		runOpts.Recorder = db
	}

	snap, err := pipeline.Run(ctx, cfg.SourceSet(), runOpts)
	if err != nil {
		return err
	}

	raw, err := resolveSelection(ctx, opts.countries, db, cfg.DefaultSelection())
	if err != nil {
		return err
	}
	sel := pipeline.ParseSelection(raw)
	rows := pipeline.BuildExportRows(snap, sel.Names)

	om := utils.NewOutputManager(cfg.Export.OutDir)
	fileName := om.FileNameFor(cfg.Export.Format)
	if opts.outFile != "" {
		fileName = opts.outFile
		if ft := om.GetFileType(opts.outFile); opts.format == "" && ft != "unknown" {
			cfg.Export.Format = ft
		}
	}
	path, err := om.GetOutputFilePath(snap.RunID, fileName)
	if err != nil {
		return err
	}
	result, err := pipeline.ExportToFile(path, cfg.Export.Format, snap.RunID, rows)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "exported series",
		slog.String("run_id", snap.RunID),
		slog.String("path", result.Path),
		slog.Int("rows", result.RecordCount))

	if db != nil {
		if _, err := pipeline.SaveToStore(ctx, db, snap.RunID, rows, logger); err != nil {
			return err
		}
	}

	printSummary(stdout, snap.RunID, len(snap.Dates), pipeline.Select(snap.Countries, sel.Names), result.Path)
	return nil
}

// resolveSelection picks the countries-of-interest string: the -countries
// flag, then the override saved in the store, then the configured default.
func resolveSelection(ctx context.Context, flagValue string, db *store.Store, fallback string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if db != nil {
		v, ok, err := db.GetSetting(ctx, dashboard.SelectionKey)
		if err != nil {
			return "", err
		}
		if ok {
			return v, nil
		}
	}
	return fallback, nil
}

func printSummary(w io.Writer, runID string, dates int, selected []model.Selected, path string) {
	fmt.Fprintf(w, "run %s: %d dates\n", runID, dates)
	fmt.Fprintf(w, "  %-20s ok\n", pipeline.TotalTitle)
	for _, s := range selected {
		if s.Series == nil {
			fmt.Fprintf(w, "  %-20s no data\n", s.Name)
			continue
		}
		fmt.Fprintf(w, "  %-20s ok (%s)\n", s.Name, s.Country)
	}
	fmt.Fprintf(w, "wrote %s\n", path)
}
