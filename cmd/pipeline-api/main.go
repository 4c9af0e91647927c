// Command pipeline-api serves the COVID dashboard API and refreshes the data
// on a fixed interval.
//
// @title COVID Time-Series Pipeline API
// @version 1.0
// @description Aggregated and derived COVID-19 series per country, ready for charting.
// @host localhost:8080
// @BasePath /api/v1
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"go-covid-pipeline/internal/api"
	"go-covid-pipeline/internal/config"
	"go-covid-pipeline/internal/dashboard"
	"go-covid-pipeline/internal/infrastructure"
	"go-covid-pipeline/internal/model"
	"go-covid-pipeline/internal/pipeline"
	"go-covid-pipeline/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "pipeline-api: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, closer, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer closer.Close()

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := pipeline.NewMetrics(registry)

	sources := cfg.SourceSet()
	runOpts := pipeline.Options{
		Fetcher:  pipeline.NewSourceFetcher(&http.Client{Timeout: cfg.Sources.FetchTimeout}, logger),
		Recorder: db,
		Metrics:  metrics,
		Logger:   logger,
		Timeout:  cfg.Refresh.RunTimeout,
	}
	svc := dashboard.New(func(ctx context.Context) (*model.Snapshot, error) {
		return pipeline.Run(ctx, sources, runOpts)
	}, db, cfg.DefaultSelection(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The server starts without data if the first refresh fails; the
	// dashboard answers 503 until a later refresh succeeds.
	if _, err := svc.Refresh(ctx); err != nil {
		logger.ErrorContext(ctx, "initial refresh failed", slog.String("error", err.Error()))
	}
	go svc.Start(ctx, cfg.Refresh.Interval)

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.NewRouter(api.Dependencies{
			Dashboard: svc,
			Runs:      db,
			DB:        db,
			Gatherer:  registry,
			RateLimit: cfg.Server.RateLimit,
			Logger:    logger,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
