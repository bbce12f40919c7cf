package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alexanderramin/tremor/internal/cli"
	"github.com/alexanderramin/tremor/internal/config"
	"github.com/alexanderramin/tremor/internal/db"
	"github.com/alexanderramin/tremor/internal/repository"
	"github.com/alexanderramin/tremor/internal/service"
	"github.com/alexanderramin/tremor/internal/tracker"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	blobs := repository.NewSQLiteBlobRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	var observers []service.UseCaseObserver
	if cfg.LogUseCases {
		observers = append(observers, service.NewSlogUseCaseObserver(logger))
	}

	app := &cli.App{
		AnalysisOptions: cfg.AnalysisOptions(),
		Logger:          logger,
		MetricsAddr:     cfg.MetricsAddr,
	}

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics, err := service.NewMetricsUseCaseObserver(reg)
		if err != nil {
			return fmt.Errorf("registering metrics: %w", err)
		}
		observers = append(observers, metrics)
		app.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	store := service.NewSessionStore(blobs, uow, observers...)
	app.Sessions = store
	app.Sync = service.NewSyncService(store, blobs, uow, cfg.SyncMaxReadings, observers...)
	app.Reports = service.NewReportService(store, cfg.ChartPoints, observers...)
	app.NewTracker = func() *tracker.Tracker {
		return tracker.New(store,
			tracker.WithBufferCap(cfg.BufferCap),
			tracker.WithNeutralIndex(cfg.NeutralIndex),
			tracker.WithAnalysisOptions(cfg.AnalysisOptions()),
			tracker.WithLogger(logger),
		)
	}

	// Samples must be piped in; a terminal on stdin means nobody is streaming.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}
