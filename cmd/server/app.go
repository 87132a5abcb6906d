package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/phrazzld/ledger-reports/internal/api"
	"github.com/phrazzld/ledger-reports/internal/config"
	"github.com/phrazzld/ledger-reports/internal/report"
	"github.com/phrazzld/ledger-reports/internal/task"
)

// application holds the shared dependencies of the server and releases
// them on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	store      task.Store
	reports    *report.Generator
	broker     *task.Broker
	dispatcher *task.Dispatcher
	runner     *task.Runner
	status     *task.StatusReporter
	handler    http.Handler
}

// newApplication wires every component. Workers are not started until Run.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	app.store, app.db, err = openTaskStore(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open task store: %w", err)
	}

	app.reports, err = newReportGenerator(cfg.Reports, logger)
	if err != nil {
		app.cleanup()
		return nil, err
	}

	app.broker = task.NewBroker(cfg.Task.QueueSize, logger)
	app.dispatcher = task.NewDispatcher(
		app.store,
		app.broker,
		app.reports,
		task.DispatcherConfig{RetryDelay: cfg.Reports.RetryDelay},
		logger,
	)
	app.runner = task.NewRunner(
		app.broker,
		app.dispatcher,
		app.store,
		task.RunnerConfig{
			WorkerCount:    cfg.Task.WorkerCount,
			RecoverOnStart: cfg.Task.RecoverOnStart,
		},
		logger,
	)
	app.status = task.NewStatusReporter(app.store)

	app.handler = api.NewRouter(
		api.RouterConfig{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Logger:         logger,
		},
		api.NewReportHandler(app.dispatcher, app.status, app.store, logger),
	)

	logger.Info("application initialized")
	return app, nil
}

func newReportGenerator(cfg config.ReportsConfig, logger *slog.Logger) (*report.Generator, error) {
	g, err := report.NewGenerator(report.GeneratorConfig{
		Input:          os.DirFS(cfg.InputDir),
		OutputDir:      cfg.OutputDir,
		Suffix:         cfg.FileSuffix,
		MaxConcurrency: cfg.MaxConcurrency,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create report generator: %w", err)
	}
	return g, nil
}

// Run starts the workers and serves HTTP until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	if err := app.runner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}

	if err := app.startHTTPServer(ctx, app.handler); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops the workers before closing the broker they read from, then
// closes the database.
func (app *application) cleanup() {
	if app.runner != nil {
		app.runner.Stop()
	}
	if app.broker != nil {
		app.broker.Close()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
