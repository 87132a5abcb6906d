package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/ledger-reports/internal/config"
	"github.com/phrazzld/ledger-reports/internal/platform/postgres"
	"github.com/phrazzld/ledger-reports/internal/platform/sqlite"
	"github.com/phrazzld/ledger-reports/internal/task"
)

// Database drivers accepted in database.driver.
const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
	driverMemory   = "memory"
)

var errNoDatabase = errors.New("the memory driver has no database to migrate")

// openDatabase connects to the configured SQL database. It returns a nil
// *sql.DB for the memory driver.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Driver {
	case driverPostgres:
		db, err = postgres.Open(ctx, cfg.URL)
	case driverSQLite:
		db, err = sqlite.Open(ctx, cfg.URL)
	case driverMemory:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("database connection established", "driver", cfg.Driver)
	return db, nil
}

// migrateDatabase runs a migration command with the driver's embedded migrations.
func migrateDatabase(ctx context.Context, driver string, db *sql.DB, command string, logger *slog.Logger) error {
	switch driver {
	case driverPostgres:
		return postgres.Migrate(ctx, db, command, logger)
	case driverSQLite:
		return sqlite.Migrate(ctx, db, command, logger)
	case driverMemory:
		return errNoDatabase
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}
}

// newTaskStore returns the task store for driver over db.
func newTaskStore(driver string, db *sql.DB) (task.Store, error) {
	switch driver {
	case driverPostgres:
		return postgres.NewTaskStore(db), nil
	case driverSQLite:
		return sqlite.NewTaskStore(db), nil
	case driverMemory:
		return task.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// openTaskStore connects, applies pending migrations and returns the store.
// The returned *sql.DB is nil for the memory driver; the caller closes it
// otherwise.
func openTaskStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (task.Store, *sql.DB, error) {
	db, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	if db != nil {
		if err := migrateDatabase(ctx, cfg.Driver, db, "up", logger); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	s, err := newTaskStore(cfg.Driver, db)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, nil, err
	}
	return s, db, nil
}
