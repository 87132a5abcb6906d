// Package migrate applies embedded goose migrations to a database.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
)

// TableName is the goose version table.
const TableName = "schema_migrations"

// Dir is the directory inside a migrations filesystem holding the .sql files.
const Dir = "migrations"

// Goose dialects used by this module.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

// Commands accepted by Run.
var Commands = []string{"up", "down", "reset", "status", "version"}

// goose keeps its dialect, base filesystem and logger in package globals.
var mu sync.Mutex

// Run executes a goose command against db using the migrations in fsys.
func Run(ctx context.Context, db *sql.DB, dialect string, fsys fs.FS, command string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With(
		"correlation_id", uuid.New().String(),
		"component", "migrations",
		"dialect", dialect,
		"command", command,
	)

	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(&slogGooseLogger{logger: log})
	goose.SetTableName(TableName)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	start := time.Now()
	log.Info("starting migration command")

	var err error
	switch command {
	case "up":
		err = goose.UpContext(ctx, db, Dir)
	case "down":
		err = goose.DownContext(ctx, db, Dir)
	case "reset":
		err = goose.ResetContext(ctx, db, Dir)
	case "status":
		err = goose.StatusContext(ctx, db, Dir)
	case "version":
		err = goose.VersionContext(ctx, db, Dir)
	default:
		return fmt.Errorf("unknown migration command: %s (expected one of %v)", command, Commands)
	}
	if err != nil {
		log.Error("migration command failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return fmt.Errorf("migration command '%s' failed: %w", command, err)
	}

	log.Info("migration command completed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Fatalf logs at error level. It does not exit; goose returns the error.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}
