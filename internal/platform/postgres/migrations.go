package postgres

import (
	"context"
	"database/sql"
	"embed"
	"log/slog"

	"github.com/phrazzld/ledger-reports/internal/platform/migrate"
)

// Migrations holds the schema for the tasks table.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// Migrate runs a goose command (up, down, reset, status, version) with the
// embedded migrations.
func Migrate(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	return migrate.Run(ctx, db, migrate.DialectPostgres, Migrations, command, logger)
}
