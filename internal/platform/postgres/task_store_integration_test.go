//go:build integration

package postgres_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/phrazzld/ledger-reports/internal/platform/postgres"
	"github.com/phrazzld/ledger-reports/internal/task/tasktest"
	"github.com/stretchr/testify/require"
)

// TestTaskStore_Integration runs the store contract against a real database.
// The database named by LEDGER_TEST_DB_URL is reset before the run.
func TestTaskStore_Integration(t *testing.T) {
	url := os.Getenv("LEDGER_TEST_DB_URL")
	if url == "" {
		t.Skip("LEDGER_TEST_DB_URL not set")
	}

	ctx := context.Background()
	db, err := postgres.Open(ctx, url)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, postgres.Migrate(ctx, db, "reset", quiet))
	require.NoError(t, postgres.Migrate(ctx, db, "up", quiet))

	tasktest.RunStoreTests(t, postgres.NewTaskStore(db))
}
