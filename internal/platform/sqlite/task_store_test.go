package sqlite_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/phrazzld/ledger-reports/internal/platform/sqlite"
	"github.com/phrazzld/ledger-reports/internal/store"
	"github.com/phrazzld/ledger-reports/internal/task"
	"github.com/phrazzld/ledger-reports/internal/task/tasktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.TaskStore {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "data", "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, sqlite.Migrate(ctx, db, "up", quiet))

	return sqlite.NewTaskStore(db)
}

func TestTaskStore_Contract(t *testing.T) {
	tasktest.RunStoreTests(t, newStore(t))
}

func TestTaskStore_RejectsUnknownKind(t *testing.T) {
	s := newStore(t)

	_, err := s.Create(context.Background(), task.Kind("generate-report-cats"))
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestTaskStore_TimestampsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	created, err := s.Create(ctx, task.KindAccounts)
	require.NoError(t, err)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
	assert.Equal(t, "UTC", got.CreatedAt.Location().String())

	moved, err := s.Transition(ctx, created.ID, task.StatePending, task.StateInProgress, nil)
	require.NoError(t, err)
	assert.False(t, moved.UpdatedAt.Before(created.UpdatedAt))
	assert.Equal(t, created.CreatedAt, moved.CreatedAt)
}

func TestMapError_Passthrough(t *testing.T) {
	assert.NoError(t, sqlite.MapError(nil))
	assert.ErrorIs(t, sqlite.MapError(context.Canceled), context.Canceled)
}
