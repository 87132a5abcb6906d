// Package tasktest holds a behavioral test suite that every task.Store
// implementation must pass.
package tasktest

import (
	"context"
	"sync"
	"testing"

	"github.com/phrazzld/ledger-reports/internal/store"
	"github.com/phrazzld/ledger-reports/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStoreTests exercises s. Each subtest creates its own tasks, but they
// share s, so the store must start empty.
func RunStoreTests(t *testing.T, s task.Store) {
	t.Helper()

	t.Run("create assigns ids and starts pending", func(t *testing.T) {
		ctx := context.Background()

		a, err := s.Create(ctx, task.KindAccounts)
		require.NoError(t, err)
		b, err := s.Create(ctx, task.KindAccounts)
		require.NoError(t, err)

		assert.NotZero(t, a.ID)
		assert.Greater(t, b.ID, a.ID)
		assert.Equal(t, task.KindAccounts, a.Kind)
		assert.Equal(t, task.StatePending, a.State)
		assert.Empty(t, a.Metadata)
		assert.False(t, a.CreatedAt.IsZero())

		got, err := s.Get(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, a.ID, got.ID)
		assert.Equal(t, task.StatePending, got.State)
	})

	t.Run("get missing task", func(t *testing.T) {
		_, err := s.Get(context.Background(), 987654321)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
		assert.True(t, store.IsNotFoundError(err))
	})

	t.Run("transition merges metadata", func(t *testing.T) {
		ctx := context.Background()

		created, err := s.Create(ctx, task.KindYearly)
		require.NoError(t, err)

		_, err = s.Transition(ctx, created.ID, task.StatePending, task.StateInProgress, task.Metadata{
			task.MetaStartedAt: "2024-01-01T00:00:00Z",
		})
		require.NoError(t, err)

		done, err := s.Transition(ctx, created.ID, task.StateInProgress, task.StateDone, task.Metadata{
			task.MetaDurationMs: int64(1250),
		})
		require.NoError(t, err)
		assert.Equal(t, task.StateDone, done.State)
		assert.Equal(t, "2024-01-01T00:00:00Z", done.Metadata[task.MetaStartedAt])

		ms, ok := done.Metadata.DurationMs()
		require.True(t, ok)
		assert.Equal(t, int64(1250), ms)

		got, err := s.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, task.StateDone, got.State)
		assert.Equal(t, "finished in 1.25", task.FormatStatus(got))
	})

	t.Run("transition from wrong state", func(t *testing.T) {
		ctx := context.Background()

		created, err := s.Create(ctx, task.KindYearly)
		require.NoError(t, err)

		_, err = s.Transition(ctx, created.ID, task.StateInProgress, task.StateDone, nil)
		assert.ErrorIs(t, err, store.ErrStateConflict)

		got, err := s.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, task.StatePending, got.State)
	})

	t.Run("transition missing task", func(t *testing.T) {
		_, err := s.Transition(context.Background(), 987654321, task.StatePending, task.StateInProgress, nil)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("only one concurrent claim wins", func(t *testing.T) {
		ctx := context.Background()

		created, err := s.Create(ctx, task.KindFinancialStatement)
		require.NoError(t, err)

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Transition(ctx, created.ID, task.StatePending, task.StateInProgress, nil)
				if err == nil {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, wins)
	})

	t.Run("latest by kind", func(t *testing.T) {
		ctx := context.Background()

		var last *task.Task
		for i := 0; i < 3; i++ {
			created, err := s.Create(ctx, task.KindFinancialStatement)
			require.NoError(t, err)
			last = created
		}

		got, err := s.LatestByKind(ctx, task.KindFinancialStatement)
		require.NoError(t, err)
		assert.Equal(t, last.ID, got.ID)
	})

	t.Run("latest by kind with no tasks", func(t *testing.T) {
		_, err := s.LatestByKind(context.Background(), task.Kind("generate-report-nothing"))
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}
