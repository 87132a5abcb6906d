package task

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		task *Task
		want string
	}{
		{"no task", nil, "idle"},
		{"pending", &Task{State: StatePending}, "pending"},
		{"in progress", &Task{State: StateInProgress, Metadata: Metadata{MetaDurationMs: int64(10)}}, "in-progress"},
		{"done without duration", &Task{State: StateDone, Metadata: Metadata{}}, "finished"},
		{"done", &Task{State: StateDone, Metadata: Metadata{MetaDurationMs: int64(1234)}}, "finished in 1.23"},
		{"rounds half up", &Task{State: StateDone, Metadata: Metadata{MetaDurationMs: int64(2005)}}, "finished in 2.01"},
		{"sub-second", &Task{State: StateDone, Metadata: Metadata{MetaDurationMs: int64(7)}}, "finished in 0.01"},
		{"from json", &Task{State: StateDone, Metadata: Metadata{MetaDurationMs: float64(60000)}}, "finished in 60.00"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatStatus(tc.task))
		})
	}
}

func TestStatusReporter_Statuses(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	accounts, err := s.Create(ctx, KindAccounts)
	require.NoError(t, err)
	_, err = s.Transition(ctx, accounts.ID, StatePending, StateDone, Metadata{MetaDurationMs: int64(2500)})
	require.NoError(t, err)

	yearly, err := s.Create(ctx, KindYearly)
	require.NoError(t, err)
	_, err = s.Transition(ctx, yearly.ID, StatePending, StateInProgress, nil)
	require.NoError(t, err)

	got, err := NewStatusReporter(s).Statuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"accounts.csv": "finished in 2.50",
		"yearly.csv":   "in-progress",
		"fs.csv":       "idle",
	}, got)
}

func TestStatusReporter_UsesMostRecentTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	first, err := s.Create(ctx, KindAccounts)
	require.NoError(t, err)
	_, err = s.Transition(ctx, first.ID, StatePending, StateDone, Metadata{MetaDurationMs: int64(1000)})
	require.NoError(t, err)

	_, err = s.Create(ctx, KindAccounts)
	require.NoError(t, err)

	got, err := NewStatusReporter(s).Status(ctx, KindAccounts)
	require.NoError(t, err)
	assert.Equal(t, "pending", got)
}

func TestStatusReporter_StoreError(t *testing.T) {
	t.Parallel()

	s := newStubStore()
	s.LatestFn = func(ctx context.Context, kind Kind) (*Task, error) {
		return nil, errors.New("connection reset")
	}

	_, err := NewStatusReporter(s).Statuses(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}
