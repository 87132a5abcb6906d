package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type processorFunc func(ctx context.Context, id int64) error

func (f processorFunc) ProcessTask(ctx context.Context, id int64) error {
	return f(ctx, id)
}

func TestRunner_ProcessesEveryKind(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := NewMemoryStore()
	broker := NewBroker(10, testLogger())
	defer broker.Close()
	reports := &fakeReports{}
	dispatcher := NewDispatcher(s, broker, reports, DispatcherConfig{}, testLogger())

	config := DefaultRunnerConfig()
	config.WorkerCount = 2
	runner := NewRunner(broker, dispatcher, s, config, testLogger())
	require.NoError(t, runner.Start())
	defer runner.Stop()

	ids, err := dispatcher.EnqueueAll(ctx)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		for _, id := range ids {
			got, err := s.Get(ctx, id)
			if err != nil || got.State != StateDone {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond)

	assert.ElementsMatch(t, Kinds, reports.Calls())

	statuses, err := NewStatusReporter(s).Statuses(ctx)
	require.NoError(t, err)
	for _, status := range statuses {
		assert.Contains(t, status, "finished in ")
	}
}

func TestRunner_ErrorHandler(t *testing.T) {
	t.Parallel()

	broker := NewBroker(10, testLogger())
	defer broker.Close()

	boom := errors.New("boom")
	runner := NewRunner(broker, processorFunc(func(ctx context.Context, id int64) error {
		if id == 1 {
			return boom
		}
		if id == 2 {
			panic("unexpected")
		}
		return nil
	}), NewMemoryStore(), RunnerConfig{WorkerCount: 1}, testLogger())

	var mu sync.Mutex
	failures := map[int64]error{}
	runner.SetErrorHandler(func(kind Kind, msg Message, err error) {
		mu.Lock()
		defer mu.Unlock()
		failures[msg.TaskID] = err
	})

	require.NoError(t, runner.Start())
	defer runner.Stop()

	ctx := context.Background()
	require.NoError(t, broker.Publish(ctx, KindAccounts, Message{TaskID: 1}, 0))
	require.NoError(t, broker.Publish(ctx, KindAccounts, Message{TaskID: 2}, 0))
	require.NoError(t, broker.Publish(ctx, KindAccounts, Message{TaskID: 3}, 0))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(failures) == 2
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.ErrorIs(t, failures[1], boom)
	require.Error(t, failures[2])
	assert.Contains(t, failures[2].Error(), "panic")
	assert.NotContains(t, failures, int64(3))
}

func TestRunner_Recover(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := NewMemoryStore()
	s.now = fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Second)

	old, err := s.Create(ctx, KindAccounts)
	require.NoError(t, err)
	latestAccounts, err := s.Create(ctx, KindAccounts)
	require.NoError(t, err)
	_, err = s.Transition(ctx, old.ID, StatePending, StateDone, nil)
	require.NoError(t, err)

	yearly, err := s.Create(ctx, KindYearly)
	require.NoError(t, err)
	_, err = s.Transition(ctx, yearly.ID, StatePending, StateInProgress, nil)
	require.NoError(t, err)

	fs, err := s.Create(ctx, KindFinancialStatement)
	require.NoError(t, err)
	_, err = s.Transition(ctx, fs.ID, StatePending, StateDone, nil)
	require.NoError(t, err)

	broker := NewBroker(10, testLogger())
	defer broker.Close()
	runner := NewRunner(broker, processorFunc(func(context.Context, int64) error { return nil }),
		s, DefaultRunnerConfig(), testLogger())

	require.NoError(t, runner.Recover(ctx))

	assert.Equal(t, Message{TaskID: latestAccounts.ID}, receive(t, broker.Messages(KindAccounts), time.Second))
	assert.Equal(t, Message{TaskID: yearly.ID}, receive(t, broker.Messages(KindYearly), time.Second))
	assert.Empty(t, broker.Messages(KindFinancialStatement))
	assert.Empty(t, broker.Messages(KindAccounts))
}

func TestRunner_Start_RecoverFailure(t *testing.T) {
	t.Parallel()

	s := newStubStore()
	s.LatestFn = func(ctx context.Context, kind Kind) (*Task, error) {
		return nil, errors.New("connection refused")
	}

	broker := NewBroker(1, testLogger())
	defer broker.Close()
	runner := NewRunner(broker, processorFunc(func(context.Context, int64) error { return nil }),
		s, DefaultRunnerConfig(), testLogger())

	err := runner.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to recover tasks")
}

func TestRunner_StopWhenBrokerClosed(t *testing.T) {
	t.Parallel()

	broker := NewBroker(1, testLogger())
	runner := NewRunner(broker, processorFunc(func(context.Context, int64) error { return nil }),
		NewMemoryStore(), RunnerConfig{WorkerCount: 3}, testLogger())
	require.NoError(t, runner.Start())

	broker.Close()

	done := make(chan struct{})
	go func() {
		runner.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}
}
