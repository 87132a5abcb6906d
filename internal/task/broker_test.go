package task

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Message, within time.Duration) Message {
	t.Helper()
	select {
	case msg, ok := <-ch:
		require.True(t, ok, "channel closed")
		return msg
	case <-time.After(within):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func TestNewBroker(t *testing.T) {
	t.Parallel()

	b := NewBroker(10, testLogger())
	for _, k := range Kinds {
		require.NotNil(t, b.Messages(k))
		assert.Equal(t, 10, cap(b.queues[k]))
	}
	assert.Nil(t, b.Messages(Kind("bogus")))
}

func TestBroker_Publish(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b := NewBroker(1, testLogger())

	require.NoError(t, b.Publish(ctx, KindAccounts, Message{TaskID: 1}, 0))

	err := b.Publish(ctx, KindAccounts, Message{TaskID: 2}, 0)
	require.ErrorIs(t, err, ErrQueueFull)

	require.NoError(t, b.Publish(ctx, KindYearly, Message{TaskID: 3}, 0), "queues are per kind")

	assert.Equal(t, Message{TaskID: 1}, receive(t, b.Messages(KindAccounts), time.Second))
	assert.Equal(t, Message{TaskID: 3}, receive(t, b.Messages(KindYearly), time.Second))
}

func TestBroker_Publish_UnknownKind(t *testing.T) {
	t.Parallel()
	b := NewBroker(1, testLogger())

	assert.ErrorIs(t, b.Publish(context.Background(), Kind("bogus"), Message{TaskID: 1}, 0), ErrUnknownKind)
	assert.ErrorIs(t, b.Publish(context.Background(), Kind("bogus"), Message{TaskID: 1}, time.Hour), ErrUnknownKind)
	assert.Zero(t, b.Scheduled())
}

func TestBroker_Publish_CancelledContext(t *testing.T) {
	t.Parallel()
	b := NewBroker(1, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, b.Publish(ctx, KindAccounts, Message{TaskID: 1}, 0), context.Canceled)
}

func TestBroker_Publish_Delayed(t *testing.T) {
	t.Parallel()
	b := NewBroker(1, testLogger())

	start := time.Now()
	require.NoError(t, b.Publish(context.Background(), KindFinancialStatement, Message{TaskID: 9}, 50*time.Millisecond))
	assert.Equal(t, 1, b.Scheduled())

	msg := receive(t, b.Messages(KindFinancialStatement), 2*time.Second)
	assert.Equal(t, int64(9), msg.TaskID)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	assert.Eventually(t, func() bool { return b.Scheduled() == 0 }, time.Second, 10*time.Millisecond)
}

func TestBroker_Close(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b := NewBroker(1, testLogger())

	require.NoError(t, b.Publish(ctx, KindAccounts, Message{TaskID: 1}, time.Hour))
	assert.Equal(t, 1, b.Scheduled())

	b.Close()
	b.Close()

	assert.Zero(t, b.Scheduled())
	assert.ErrorIs(t, b.Publish(ctx, KindAccounts, Message{TaskID: 2}, 0), ErrQueueClosed)
	assert.ErrorIs(t, b.Publish(ctx, KindAccounts, Message{TaskID: 3}, time.Second), ErrQueueClosed)

	_, ok := <-b.Messages(KindAccounts)
	assert.False(t, ok)
}
