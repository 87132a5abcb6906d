package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Common errors returned by the Broker
var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// Message is the payload carried on a kind's channel.
type Message struct {
	TaskID int64 `json:"taskId"`
}

// Publisher delivers messages to the channel of a kind.
type Publisher interface {
	Publish(ctx context.Context, kind Kind, msg Message, delay time.Duration) error
}

// Broker is an in-process message broker with one buffered channel per
// Kind. Delayed messages are held by timers until due; Close drops them.
type Broker struct {
	mu     sync.RWMutex
	queues map[Kind]chan Message
	timers map[*time.Timer]struct{}
	closed bool
	logger *slog.Logger
}

// NewBroker creates a broker whose channels each buffer size messages.
func NewBroker(size int, logger *slog.Logger) *Broker {
	if size < 1 {
		size = 1
	}
	queues := make(map[Kind]chan Message, len(Kinds))
	for _, k := range Kinds {
		queues[k] = make(chan Message, size)
	}
	return &Broker{
		queues: queues,
		timers: make(map[*time.Timer]struct{}),
		logger: logger.With("component", "broker"),
	}
}

// Publish sends msg to kind's channel, after delay if it is positive.
// An immediate publish fails with ErrQueueFull instead of blocking. A
// delayed publish only reports errors known at call time; delivery
// failures when the timer fires are logged.
func (b *Broker) Publish(ctx context.Context, kind Kind, msg Message, delay time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if delay <= 0 {
		return b.deliver(kind, msg)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrQueueClosed
	}
	if _, ok := b.queues[kind]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		b.mu.Lock()
		delete(b.timers, timer)
		b.mu.Unlock()

		if err := b.deliver(kind, msg); err != nil {
			b.logger.Error("failed to deliver delayed message",
				"task_id", msg.TaskID,
				"task_kind", kind,
				"error", err)
		}
	})
	b.timers[timer] = struct{}{}

	b.logger.Debug("message scheduled",
		"task_id", msg.TaskID,
		"task_kind", kind,
		"delay", delay)
	return nil
}

func (b *Broker) deliver(kind Kind, msg Message) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrQueueClosed
	}
	queue, ok := b.queues[kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	select {
	case queue <- msg:
		b.logger.Debug("message published",
			"task_id", msg.TaskID,
			"task_kind", kind,
			"queue_len", len(queue),
			"queue_cap", cap(queue))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(queue))
	}
}

// Messages returns the receive side of kind's channel, or nil for an unknown kind.
func (b *Broker) Messages(kind Kind) <-chan Message {
	return b.queues[kind]
}

// Scheduled returns the number of delayed messages not yet delivered.
func (b *Broker) Scheduled() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.timers)
}

// Close stops pending delayed deliveries and closes every channel.
// Further publishes fail with ErrQueueClosed.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for timer := range b.timers {
		timer.Stop()
	}
	clear(b.timers)
	for _, queue := range b.queues {
		close(queue)
	}
	b.logger.Info("broker closed")
}
