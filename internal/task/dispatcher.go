package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/ledger-reports/internal/platform/logger"
	"github.com/phrazzld/ledger-reports/internal/store"
	"golang.org/x/sync/errgroup"
)

// DefaultRetryDelay is how long a task found not pending waits before its
// kind is enqueued again.
const DefaultRetryDelay = time.Minute

// ErrTaskNotPending marks a delivery for a task that was already claimed.
// ProcessTask handles it by requeueing and never returns it.
var ErrTaskNotPending = errors.New("task is not pending")

// ReportGenerator runs the aggregation behind each kind.
type ReportGenerator interface {
	GenerateAccounts(ctx context.Context) error
	GenerateYearly(ctx context.Context) error
	GenerateFinancialStatement(ctx context.Context) error
}

// DispatcherConfig tunes a Dispatcher.
type DispatcherConfig struct {
	// RetryDelay is applied when re-enqueueing a kind whose task was not
	// pending. Zero means DefaultRetryDelay.
	RetryDelay time.Duration
}

// Dispatcher creates tasks, publishes their ids and runs them.
type Dispatcher struct {
	store      Store
	publisher  Publisher
	reports    ReportGenerator
	retryDelay time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(
	store Store,
	publisher Publisher,
	reports ReportGenerator,
	config DispatcherConfig,
	logger *slog.Logger,
) *Dispatcher {
	if config.RetryDelay <= 0 {
		config.RetryDelay = DefaultRetryDelay
	}
	return &Dispatcher{
		store:      store,
		publisher:  publisher,
		reports:    reports,
		retryDelay: config.RetryDelay,
		logger:     logger.With("component", "dispatcher"),
		now:        time.Now,
	}
}

// Enqueue creates a pending task of kind and publishes its id on the kind's
// channel after delay. It returns the new task's id.
func (d *Dispatcher) Enqueue(ctx context.Context, kind Kind, delay time.Duration) (int64, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	t, err := d.store.Create(ctx, kind)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s task: %w", kind, err)
	}

	if err := d.publisher.Publish(ctx, kind, Message{TaskID: t.ID}, delay); err != nil {
		return 0, fmt.Errorf("failed to publish task %d: %w", t.ID, err)
	}

	d.logger.Info("task enqueued",
		"task_id", t.ID,
		"task_kind", kind,
		"delay_ms", delay.Milliseconds())
	return t.ID, nil
}

// EnqueueAll enqueues one task of every kind concurrently and returns once
// all of them are accepted. The returned map holds the new task ids.
func (d *Dispatcher) EnqueueAll(ctx context.Context) (map[Kind]int64, error) {
	ids := make([]int64, len(Kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range Kinds {
		g.Go(func() error {
			id, err := d.Enqueue(gctx, kind, 0)
			if err != nil {
				return err
			}
			ids[i] = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[Kind]int64, len(Kinds))
	for i, kind := range Kinds {
		out[kind] = ids[i]
	}
	return out, nil
}

// ProcessTask runs the task with the given id.
//
// A task that is not pending is not run: its kind is enqueued again after
// the retry delay and ProcessTask returns nil. Otherwise the task is
// claimed (pending to in-progress), its report is generated, and it is
// marked done with its duration. A failed report leaves the task
// in-progress with the error recorded in its metadata.
func (d *Dispatcher) ProcessTask(ctx context.Context, id int64) error {
	t, err := d.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load task %d: %w", id, err)
	}

	runID := uuid.New()
	log := d.logger.With(
		"task_id", t.ID,
		"task_kind", t.Kind,
		"run_id", runID,
	)
	ctx = logger.WithLogger(ctx, log)

	if t.State != StatePending {
		return d.requeue(ctx, log, t, fmt.Errorf("%w: state is %s", ErrTaskNotPending, t.State))
	}

	started := d.now()
	claimed, err := d.store.Transition(ctx, t.ID, StatePending, StateInProgress, Metadata{
		MetaStartedAt: started.UTC().Format(time.RFC3339Nano),
		MetaRunID:     runID.String(),
	})
	if errors.Is(err, store.ErrStateConflict) {
		return d.requeue(ctx, log, t, fmt.Errorf("%w: %w", ErrTaskNotPending, err))
	}
	if err != nil {
		return fmt.Errorf("failed to claim task %d: %w", t.ID, err)
	}

	log.Info("processing task")

	if err := d.generate(ctx, claimed.Kind); err != nil {
		d.recordFailure(ctx, log, claimed, err)
		return fmt.Errorf("task %d: %w", claimed.ID, err)
	}

	finished := d.now()
	duration := finished.Sub(started)
	if _, err := d.store.Transition(ctx, claimed.ID, StateInProgress, StateDone, Metadata{
		MetaFinishedAt: finished.UTC().Format(time.RFC3339Nano),
		MetaDurationMs: duration.Milliseconds(),
	}); err != nil {
		return fmt.Errorf("failed to complete task %d: %w", claimed.ID, err)
	}

	log.Info("task completed", "duration_ms", duration.Milliseconds())
	return nil
}

// generate routes kind to its report. Every Kind must have a case.
func (d *Dispatcher) generate(ctx context.Context, kind Kind) error {
	switch kind {
	case KindAccounts:
		return d.reports.GenerateAccounts(ctx)
	case KindYearly:
		return d.reports.GenerateYearly(ctx)
	case KindFinancialStatement:
		return d.reports.GenerateFinancialStatement(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// requeue schedules a fresh task of t's kind. reason wraps ErrTaskNotPending
// and is only logged.
func (d *Dispatcher) requeue(ctx context.Context, log *slog.Logger, t *Task, reason error) error {
	log.Warn("task is not pending, retrying later",
		"reason", reason,
		"retry_delay_ms", d.retryDelay.Milliseconds())

	if _, err := d.Enqueue(ctx, t.Kind, d.retryDelay); err != nil {
		return fmt.Errorf("failed to requeue %s after task %d: %w", t.Kind, t.ID, err)
	}
	return nil
}

// recordFailure notes err on the task without leaving in-progress. It
// writes even when ctx has been cancelled.
func (d *Dispatcher) recordFailure(ctx context.Context, log *slog.Logger, t *Task, runErr error) {
	log.Error("task failed", "error", runErr)

	_, err := d.store.Transition(context.WithoutCancel(ctx), t.ID, StateInProgress, StateInProgress, Metadata{
		MetaError:    runErr.Error(),
		MetaFailedAt: d.now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		log.Error("failed to record task failure", "error", err)
	}
}
