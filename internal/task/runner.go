package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/ledger-reports/internal/store"
)

// Processor runs one task by id.
type Processor interface {
	ProcessTask(ctx context.Context, id int64) error
}

// RunnerConfig holds configuration for the Runner
type RunnerConfig struct {
	// WorkerCount is the number of consumers per kind channel.
	// If zero or negative, defaults to 1
	WorkerCount int

	// RecoverOnStart republishes the latest unfinished task of each kind
	// when the runner starts.
	RecoverOnStart bool
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount:    1,
		RecoverOnStart: true,
	}
}

// Runner consumes every kind's channel from a Broker and hands each
// message to a Processor.
type Runner struct {
	broker     *Broker
	processor  Processor
	store      Store
	config     RunnerConfig
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	logger     *slog.Logger
	errHandler func(kind Kind, msg Message, err error)
}

// NewRunner creates a Runner. The store is only read, during recovery.
func NewRunner(
	broker *Broker,
	processor Processor,
	taskStore Store,
	config RunnerConfig,
	logger *slog.Logger,
) *Runner {
	logger = logger.With("component", "task_runner")
	if config.WorkerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
		config.WorkerCount = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		broker:    broker,
		processor: processor,
		store:     taskStore,
		config:    config,
		ctx:       ctx,
		cancel:    cancel,
		logger:    logger,
		errHandler: func(kind Kind, msg Message, err error) {
			logger.Error("task processing failed",
				"task_id", msg.TaskID,
				"task_kind", kind,
				"error", err)
		},
	}
}

// SetErrorHandler allows setting a custom error handler function
func (r *Runner) SetErrorHandler(handler func(kind Kind, msg Message, err error)) {
	r.errHandler = handler
}

// Start recovers unfinished tasks if configured and starts the workers.
func (r *Runner) Start() error {
	if r.config.RecoverOnStart {
		if err := r.Recover(r.ctx); err != nil {
			return fmt.Errorf("failed to recover tasks: %w", err)
		}
	}

	for _, kind := range Kinds {
		for i := 0; i < r.config.WorkerCount; i++ {
			r.wg.Add(1)
			go r.worker(kind, i)
		}
	}

	r.logger.Info("task runner started",
		"kinds", len(Kinds),
		"workers_per_kind", r.config.WorkerCount)
	return nil
}

// Stop cancels in-flight work and waits for every worker to return.
func (r *Runner) Stop() {
	r.cancel()
	r.wg.Wait()
	r.logger.Info("task runner stopped")
}

// Recover republishes the most recent task of each kind if it is pending
// or in-progress. Messages held by the broker do not survive a restart;
// in-progress tasks then take the not-pending retry path.
func (r *Runner) Recover(ctx context.Context) error {
	recovered := 0
	for _, kind := range Kinds {
		t, err := r.store.LatestByKind(ctx, kind)
		if store.IsNotFoundError(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to load latest %s task: %w", kind, err)
		}
		if t.State == StateDone {
			continue
		}

		if err := r.broker.Publish(ctx, kind, Message{TaskID: t.ID}, 0); err != nil {
			r.logger.Error("failed to requeue unfinished task",
				"task_id", t.ID,
				"task_kind", kind,
				"state", t.State,
				"error", err)
			continue
		}
		recovered++
	}

	r.logger.Info("recovered unfinished tasks", "count", recovered)
	return nil
}

func (r *Runner) worker(kind Kind, id int) {
	defer r.wg.Done()

	messages := r.broker.Messages(kind)
	r.logger.Debug("starting worker", "task_kind", kind, "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", "task_kind", kind, "worker_id", id)
			return

		case msg, ok := <-messages:
			if !ok {
				r.logger.Debug("channel closed, stopping worker", "task_kind", kind, "worker_id", id)
				return
			}
			r.handle(kind, msg, id)
		}
	}
}

func (r *Runner) handle(kind Kind, msg Message, workerID int) {
	logger := r.logger.With(
		"task_id", msg.TaskID,
		"task_kind", kind,
		"worker_id", workerID,
	)

	defer func() {
		if p := recover(); p != nil {
			r.errHandler(kind, msg, fmt.Errorf("panic while processing task: %v", p))
		}
	}()

	logger.Info("processing job for taskId")
	if err := r.processor.ProcessTask(r.ctx, msg.TaskID); err != nil {
		r.errHandler(kind, msg, err)
		return
	}
	logger.Info("processed job")
}
