package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/ledger-reports/internal/platform/logger"
	"github.com/phrazzld/ledger-reports/internal/store"
	"github.com/phrazzld/ledger-reports/internal/task"
)

const taskColumns = "id, kind, state, metadata, created_at, updated_at"

// TaskStore implements task.Store using PostgreSQL.
type TaskStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewTaskStore creates a TaskStore. Transitions open their own transactions,
// so it needs the pool rather than a store.DBTX.
func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db, now: time.Now}
}

var _ task.Store = (*TaskStore)(nil)

// Create inserts a pending task with empty metadata.
func (s *TaskStore) Create(ctx context.Context, kind task.Kind) (*task.Task, error) {
	log := logger.FromContext(ctx)
	now := s.now().UTC()

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO tasks (kind, state, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING `+taskColumns,
		string(kind), string(task.StatePending), []byte("{}"), now)

	t, err := scanTask(row)
	if err != nil {
		log.Error("failed to create task", "task_kind", kind, "error", err)
		return nil, fmt.Errorf("failed to create task: %w", mapTaskError(err))
	}
	return t, nil
}

// Get loads a task by id.
func (s *TaskStore) Get(ctx context.Context, id int64) (*task.Task, error) {
	return getTask(ctx, s.db, id, "")
}

// Transition locks the task row, checks its state and writes the new state
// and merged metadata in one transaction.
func (s *TaskStore) Transition(
	ctx context.Context,
	id int64,
	from, to task.State,
	patch task.Metadata,
) (*task.Task, error) {
	var updated *task.Task

	err := store.RunInTransaction(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		current, err := getTask(ctx, tx, id, " FOR UPDATE")
		if err != nil {
			return err
		}
		if current.State != from {
			return fmt.Errorf("%w: task %d is %s, not %s", store.ErrStateConflict, id, current.State, from)
		}

		meta, err := task.EncodeMetadata(current.Metadata.Merge(patch))
		if err != nil {
			return err
		}

		row := tx.QueryRowContext(ctx, `
			UPDATE tasks
			SET state = $2, metadata = $3, updated_at = $4
			WHERE id = $1
			RETURNING `+taskColumns,
			id, string(to), meta, s.now().UTC())

		updated, err = scanTask(row)
		if err != nil {
			return fmt.Errorf("failed to update task %d: %w", id, mapTaskError(err))
		}
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).Debug("task transition not applied",
			"task_id", id,
			"from", from,
			"to", to,
			"error", err)
		return nil, err
	}
	return updated, nil
}

// LatestByKind returns the most recently created task of kind.
func (s *TaskStore) LatestByKind(ctx context.Context, kind task.Kind) (*task.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE kind = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`,
		string(kind))

	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to load latest %s task: %w", kind, MapError(err))
	}
	return t, nil
}

func getTask(ctx context.Context, db store.DBTX, id int64, suffix string) (*task.Task, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1`+suffix,
		id)

	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to load task %d: %w", id, MapError(err))
	}
	return t, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*task.Task, error) {
	var (
		t     task.Task
		kind  string
		state string
		meta  []byte
	)
	if err := row.Scan(&t.ID, &kind, &state, &meta, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}

	m, err := task.DecodeMetadata(meta)
	if err != nil {
		return nil, fmt.Errorf("task %d: %w", t.ID, err)
	}

	t.Kind = task.Kind(kind)
	t.State = task.State(state)
	t.Metadata = m
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}
