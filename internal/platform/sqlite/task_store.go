package sqlite

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

// TaskStore implements task.Store using SQLite. Timestamps are stored as
// Unix nanoseconds.
type TaskStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewTaskStore creates a TaskStore.
func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db, now: time.Now}
}

var _ task.Store = (*TaskStore)(nil)

// Create inserts a pending task with empty metadata.
func (s *TaskStore) Create(ctx context.Context, kind task.Kind) (*task.Task, error) {
	now := s.now().UnixNano()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (kind, state, metadata, created_at, updated_at)
		VALUES (?, ?, '{}', ?, ?)`,
		string(kind), string(task.StatePending), now, now)
	if err != nil {
		logger.FromContext(ctx).Error("failed to create task", "task_kind", kind, "error", err)
		return nil, fmt.Errorf("failed to create task: %w", MapError(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new task id: %w", err)
	}
	return s.Get(ctx, id)
}

// Get loads a task by id.
func (s *TaskStore) Get(ctx context.Context, id int64) (*task.Task, error) {
	return getTask(ctx, s.db, id)
}

// Transition checks the task's state and writes the new state and merged
// metadata in one transaction.
func (s *TaskStore) Transition(
	ctx context.Context,
	id int64,
	from, to task.State,
	patch task.Metadata,
) (*task.Task, error) {
	var updated *task.Task

	err := store.RunInTransaction(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		current, err := getTask(ctx, tx, id)
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

		// The state guard makes the update a no-op if another writer won.
		res, err := tx.ExecContext(ctx, `
			UPDATE tasks
			SET state = ?, metadata = ?, updated_at = ?
			WHERE id = ? AND state = ?`,
			string(to), string(meta), s.now().UnixNano(), id, string(from))
		if err != nil {
			return fmt.Errorf("failed to update task %d: %w", id, MapError(err))
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to update task %d: %w", id, err)
		} else if n == 0 {
			return fmt.Errorf("%w: task %d changed concurrently", store.ErrStateConflict, id)
		}

		updated, err = getTask(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// LatestByKind returns the most recently created task of kind.
func (s *TaskStore) LatestByKind(ctx context.Context, kind task.Kind) (*task.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE kind = ?
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

func getTask(ctx context.Context, db store.DBTX, id int64) (*task.Task, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = ?`,
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

func scanTask(row interface{ Scan(dest ...any) error }) (*task.Task, error) {
	var (
		t                 task.Task
		kind, state, meta string
		created, updated  int64
	)
	if err := row.Scan(&t.ID, &kind, &state, &meta, &created, &updated); err != nil {
		return nil, err
	}

	m, err := task.DecodeMetadata([]byte(meta))
	if err != nil {
		return nil, fmt.Errorf("task %d: %w", t.ID, err)
	}

	t.Kind = task.Kind(kind)
	t.State = task.State(state)
	t.Metadata = m
	t.CreatedAt = time.Unix(0, created).UTC()
	t.UpdatedAt = time.Unix(0, updated).UTC()
	return &t, nil
}
