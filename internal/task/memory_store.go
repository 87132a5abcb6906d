package task

import (
	"context"
	"sync"
	"time"

	"github.com/phrazzld/ledger-reports/internal/store"
)

// MemoryStore is a Store kept in process memory. Tasks are lost on exit.
type MemoryStore struct {
	mu     sync.RWMutex
	tasks  map[int64]*Task
	nextID int64
	now    func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks: make(map[int64]*Task),
		now:   time.Now,
	}
}

// Create inserts a pending task.
func (s *MemoryStore) Create(ctx context.Context, kind Kind) (*Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	now := s.now().UTC()
	t := &Task{
		ID:        s.nextID,
		Kind:      kind,
		State:     StatePending,
		Metadata:  Metadata{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.tasks[t.ID] = t
	return t.Clone(), nil
}

// Get loads a task by id.
func (s *MemoryStore) Get(ctx context.Context, id int64) (*Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return t.Clone(), nil
}

// Transition moves a task from one state to another under the store lock.
func (s *MemoryStore) Transition(
	ctx context.Context,
	id int64,
	from, to State,
	patch Metadata,
) (*Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	if t.State != from {
		return nil, store.ErrStateConflict
	}
	t.State = to
	t.Metadata = t.Metadata.Merge(patch)
	t.UpdatedAt = s.now().UTC()
	return t.Clone(), nil
}

// LatestByKind returns the most recently created task of kind.
func (s *MemoryStore) LatestByKind(ctx context.Context, kind Kind) (*Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *Task
	for _, t := range s.tasks {
		if t.Kind != kind {
			continue
		}
		if latest == nil ||
			t.CreatedAt.After(latest.CreatedAt) ||
			(t.CreatedAt.Equal(latest.CreatedAt) && t.ID > latest.ID) {
			latest = t
		}
	}
	if latest == nil {
		return nil, store.ErrTaskNotFound
	}
	return latest.Clone(), nil
}

var _ Store = (*MemoryStore)(nil)
