package task

import (
	"context"
	"fmt"

	"github.com/phrazzld/ledger-reports/internal/store"
	"github.com/shopspring/decimal"
)

// StatusReporter derives report status strings from the task store.
type StatusReporter struct {
	store Store
}

// NewStatusReporter creates a StatusReporter over s.
func NewStatusReporter(s Store) *StatusReporter {
	return &StatusReporter{store: s}
}

// Status returns the status of kind's most recent task.
func (r *StatusReporter) Status(ctx context.Context, kind Kind) (string, error) {
	t, err := r.store.LatestByKind(ctx, kind)
	if store.IsNotFoundError(err) {
		return StateIdle, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load latest %s task: %w", kind, err)
	}
	return FormatStatus(t), nil
}

// Statuses returns the status of every kind keyed by its report file name.
func (r *StatusReporter) Statuses(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(Kinds))
	for _, kind := range Kinds {
		s, err := r.Status(ctx, kind)
		if err != nil {
			return nil, err
		}
		out[kind.ReportFile()] = s
	}
	return out, nil
}

// FormatStatus renders a task's status: "finished in <seconds>" with two
// decimals for a done task with a recorded duration, "finished" for one
// without, and the state name otherwise.
func FormatStatus(t *Task) string {
	if t == nil {
		return StateIdle
	}
	if t.State != StateDone {
		return string(t.State)
	}
	ms, ok := t.Metadata.DurationMs()
	if !ok {
		return "finished"
	}
	return "finished in " + decimal.New(ms, -3).StringFixed(2)
}
