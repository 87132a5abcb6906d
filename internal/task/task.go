package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/phrazzld/ledger-reports/internal/report"
)

// Kind identifies which report a task produces.
type Kind string

// Report kinds.
const (
	KindAccounts           Kind = "generate-report-accounts"
	KindYearly             Kind = "generate-report-yearly"
	KindFinancialStatement Kind = "generate-report-financial-statements"
)

// Kinds lists every report kind in a fixed order.
var Kinds = []Kind{KindAccounts, KindYearly, KindFinancialStatement}

// ErrUnknownKind is returned when a task or request names a kind outside Kinds.
var ErrUnknownKind = errors.New("unknown task kind")

// ParseKind validates s as a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Valid reports whether k is one of Kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindAccounts, KindYearly, KindFinancialStatement:
		return true
	}
	return false
}

// ReportFile returns the output file name of the report k produces.
func (k Kind) ReportFile() string {
	switch k {
	case KindAccounts:
		return report.AccountsFile
	case KindYearly:
		return report.YearlyFile
	case KindFinancialStatement:
		return report.StatementFile
	}
	return ""
}

// KindForReportFile returns the kind that produces the named report file.
func KindForReportFile(name string) (Kind, error) {
	for _, k := range Kinds {
		if k.ReportFile() == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: no report named %q", ErrUnknownKind, name)
}

// State is the lifecycle state of a Task.
type State string

// Task states. There is no failed state: a failed run stays in-progress
// with the failure recorded in its metadata.
const (
	StatePending    State = "pending"
	StateInProgress State = "in-progress"
	StateDone       State = "done"
)

// StateIdle is reported for a kind that has never had a task. It is never stored.
const StateIdle = "idle"

// Metadata keys written by the Dispatcher.
const (
	MetaStartedAt  = "startedAt"
	MetaFinishedAt = "finishedAt"
	MetaDurationMs = "durationMs"
	MetaError      = "error"
	MetaFailedAt   = "failedAt"
	MetaRunID      = "runId"
)

// Metadata is the free-form bag stored with a task.
type Metadata map[string]any

// Merge returns a copy of m with every key of patch set over it.
func (m Metadata) Merge(patch Metadata) Metadata {
	out := make(Metadata, len(m)+len(patch))
	maps.Copy(out, m)
	maps.Copy(out, patch)
	return out
}

// DurationMs returns the recorded run duration in milliseconds. Values that
// went through JSON come back as float64 or json.Number; both are accepted.
func (m Metadata) DurationMs() (int64, bool) {
	switch v := m[MetaDurationMs].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			f, ferr := v.Float64()
			if ferr != nil {
				return 0, false
			}
			return int64(f), true
		}
		return n, true
	}
	return 0, false
}

// EncodeMetadata renders m as a JSON object. A nil m encodes as {}.
func EncodeMetadata(m Metadata) ([]byte, error) {
	if m == nil {
		m = Metadata{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode task metadata: %w", err)
	}
	return b, nil
}

// DecodeMetadata parses a JSON object. Empty input yields empty metadata.
func DecodeMetadata(b []byte) (Metadata, error) {
	m := Metadata{}
	if len(b) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("failed to decode task metadata: %w", err)
	}
	if m == nil {
		m = Metadata{}
	}
	return m, nil
}

// Task is one persisted unit of report work.
type Task struct {
	ID        int64
	Kind      Kind
	State     State
	Metadata  Metadata
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy of the task's metadata along with its fields.
func (t *Task) Clone() *Task {
	c := *t
	c.Metadata = t.Metadata.Merge(nil)
	return &c
}

// Store persists tasks. Implementations return store.ErrTaskNotFound when a
// task does not exist and store.ErrStateConflict when a transition's from
// state does not match the stored state.
type Store interface {
	// Create inserts a pending task of kind with empty metadata.
	Create(ctx context.Context, kind Kind) (*Task, error)

	// Get loads a task by id.
	Get(ctx context.Context, id int64) (*Task, error)

	// Transition atomically moves a task from one state to another, merging
	// patch into its metadata. from and to may be equal.
	Transition(ctx context.Context, id int64, from, to State, patch Metadata) (*Task, error)

	// LatestByKind returns the most recently created task of kind. Ties on
	// creation time go to the higher id.
	LatestByKind(ctx context.Context, kind Kind) (*Task, error)
}
