package api

import (
	"time"

	"github.com/phrazzld/ledger-reports/internal/task"
)

// GenerateReportsRequest selects which reports to generate. An empty body
// or an empty list means all of them.
type GenerateReportsRequest struct {
	Reports []string `json:"reports" validate:"omitempty,unique,dive,oneof=accounts.csv yearly.csv fs.csv"`
}

// GenerateReportsResponse is returned once every requested report is queued.
type GenerateReportsResponse struct {
	Message string           `json:"message"`
	Tasks   map[string]int64 `json:"tasks"`
}

// TaskResponse is the public view of a task record.
type TaskResponse struct {
	ID        int64          `json:"id"`
	Kind      string         `json:"kind"`
	Report    string         `json:"report"`
	State     string         `json:"state"`
	Status    string         `json:"status"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func newTaskResponse(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:        t.ID,
		Kind:      string(t.Kind),
		Report:    t.Kind.ReportFile(),
		State:     string(t.State),
		Status:    task.FormatStatus(t),
		Metadata:  t.Metadata,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
