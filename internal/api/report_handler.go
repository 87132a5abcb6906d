package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/ledger-reports/internal/api/shared"
	"github.com/phrazzld/ledger-reports/internal/platform/logger"
	"github.com/phrazzld/ledger-reports/internal/task"
	"golang.org/x/sync/errgroup"
)

// Enqueuer queues report tasks.
type Enqueuer interface {
	Enqueue(ctx context.Context, kind task.Kind, delay time.Duration) (int64, error)
	EnqueueAll(ctx context.Context) (map[task.Kind]int64, error)
}

// StatusSource reports the status of every report.
type StatusSource interface {
	Statuses(ctx context.Context) (map[string]string, error)
}

// TaskGetter loads a task by id.
type TaskGetter interface {
	Get(ctx context.Context, id int64) (*task.Task, error)
}

// ReportHandler serves report generation and status requests.
type ReportHandler struct {
	enqueuer Enqueuer
	status   StatusSource
	tasks    TaskGetter
	logger   *slog.Logger
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(enqueuer Enqueuer, status StatusSource, tasks TaskGetter, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ReportHandler")
	}
	return &ReportHandler{
		enqueuer: enqueuer,
		status:   status,
		tasks:    tasks,
		logger:   logger.With(slog.String("component", "report_handler")),
	}
}

// GetStatuses handles GET /reports. It returns the status string of each
// report keyed by its output file name.
func (h *ReportHandler) GetStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.status.Statuses(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load report status")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, statuses)
}

// GenerateReports handles POST /reports. It queues the requested reports
// concurrently and responds once all of them are accepted.
func (h *ReportHandler) GenerateReports(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req GenerateReportsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	ids, err := h.enqueue(r.Context(), req.Reports)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tasks := make(map[string]int64, len(ids))
	for kind, id := range ids {
		tasks[kind.ReportFile()] = id
	}

	log.Info("reports queued", "count", len(tasks))
	shared.RespondWithJSON(w, r, http.StatusCreated, GenerateReportsResponse{
		Message: "finished",
		Tasks:   tasks,
	})
}

func (h *ReportHandler) enqueue(ctx context.Context, reports []string) (map[task.Kind]int64, error) {
	if len(reports) == 0 {
		return h.enqueuer.EnqueueAll(ctx)
	}

	kinds := make([]task.Kind, 0, len(reports))
	for _, name := range reports {
		kind, err := task.KindForReportFile(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}

	var mu sync.Mutex
	ids := make(map[task.Kind]int64, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range kinds {
		g.Go(func() error {
			id, err := h.enqueuer.Enqueue(gctx, kind, 0)
			if err != nil {
				return err
			}
			mu.Lock()
			ids[kind] = id
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ids, nil
}

// GetTask handles GET /tasks/{id}.
func (h *ReportHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		if err == nil {
			err = errors.New("task id must be positive")
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid task id", err)
		return
	}

	t, err := h.tasks.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newTaskResponse(t))
}
