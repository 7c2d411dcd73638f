// Package handlers implements the HTTP handlers fronting the pool's
// submit/cancel/snapshot methods.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/haseebdoesdev/go-task-scheduler/internal/logger"
	"github.com/haseebdoesdev/go-task-scheduler/internal/pool"
	"github.com/haseebdoesdev/go-task-scheduler/internal/task"
)

// TaskHandler fronts submit/get/cancel/list for a single pool.
type TaskHandler struct {
	pool *pool.Pool
}

// NewTaskHandler builds a TaskHandler bound to p.
func NewTaskHandler(p *pool.Pool) *TaskHandler {
	return &TaskHandler{pool: p}
}

// SubmitRequest is the JSON body accepted by POST /api/v1/tasks.
// DeadlineSeconds is an offset from now; zero means no deadline.
type SubmitRequest struct {
	Name            string `json:"name"`
	Priority        string `json:"priority"`
	ExecutionTimeMs uint   `json:"execution_time_ms"`
	DeadlineSeconds *int64 `json:"deadline_seconds,omitempty"`
	GangID          *int   `json:"gang_id,omitempty"`
	TimeoutSeconds  *uint  `json:"timeout_seconds,omitempty"`
	LotteryTickets  *uint  `json:"lottery_tickets,omitempty"`
}

// SubmitResponse is returned on a successful submission.
type SubmitResponse struct {
	ID int `json:"id"`
}

// Create handles POST /api/v1/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	spec := task.Spec{
		Name:            req.Name,
		Priority:        task.ParsePriority(req.Priority),
		ExecutionTimeMs: req.ExecutionTimeMs,
	}
	if req.DeadlineSeconds != nil {
		spec.DeadlineTime = time.Now().Add(time.Duration(*req.DeadlineSeconds) * time.Second)
	}
	if req.GangID != nil {
		spec.GangID = *req.GangID
	}
	if req.TimeoutSeconds != nil {
		spec.TimeoutSeconds = *req.TimeoutSeconds
	}
	if req.LotteryTickets != nil {
		spec.LotteryTickets = *req.LotteryTickets
	}

	id, err := h.pool.Submit(spec)
	if err != nil {
		switch {
		case errors.Is(err, task.ErrQueueFull):
			h.respondError(w, http.StatusServiceUnavailable, "task pool is at capacity")
		case errors.Is(err, task.ErrNameEmpty), errors.Is(err, task.ErrNameTooLong), errors.Is(err, task.ErrInvalidPriority):
			h.respondError(w, http.StatusBadRequest, err.Error())
		default:
			logger.Error().Err(err).Msg("failed to submit task")
			h.respondError(w, http.StatusInternalServerError, "failed to submit task")
		}
		return
	}

	taskLogger := logger.WithTask(id)
	taskLogger.Info().Str("priority", spec.Priority.String()).Msg("task submitted")
	h.respondJSON(w, http.StatusCreated, SubmitResponse{ID: id})
}

// Get handles GET /api/v1/tasks/{taskID}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseTaskID(w, r)
	if !ok {
		return
	}

	t, err := h.pool.Get(id)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "task not found")
		return
	}

	h.respondJSON(w, http.StatusOK, t)
}

// Cancel handles DELETE /api/v1/tasks/{taskID}.
func (h *TaskHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseTaskID(w, r)
	if !ok {
		return
	}

	if err := h.pool.Cancel(id); err != nil {
		switch {
		case errors.Is(err, task.ErrNotFound):
			h.respondError(w, http.StatusNotFound, "task not found")
		case errors.Is(err, task.ErrIllegalTransition):
			h.respondError(w, http.StatusConflict, "task cannot be cancelled in its current state")
		default:
			logger.Error().Err(err).Int("task_id", id).Msg("failed to cancel task")
			h.respondError(w, http.StatusInternalServerError, "failed to cancel task")
		}
		return
	}

	taskLogger := logger.WithTask(id)
	taskLogger.Info().Msg("task cancelled")
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"id": id, "status": "cancelled"})
}

// List handles GET /api/v1/tasks, returning every task currently held by
// the pool (any status). It is a thin read over Snapshot, not a durable
// listing API.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	snap := h.pool.Snapshot()
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"tasks": snap.Tasks,
		"size":  snap.Size,
	})
}

func (h *TaskHandler) parseTaskID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "taskID")
	id, err := parseID(raw)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid task id")
		return 0, false
	}
	return id, true
}

func (h *TaskHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func (h *TaskHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, ErrorResponse{Error: http.StatusText(status), Message: message})
}

// ErrorResponse is the standard shape for every handler's error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
