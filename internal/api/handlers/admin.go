package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/haseebdoesdev/go-task-scheduler/internal/logger"
	"github.com/haseebdoesdev/go-task-scheduler/internal/policy"
	"github.com/haseebdoesdev/go-task-scheduler/internal/pool"
)

// AdminHandler fronts the control API's set_algorithm/snapshot/health
// surface.
type AdminHandler struct {
	pool *pool.Pool
}

// NewAdminHandler builds an AdminHandler bound to p.
func NewAdminHandler(p *pool.Pool) *AdminHandler {
	return &AdminHandler{pool: p}
}

// SetAlgorithmRequest is the JSON body accepted by POST /admin/algorithm.
type SetAlgorithmRequest struct {
	Algorithm string `json:"algorithm"`
}

// SetAlgorithm handles POST /admin/algorithm.
func (h *AdminHandler) SetAlgorithm(w http.ResponseWriter, r *http.Request) {
	var req SetAlgorithmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	algo, err := policy.Parse(req.Algorithm)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.pool.SetAlgorithm(algo); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	policyLogger := logger.WithPolicy(string(algo))
	policyLogger.Info().Msg("scheduling algorithm changed")
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"algorithm": string(algo)})
}

// GetAlgorithm handles GET /admin/algorithm.
func (h *AdminHandler) GetAlgorithm(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"algorithm": string(h.pool.Algorithm())})
}

// Snapshot handles GET /admin/snapshot, returning a full point-in-time
// copy of the pool for read-only consumers (the out-of-scope dashboard).
func (h *AdminHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.pool.Snapshot())
}

// Workers handles GET /admin/workers, a thin summary derived from the
// snapshot rather than a durable worker registry.
func (h *AdminHandler) Workers(w http.ResponseWriter, r *http.Request) {
	snap := h.pool.Snapshot()
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"num_active_workers": snap.NumActiveWorkers,
	})
}

// HealthCheck handles GET /admin/health.
func (h *AdminHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	snap := h.pool.Snapshot()
	status := "healthy"
	if snap.ShutdownFlag {
		status = "shutting_down"
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"size":      snap.Size,
		"capacity":  snap.Capacity,
		"algorithm": string(snap.Algorithm),
	})
}

func (h *AdminHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func (h *AdminHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, ErrorResponse{Error: http.StatusText(status), Message: message})
}
