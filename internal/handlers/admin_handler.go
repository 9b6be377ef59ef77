package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"insight360/internal/database"
	"insight360/internal/repository"
	"insight360/internal/workflow"
)

// AdminHandler exposes operational endpoints: manual sweeps, the
// email delivery log and the health check.
type AdminHandler struct {
	db       *database.Database
	sweeper  *workflow.Sweeper
	emailLog *repository.EmailLogRepository
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *database.Database, sweeper *workflow.Sweeper, emailLog *repository.EmailLogRepository) *AdminHandler {
	return &AdminHandler{db: db, sweeper: sweeper, emailLog: emailLog}
}

// Sweep triggers the deadline sweep immediately
// @Summary Run the deadline sweep
// @Description Runs one sweep pass over the active cycle and reports what it moved
// @Tags Admin
// @Produce json
// @Success 200 {object} workflow.SweepResult "Sweep summary"
// @Failure 403 {object} errorResponse "Insufficient permissions"
// @Failure 409 {object} errorResponse "No active cycle"
// @Security BearerAuth
// @Router /api/v1/admin/sweep [post]
func (h *AdminHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := h.sweeper.Run()
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	slog.Info("Manual sweep completed",
		"auto_approved", len(result.AutoApproved),
		"auto_accepted", len(result.AutoAccepted),
		"expired", len(result.Expired),
	)
	JSONResponse(w, result)
}

// EmailLog lists recent notification deliveries
// @Summary List recent notification deliveries
// @Description Returns the most recent email delivery log entries
// @Tags Admin
// @Produce json
// @Param limit query int false "Number of entries (1-500, default 50)"
// @Success 200 {array} models.EmailLog "Delivery log"
// @Failure 403 {object} errorResponse "Insufficient permissions"
// @Security BearerAuth
// @Router /api/v1/admin/email-log [get]
func (h *AdminHandler) EmailLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500", "bad_request")
			return
		}
		limit = parsed
	}

	entries, err := h.emailLog.ListRecent(limit)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	JSONResponse(w, entries)
}

// Health reports service and database status
// @Summary Health check
// @Description Reports service status and database connectivity
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Service healthy"
// @Failure 503 {object} map[string]string "Database unreachable"
// @Router /health [get]
func (h *AdminHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.db.HealthCheck(); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy", "database": "down"})
		return
	}

	JSONResponse(w, map[string]string{"status": "healthy", "database": "up"})
}
