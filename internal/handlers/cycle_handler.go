package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"insight360/internal/middleware"
	"insight360/internal/models"
	"insight360/internal/repository"
	"insight360/internal/workflow"
)

// CycleHandler handles review cycle HTTP requests
type CycleHandler struct {
	cycles *repository.CycleRepository
	engine *workflow.Engine
}

// NewCycleHandler creates a new cycle handler
func NewCycleHandler(cycles *repository.CycleRepository, engine *workflow.Engine) *CycleHandler {
	return &CycleHandler{
		cycles: cycles,
		engine: engine,
	}
}

type cycleResponse struct {
	models.Cycle
	Phase models.CyclePhase `json:"phase"`
}

// GetActive returns the active cycle with its derived phase
// @Summary Get the active review cycle
// @Description Returns the single active cycle together with its current phase
// @Tags Cycles
// @Produce json
// @Success 200 {object} cycleResponse "Active cycle"
// @Failure 409 {object} errorResponse "No active cycle"
// @Security BearerAuth
// @Router /api/v1/cycles/active [get]
func (h *CycleHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cycle, err := h.engine.ActiveCycle()
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	JSONResponse(w, cycleResponse{Cycle: *cycle, Phase: cycle.Phase(time.Now())})
}

type createCycleRequest struct {
	Name               string `json:"cycle_name"`
	NominationStart    string `json:"nomination_start"`
	NominationDeadline string `json:"nomination_deadline"`
	FeedbackDeadline   string `json:"feedback_deadline"`
}

// Create opens a new cycle, superseding any active one
// @Summary Open a new review cycle
// @Description Creates a cycle as the single active one; any previously active cycle is deactivated
// @Tags Cycles
// @Accept json
// @Produce json
// @Param request body createCycleRequest true "Cycle details"
// @Success 201 {object} models.Cycle "Cycle created"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 422 {object} errorResponse "Invalid deadlines"
// @Security BearerAuth
// @Router /api/v1/admin/cycles [post]
func (h *CycleHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}

	var body createCycleRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}
	if body.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "cycle_name is required", "bad_request")
		return
	}

	start, err1 := time.Parse("2006-01-02", body.NominationStart)
	nomDeadline, err2 := time.Parse("2006-01-02", body.NominationDeadline)
	fbDeadline, err3 := time.Parse("2006-01-02", body.FeedbackDeadline)
	if err1 != nil || err2 != nil || err3 != nil {
		writeError(w, http.StatusUnprocessableEntity, "dates must be YYYY-MM-DD", "bad_request")
		return
	}

	cycle := &models.Cycle{
		Name:               body.Name,
		NominationStart:    start,
		NominationDeadline: nomDeadline,
		FeedbackDeadline:   fbDeadline,
		CreatedBy:          userID,
	}
	if err := h.cycles.Create(cycle); err != nil {
		if err == repository.ErrInvalidDeadline {
			writeError(w, http.StatusUnprocessableEntity, err.Error(), "invalid_deadline")
			return
		}
		slog.Error("Failed to create cycle", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create cycle", "internal")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	JSONResponse(w, cycle)
}

// List returns all cycles
// @Summary List review cycles
// @Description Returns every cycle, newest first
// @Tags Cycles
// @Produce json
// @Success 200 {array} models.Cycle "Cycles"
// @Failure 403 {object} errorResponse "Insufficient permissions"
// @Security BearerAuth
// @Router /api/v1/admin/cycles [get]
func (h *CycleHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		h.Create(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cycles, err := h.cycles.List()
	if err != nil {
		slog.Error("Failed to list cycles", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list cycles", "internal")
		return
	}

	JSONResponse(w, cycles)
}
