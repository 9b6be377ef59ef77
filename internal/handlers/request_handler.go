package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"insight360/internal/middleware"
	"insight360/internal/models"
	"insight360/internal/workflow"
)

// RequestHandler handles nomination HTTP requests
type RequestHandler struct {
	engine *workflow.Engine
}

// NewRequestHandler creates a new nomination handler
func NewRequestHandler(engine *workflow.Engine) *RequestHandler {
	return &RequestHandler{engine: engine}
}

type nominationEntry struct {
	ReviewerID    int64  `json:"reviewer_id,omitempty"`
	ExternalEmail string `json:"external_email,omitempty"`
	ExternalName  string `json:"external_name,omitempty"`
}

type createNominationsRequest struct {
	Reviewers []nominationEntry `json:"reviewers"`
}

// Create records a batch of nominations for the caller
// @Summary Nominate reviewers
// @Description Records a batch of nominations against the caller's quota; the whole batch succeeds or fails together
// @Tags Nominations
// @Accept json
// @Produce json
// @Param request body createNominationsRequest true "Reviewers to nominate"
// @Success 201 {array} models.FeedbackRequest "Nominations created"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 409 {object} errorResponse "Quota exceeded, duplicate or reviewer at capacity"
// @Failure 422 {object} errorResponse "Self or manager nomination"
// @Security BearerAuth
// @Router /api/v1/requests [post]
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}

	var body createNominationsRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}
	if len(body.Reviewers) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "reviewers must not be empty", "bad_request")
		return
	}

	reviewers := make([]models.Reviewer, 0, len(body.Reviewers))
	for _, entry := range body.Reviewers {
		if entry.ExternalEmail != "" {
			reviewers = append(reviewers, models.ExternalReviewer(entry.ExternalEmail, entry.ExternalName))
			continue
		}
		if entry.ReviewerID == 0 {
			writeError(w, http.StatusUnprocessableEntity, "each reviewer needs reviewer_id or external_email", "bad_request")
			return
		}
		reviewers = append(reviewers, models.InternalReviewer(entry.ReviewerID))
	}

	created, err := h.engine.CreateNominations(userID, reviewers)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	slog.Info("Nominations created", "requester_id", userID, "count", len(created))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	JSONResponse(w, created)
}

// Mine returns the caller's nomination ledger for the active cycle
// @Summary Get my nomination ledger
// @Description Returns the caller's nominations in the active cycle with used and remaining slots
// @Tags Nominations
// @Produce json
// @Success 200 {object} models.NominationStatus "Nomination ledger"
// @Failure 409 {object} errorResponse "No active cycle"
// @Security BearerAuth
// @Router /api/v1/requests/mine [get]
func (h *RequestHandler) Mine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}

	status, err := h.engine.Status(userID)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	JSONResponse(w, status)
}

// Candidates lists nominee candidates with their current load
// @Summary List nominee candidates
// @Description Returns directory users with their current reviewer load, optionally filtered by name or email
// @Tags Nominations
// @Produce json
// @Param search query string false "Name or email filter"
// @Success 200 {array} models.ReviewerCandidate "Candidates"
// @Security BearerAuth
// @Router /api/v1/requests/candidates [get]
func (h *RequestHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, ok := middleware.GetUserID(r); !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}

	candidates, err := h.engine.Candidates()
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	if search := strings.TrimSpace(r.URL.Query().Get("search")); search != "" {
		filtered := candidates[:0]
		for _, c := range candidates {
			hay := strings.ToLower(c.FirstName + " " + c.LastName + " " + c.Email)
			if strings.Contains(hay, strings.ToLower(search)) {
				filtered = append(filtered, c)
			}
		}
		candidates = filtered
	}

	JSONResponse(w, candidates)
}
