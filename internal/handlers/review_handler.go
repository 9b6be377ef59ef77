package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"insight360/internal/middleware"
	"insight360/internal/models"
	"insight360/internal/workflow"
)

// ReviewHandler handles the internal reviewer's side of the workflow
type ReviewHandler struct {
	engine *workflow.Engine
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(engine *workflow.Engine) *ReviewHandler {
	return &ReviewHandler{engine: engine}
}

type reviewQueueResponse struct {
	Pending  []models.FeedbackRequestDetail `json:"pending"`
	Assigned []models.FeedbackRequestDetail `json:"assigned"`
}

// Queue lists the caller's pending invitations and accepted requests
// @Summary Get my review queue
// @Description Returns invitations awaiting the caller's decision and reviews in progress
// @Tags Reviews
// @Produce json
// @Success 200 {object} reviewQueueResponse "Review queue"
// @Failure 409 {object} errorResponse "No active cycle"
// @Security BearerAuth
// @Router /api/v1/reviews [get]
func (h *ReviewHandler) Queue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}

	pending, err := h.engine.PendingReviews(userID)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	assigned, err := h.engine.AssignedReviews(userID)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	JSONResponse(w, reviewQueueResponse{Pending: pending, Assigned: assigned})
}

type reviewDecisionRequest struct {
	RequestID int64  `json:"request_id"`
	Accept    bool   `json:"accept"`
	Reason    string `json:"reason"`
}

// Decide records the reviewer's accept or decline decision
// @Summary Accept or decline a review invitation
// @Description Accepts the invitation into an in-progress review, or declines it with a reason
// @Tags Reviews
// @Accept json
// @Produce json
// @Param request body reviewDecisionRequest true "Decision"
// @Success 200 {object} models.FeedbackRequest "Updated request"
// @Failure 403 {object} errorResponse "Not the nominated reviewer"
// @Failure 409 {object} errorResponse "Request not awaiting acceptance"
// @Failure 422 {object} errorResponse "Missing decline reason"
// @Security BearerAuth
// @Router /api/v1/reviews/decide [post]
func (h *ReviewHandler) Decide(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}

	var body reviewDecisionRequest
	if err := decodeJSON(r, &body); err != nil || body.RequestID == 0 {
		writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}

	updated, err := h.engine.DecideReview(userID, body.RequestID, body.Accept, body.Reason)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	slog.Info("Review decision recorded",
		"request_id", body.RequestID,
		"reviewer_id", userID,
		"accepted", body.Accept,
	)
	JSONResponse(w, updated)
}

type questionsResponse struct {
	Questions []models.Question `json:"questions"`
	Drafts    []models.Answer   `json:"drafts"`
}

// Questions returns the question set and saved drafts for a request
// @Summary Get the question set for a review
// @Description Returns the questions and any saved draft answers for one of the caller's reviews
// @Tags Reviews
// @Produce json
// @Param request_id query int true "Request ID"
// @Success 200 {object} questionsResponse "Questions and drafts"
// @Failure 403 {object} errorResponse "Not the nominated reviewer"
// @Failure 404 {object} errorResponse "Request not found"
// @Security BearerAuth
// @Router /api/v1/reviews/questions [get]
func (h *ReviewHandler) Questions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}

	requestID, err := strconv.ParseInt(r.URL.Query().Get("request_id"), 10, 64)
	if err != nil || requestID <= 0 {
		writeError(w, http.StatusBadRequest, "request_id is required", "bad_request")
		return
	}

	req, err := h.engine.GetRequest(requestID)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	if req.IsExternal() || req.ReviewerID == nil || *req.ReviewerID != userID {
		writeWorkflowError(w, workflow.ErrUnauthorized)
		return
	}

	questions, err := h.engine.QuestionsFor(requestID)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	drafts, err := h.engine.Drafts(requestID)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	JSONResponse(w, questionsResponse{Questions: questions, Drafts: drafts})
}

type answersRequest struct {
	RequestID int64           `json:"request_id"`
	Answers   []models.Answer `json:"answers"`
}

// SaveDraft stores partial answers for an in-progress request
// @Summary Save a feedback draft
// @Description Upserts partial answers; drafts may be saved any number of times before submission
// @Tags Reviews
// @Accept json
// @Param request body answersRequest true "Draft answers"
// @Success 204 "Draft saved"
// @Failure 403 {object} errorResponse "Not the nominated reviewer"
// @Failure 409 {object} errorResponse "Request not in progress"
// @Security BearerAuth
// @Router /api/v1/reviews/draft [put]
func (h *ReviewHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}

	var body answersRequest
	if err := decodeJSON(r, &body); err != nil || body.RequestID == 0 {
		writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}

	if err := h.engine.SaveDraft(userID, body.RequestID, body.Answers); err != nil {
		writeWorkflowError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Submit finalizes the reviewer's answers
// @Summary Submit feedback
// @Description Validates that every required question is answered and completes the review
// @Tags Reviews
// @Accept json
// @Produce json
// @Param request body answersRequest true "Final answers"
// @Success 200 {object} models.FeedbackRequest "Completed request"
// @Failure 403 {object} errorResponse "Not the nominated reviewer"
// @Failure 409 {object} errorResponse "Request not in progress"
// @Failure 422 {object} errorResponse "Required questions unanswered"
// @Security BearerAuth
// @Router /api/v1/reviews/submit [post]
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}

	var body answersRequest
	if err := decodeJSON(r, &body); err != nil || body.RequestID == 0 {
		writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}

	updated, err := h.engine.SubmitFeedback(userID, body.RequestID, body.Answers)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	slog.Info("Feedback submitted", "request_id", body.RequestID, "reviewer_id", userID)
	JSONResponse(w, updated)
}
