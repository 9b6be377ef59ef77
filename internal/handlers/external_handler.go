package handlers

import (
	"log/slog"
	"net/http"

	"insight360/internal/external"
	"insight360/internal/models"
)

// ExternalHandler serves external reviewers through access tokens
// instead of JWT sessions. Every endpoint re-validates the token.
type ExternalHandler struct {
	gateway *external.Gateway
}

// NewExternalHandler creates a new external portal handler
func NewExternalHandler(gateway *external.Gateway) *ExternalHandler {
	return &ExternalHandler{gateway: gateway}
}

type externalCredentials struct {
	Email     string `json:"email"`
	Token     string `json:"token"`
	RequestID int64  `json:"request_id"`
}

type externalActionRequest struct {
	externalCredentials
	Reason  string          `json:"reason"`
	Answers []models.Answer `json:"answers"`
}

// Validate checks an access code and returns the matching session
// @Summary Validate an external access code
// @Description Checks the email and access code pair and returns the bound review session
// @Tags External
// @Accept json
// @Produce json
// @Param request body externalCredentials true "Email and access code"
// @Success 200 {object} external.Session "Review session"
// @Failure 401 {object} errorResponse "Invalid or expired access code"
// @Router /external/validate [post]
func (h *ExternalHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body externalCredentials
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}

	session, err := h.gateway.Validate(body.Email, body.Token)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	JSONResponse(w, session)
}

// Accept records an external reviewer's acceptance
// @Summary Accept a review invitation
// @Description Moves the request into progress; the access code must be bound to the request
// @Tags External
// @Accept json
// @Produce json
// @Param request body externalActionRequest true "Credentials and request"
// @Success 200 {object} models.FeedbackRequest "Updated request"
// @Failure 401 {object} errorResponse "Invalid or expired access code"
// @Failure 409 {object} errorResponse "Request not awaiting acceptance"
// @Router /external/accept [post]
func (h *ExternalHandler) Accept(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body externalActionRequest
	if err := decodeJSON(r, &body); err != nil || body.RequestID == 0 {
		writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}

	updated, err := h.gateway.Accept(body.Email, body.Token, body.RequestID)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	slog.Info("External reviewer accepted", "request_id", body.RequestID)
	JSONResponse(w, updated)
}

// Decline records an external reviewer's decline with a reason
// @Summary Decline a review invitation
// @Description Declines the invitation and permanently deactivates the access code
// @Tags External
// @Accept json
// @Produce json
// @Param request body externalActionRequest true "Credentials, request and reason"
// @Success 200 {object} models.FeedbackRequest "Updated request"
// @Failure 401 {object} errorResponse "Invalid or expired access code"
// @Failure 422 {object} errorResponse "Missing decline reason"
// @Router /external/decline [post]
func (h *ExternalHandler) Decline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body externalActionRequest
	if err := decodeJSON(r, &body); err != nil || body.RequestID == 0 {
		writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}

	updated, err := h.gateway.Decline(body.Email, body.Token, body.RequestID, body.Reason)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	slog.Info("External reviewer declined", "request_id", body.RequestID)
	JSONResponse(w, updated)
}

// SaveDraft stores partial answers for an external reviewer
// @Summary Save an external feedback draft
// @Description Upserts partial answers for an in-progress external review
// @Tags External
// @Accept json
// @Param request body externalActionRequest true "Credentials, request and draft answers"
// @Success 204 "Draft saved"
// @Failure 401 {object} errorResponse "Invalid or expired access code"
// @Failure 409 {object} errorResponse "Request not in progress"
// @Router /external/draft [put]
func (h *ExternalHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body externalActionRequest
	if err := decodeJSON(r, &body); err != nil || body.RequestID == 0 {
		writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}

	if err := h.gateway.SaveDraft(body.Email, body.Token, body.RequestID, body.Answers); err != nil {
		writeWorkflowError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Submit finalizes an external reviewer's answers
// @Summary Submit external feedback
// @Description Completes the review and permanently deactivates the access code
// @Tags External
// @Accept json
// @Produce json
// @Param request body externalActionRequest true "Credentials, request and final answers"
// @Success 200 {object} models.FeedbackRequest "Completed request"
// @Failure 401 {object} errorResponse "Invalid or expired access code"
// @Failure 422 {object} errorResponse "Required questions unanswered"
// @Router /external/submit [post]
func (h *ExternalHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body externalActionRequest
	if err := decodeJSON(r, &body); err != nil || body.RequestID == 0 {
		writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}

	updated, err := h.gateway.SubmitFeedback(body.Email, body.Token, body.RequestID, body.Answers)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	slog.Info("External feedback submitted", "request_id", body.RequestID)
	JSONResponse(w, updated)
}
