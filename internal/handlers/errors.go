package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"insight360/internal/workflow"
)

// errorResponse is the JSON error envelope all handlers return
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError sends the JSON error envelope
func writeError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = JSONResponse(w, errorResponse{Error: message, Code: code})
}

// writeWorkflowError maps a workflow error onto an HTTP status and stable
// error code. Unknown errors become opaque 500s.
func writeWorkflowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, workflow.ErrNoActiveCycle):
		writeError(w, http.StatusConflict, "no active review cycle", "no_active_cycle")
	case errors.Is(err, workflow.ErrNominationClosed):
		writeError(w, http.StatusConflict, "nomination phase is closed", "nomination_closed")
	case errors.Is(err, workflow.ErrQuotaExceeded):
		writeError(w, http.StatusConflict, "nomination quota exceeded", "quota_exceeded")
	case errors.Is(err, workflow.ErrReviewerAtCapacity):
		writeError(w, http.StatusConflict, "reviewer is at capacity", "reviewer_at_capacity")
	case errors.Is(err, workflow.ErrDuplicateNomination):
		writeError(w, http.StatusConflict, "reviewer already nominated in this cycle", "duplicate_nomination")
	case errors.Is(err, workflow.ErrSelfManagerNomination):
		writeError(w, http.StatusUnprocessableEntity, "cannot nominate yourself or your reporting manager", "self_manager_nomination")
	case errors.Is(err, workflow.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "not authorized for this request", "unauthorized")
	case errors.Is(err, workflow.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "request state does not permit this operation", "invalid_transition")
	case errors.Is(err, workflow.ErrReasonRequired):
		writeError(w, http.StatusUnprocessableEntity, "a reason is required to reject", "reason_required")
	case errors.Is(err, workflow.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "invalid or expired access token", "invalid_token")
	case errors.Is(err, workflow.ErrIncompleteAnswers):
		writeError(w, http.StatusUnprocessableEntity, "required questions are unanswered", "incomplete_answers")
	case errors.Is(err, workflow.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found", "not_found")
	default:
		slog.Error("Unhandled workflow error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error", "internal")
	}
}
