package handlers

import (
	"log/slog"
	"net/http"

	"insight360/internal/middleware"
	"insight360/internal/workflow"
)

// ApprovalHandler handles the manager approval gate
type ApprovalHandler struct {
	engine *workflow.Engine
}

// NewApprovalHandler creates a new approval handler
func NewApprovalHandler(engine *workflow.Engine) *ApprovalHandler {
	return &ApprovalHandler{engine: engine}
}

// Pending lists requests waiting on the caller's approval
// @Summary List pending approvals
// @Description Returns nominations by the caller's direct reports that await a decision
// @Tags Approvals
// @Produce json
// @Success 200 {array} models.FeedbackRequestDetail "Pending approvals"
// @Failure 409 {object} errorResponse "No active cycle"
// @Security BearerAuth
// @Router /api/v1/approvals [get]
func (h *ApprovalHandler) Pending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}

	pending, err := h.engine.PendingApprovals(userID)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	JSONResponse(w, pending)
}

type approvalDecisionRequest struct {
	RequestID int64  `json:"request_id"`
	Approve   bool   `json:"approve"`
	Reason    string `json:"reason"`
}

// Decide records the manager's approve or reject decision
// @Summary Decide a pending approval
// @Description Approves or rejects a nomination; rejection requires a reason
// @Tags Approvals
// @Accept json
// @Produce json
// @Param request body approvalDecisionRequest true "Decision"
// @Success 200 {object} models.FeedbackRequest "Updated request"
// @Failure 403 {object} errorResponse "Not the reporting manager"
// @Failure 409 {object} errorResponse "Request not pending approval"
// @Failure 422 {object} errorResponse "Missing rejection reason"
// @Security BearerAuth
// @Router /api/v1/approvals/decide [post]
func (h *ApprovalHandler) Decide(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}

	var body approvalDecisionRequest
	if err := decodeJSON(r, &body); err != nil || body.RequestID == 0 {
		writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}

	updated, err := h.engine.DecideApproval(userID, body.RequestID, body.Approve, body.Reason)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	slog.Info("Approval decision recorded",
		"request_id", body.RequestID,
		"manager_id", userID,
		"approved", body.Approve,
	)
	JSONResponse(w, updated)
}
