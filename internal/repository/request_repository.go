package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"insight360/internal/models"
)

var (
	ErrRequestNotFound     = errors.New("feedback request not found")
	ErrDuplicateNomination = errors.New("reviewer already nominated in this cycle")
	ErrStateConflict       = errors.New("request is not in the expected state")
)

const requestColumns = `request_id, cycle_id, requester_id, reviewer_id, external_email, external_name,
	       relationship_type, workflow_state, approval_actor, approval_reason, approved_at,
	       response_actor, response_reason, responded_at, counts_toward_quota, is_active,
	       created_at, completed_at`

// quotaStates are the workflow states that occupy a nomination slot
const quotaStates = `('pending_manager_approval', 'pending_reviewer_acceptance', 'in_progress', 'completed')`

// RequestRepository handles feedback request database operations
type RequestRepository struct {
	db *sql.DB
}

// NewRequestRepository creates a new feedback request repository
func NewRequestRepository(db *sql.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func scanRequest(row interface{ Scan(...any) error }) (*models.FeedbackRequest, error) {
	req := &models.FeedbackRequest{}
	err := row.Scan(
		&req.ID,
		&req.CycleID,
		&req.RequesterID,
		&req.ReviewerID,
		&req.ExternalEmail,
		&req.ExternalName,
		&req.Relationship,
		&req.State,
		&req.ApprovalActor,
		&req.ApprovalReason,
		&req.ApprovedAt,
		&req.ResponseActor,
		&req.ResponseReason,
		&req.RespondedAt,
		&req.CountsTowardQuota,
		&req.IsActive,
		&req.CreatedAt,
		&req.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return req, nil
}

// CreateTx inserts a new nomination within the caller's transaction
func (r *RequestRepository) CreateTx(tx *sql.Tx, req *models.FeedbackRequest) error {
	query := `
		INSERT INTO feedback_requests
			(cycle_id, requester_id, reviewer_id, external_email, external_name, relationship_type, workflow_state, counts_toward_quota, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, TRUE, $8)
		RETURNING request_id
	`

	now := time.Now()
	err := tx.QueryRow(
		query,
		req.CycleID,
		req.RequesterID,
		req.ReviewerID,
		req.ExternalEmail,
		req.ExternalName,
		req.Relationship,
		req.State,
		now,
	).Scan(&req.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateNomination
		}
		return fmt.Errorf("failed to create feedback request: %w", err)
	}

	req.CountsTowardQuota = true
	req.IsActive = true
	req.CreatedAt = now
	return nil
}

// GetByID retrieves a feedback request by ID
func (r *RequestRepository) GetByID(id int64) (*models.FeedbackRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM feedback_requests WHERE request_id = $1`

	req, err := scanRequest(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback request: %w", err)
	}

	return req, nil
}

// GetByIDTx retrieves and row-locks a feedback request within a transaction
func (r *RequestRepository) GetByIDTx(tx *sql.Tx, id int64) (*models.FeedbackRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM feedback_requests WHERE request_id = $1 FOR UPDATE`

	req, err := scanRequest(tx.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback request: %w", err)
	}

	return req, nil
}

// CountQuotaUsedTx counts the requester's slot-occupying nominations in the
// cycle. Call with the requester row locked to serialize concurrent batches.
func (r *RequestRepository) CountQuotaUsedTx(tx *sql.Tx, cycleID, requesterID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM feedback_requests
		WHERE cycle_id = $1
		  AND requester_id = $2
		  AND counts_toward_quota = TRUE
		  AND workflow_state IN ` + quotaStates

	var count int
	if err := tx.QueryRow(query, cycleID, requesterID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count nominations: %w", err)
	}

	return count, nil
}

// CountReviewerLoadTx counts slot-occupying nominations naming the internal
// reviewer in the cycle
func (r *RequestRepository) CountReviewerLoadTx(tx *sql.Tx, cycleID, reviewerID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM feedback_requests
		WHERE cycle_id = $1
		  AND reviewer_id = $2
		  AND counts_toward_quota = TRUE
		  AND workflow_state IN ` + quotaStates

	var count int
	if err := tx.QueryRow(query, cycleID, reviewerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reviewer load: %w", err)
	}

	return count, nil
}

// ExistsNominationTx reports whether the requester already has an active
// nomination for the given reviewer identity in the cycle
func (r *RequestRepository) ExistsNominationTx(tx *sql.Tx, cycleID, requesterID int64, reviewer models.Reviewer) (bool, error) {
	var query string
	var arg any
	if reviewer.Kind == models.ReviewerExternal {
		query = `
			SELECT EXISTS (
				SELECT 1 FROM feedback_requests
				WHERE cycle_id = $1 AND requester_id = $2
				  AND LOWER(external_email) = LOWER($3) AND is_active
			)`
		arg = reviewer.Email
	} else {
		query = `
			SELECT EXISTS (
				SELECT 1 FROM feedback_requests
				WHERE cycle_id = $1 AND requester_id = $2
				  AND reviewer_id = $3 AND is_active
			)`
		arg = reviewer.UserID
	}

	var exists bool
	if err := tx.QueryRow(query, cycleID, requesterID, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check nomination: %w", err)
	}

	return exists, nil
}

// transitionTx performs a state-guarded update. The WHERE clause on the
// current state makes concurrent deciders lose cleanly: zero rows affected
// means the request moved first.
func (r *RequestRepository) transitionTx(tx *sql.Tx, id int64, from, to models.WorkflowState, set string, args ...any) error {
	query := fmt.Sprintf(`
		UPDATE feedback_requests
		SET workflow_state = $1%s
		WHERE request_id = $2 AND workflow_state = $3
	`, set)

	all := append([]any{to, id, from}, args...)
	result, err := tx.Exec(query, all...)
	if err != nil {
		return fmt.Errorf("failed to transition request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrStateConflict
	}

	return nil
}

// ApproveTx moves a request from manager approval to reviewer acceptance
func (r *RequestRepository) ApproveTx(tx *sql.Tx, id, actorID int64, reason *string, at time.Time) error {
	return r.transitionTx(tx, id,
		models.StatePendingManagerApproval, models.StatePendingReviewerAcceptance,
		`, approval_actor = $4, approval_reason = $5, approved_at = $6`,
		actorID, reason, at)
}

// RejectByManagerTx terminates a request at the manager approval gate,
// freeing its nomination slot
func (r *RequestRepository) RejectByManagerTx(tx *sql.Tx, id, actorID int64, reason string, at time.Time) error {
	return r.transitionTx(tx, id,
		models.StatePendingManagerApproval, models.StateManagerRejected,
		`, approval_actor = $4, approval_reason = $5, approved_at = $6, counts_toward_quota = FALSE, is_active = FALSE`,
		actorID, reason, at)
}

// AcceptTx moves a request from reviewer acceptance to in progress
func (r *RequestRepository) AcceptTx(tx *sql.Tx, id int64, actor string, at time.Time) error {
	return r.transitionTx(tx, id,
		models.StatePendingReviewerAcceptance, models.StateInProgress,
		`, response_actor = $4, responded_at = $5`,
		actor, at)
}

// DeclineTx terminates a request at the reviewer acceptance gate, freeing
// its nomination slot
func (r *RequestRepository) DeclineTx(tx *sql.Tx, id int64, actor, reason string, at time.Time) error {
	return r.transitionTx(tx, id,
		models.StatePendingReviewerAcceptance, models.StateReviewerRejected,
		`, response_actor = $4, response_reason = $5, responded_at = $6, counts_toward_quota = FALSE, is_active = FALSE`,
		actor, reason, at)
}

// CompleteTx finalizes an in-progress request
func (r *RequestRepository) CompleteTx(tx *sql.Tx, id int64, at time.Time) error {
	return r.transitionTx(tx, id,
		models.StateInProgress, models.StateCompleted,
		`, completed_at = $4`,
		at)
}

// SweepTx advances every request in the cycle still sitting in fromState,
// returning the affected IDs. Repeating the call is a no-op because the
// state guard matches nothing the second time.
func (r *RequestRepository) SweepTx(tx *sql.Tx, cycleID int64, from, to models.WorkflowState, set string, args ...any) ([]int64, error) {
	query := fmt.Sprintf(`
		UPDATE feedback_requests
		SET workflow_state = $1%s
		WHERE cycle_id = $2 AND workflow_state = $3
		RETURNING request_id
	`, set)

	all := append([]any{to, cycleID, from}, args...)
	rows, err := tx.Query(query, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to sweep requests: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan swept request: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

const detailQuery = `
	SELECT r.request_id, r.cycle_id, r.requester_id, r.reviewer_id, r.external_email, r.external_name,
	       r.relationship_type, r.workflow_state, r.approval_actor, r.approval_reason, r.approved_at,
	       r.response_actor, r.response_reason, r.responded_at, r.counts_toward_quota, r.is_active,
	       r.created_at, r.completed_at,
	       req.first_name || ' ' || req.last_name,
	       req.vertical,
	       COALESCE(rev.first_name || ' ' || rev.last_name, COALESCE(r.external_name, r.external_email, '')),
	       COALESCE(rev.vertical, ''),
	       (SELECT COUNT(*) FROM draft_responses d WHERE d.request_id = r.request_id)
	FROM feedback_requests r
	JOIN users req ON req.user_id = r.requester_id
	LEFT JOIN users rev ON rev.user_id = r.reviewer_id
`

func (r *RequestRepository) queryDetails(query string, args ...any) ([]models.FeedbackRequestDetail, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback requests: %w", err)
	}
	defer rows.Close()

	var details []models.FeedbackRequestDetail
	for rows.Next() {
		var d models.FeedbackRequestDetail
		err := rows.Scan(
			&d.ID,
			&d.CycleID,
			&d.RequesterID,
			&d.ReviewerID,
			&d.ExternalEmail,
			&d.ExternalName,
			&d.Relationship,
			&d.State,
			&d.ApprovalActor,
			&d.ApprovalReason,
			&d.ApprovedAt,
			&d.ResponseActor,
			&d.ResponseReason,
			&d.RespondedAt,
			&d.CountsTowardQuota,
			&d.IsActive,
			&d.CreatedAt,
			&d.CompletedAt,
			&d.RequesterName,
			&d.RequesterVertical,
			&d.ReviewerName,
			&d.ReviewerVertical,
			&d.DraftCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback request: %w", err)
		}
		details = append(details, d)
	}

	return details, rows.Err()
}

// ListByRequester lists all of a requester's nominations in the cycle
func (r *RequestRepository) ListByRequester(cycleID, requesterID int64) ([]models.FeedbackRequestDetail, error) {
	return r.queryDetails(detailQuery+`
		WHERE r.cycle_id = $1 AND r.requester_id = $2
		ORDER BY r.created_at`, cycleID, requesterID)
}

// ListPendingApprovalForManager lists requests awaiting the manager's
// decision across their direct reports
func (r *RequestRepository) ListPendingApprovalForManager(cycleID int64, managerEmail string) ([]models.FeedbackRequestDetail, error) {
	return r.queryDetails(detailQuery+`
		WHERE r.cycle_id = $1
		  AND r.workflow_state = 'pending_manager_approval'
		  AND LOWER(req.reporting_manager_email) = LOWER($2)
		ORDER BY r.created_at`, cycleID, managerEmail)
}

// ListForReviewer lists requests naming the internal reviewer in the given
// states
func (r *RequestRepository) ListForReviewer(cycleID, reviewerID int64, states ...models.WorkflowState) ([]models.FeedbackRequestDetail, error) {
	list := make([]string, len(states))
	for i, s := range states {
		list[i] = fmt.Sprintf("'%s'", s)
	}

	return r.queryDetails(detailQuery+fmt.Sprintf(`
		WHERE r.cycle_id = $1
		  AND r.reviewer_id = $2
		  AND r.workflow_state IN (%s)
		ORDER BY r.created_at`, strings.Join(list, ", ")), cycleID, reviewerID)
}
