package models

import (
	"time"
)

// WorkflowState is the single authoritative lifecycle state of a feedback
// request. Display labels are derived from it, never the other way around.
type WorkflowState string

const (
	StatePendingManagerApproval    WorkflowState = "pending_manager_approval"
	StateManagerRejected           WorkflowState = "manager_rejected"
	StatePendingReviewerAcceptance WorkflowState = "pending_reviewer_acceptance"
	StateReviewerRejected          WorkflowState = "reviewer_rejected"
	StateInProgress                WorkflowState = "in_progress"
	StateCompleted                 WorkflowState = "completed"
	StateExpired                   WorkflowState = "expired"
)

// Terminal reports whether no further transition is permitted from s.
func (s WorkflowState) Terminal() bool {
	switch s {
	case StateManagerRejected, StateReviewerRejected, StateCompleted, StateExpired:
		return true
	}
	return false
}

// CountsTowardQuota reports whether a request in state s occupies a
// nomination slot. Rejected and expired requests free their slot.
func (s WorkflowState) CountsTowardQuota() bool {
	switch s {
	case StatePendingManagerApproval, StatePendingReviewerAcceptance, StateInProgress, StateCompleted:
		return true
	}
	return false
}

// RelationshipType is the organizational relationship between requester and
// reviewer. It is auto-derived from the directory, never caller-supplied.
type RelationshipType string

const (
	RelationshipPeer                 RelationshipType = "peer"
	RelationshipManager              RelationshipType = "manager"
	RelationshipDirectReportee       RelationshipType = "direct_reportee"
	RelationshipInternalCollaborator RelationshipType = "internal_collaborator"
	RelationshipExternalStakeholder  RelationshipType = "external_stakeholder"
)

// Label returns the human-readable form used in notifications.
func (r RelationshipType) Label() string {
	switch r {
	case RelationshipPeer:
		return "Peer"
	case RelationshipManager:
		return "Manager"
	case RelationshipDirectReportee:
		return "Direct Reportee"
	case RelationshipInternalCollaborator:
		return "Internal Collaborator"
	case RelationshipExternalStakeholder:
		return "External Stakeholder"
	}
	return string(r)
}

// User is a directory entry. The manager relationship is expressed through
// ReportingManagerEmail, matching the directory feed.
type User struct {
	ID                    int64     `json:"user_id" db:"user_id"`
	Email                 string    `json:"email" db:"email"`
	FirstName             string    `json:"first_name" db:"first_name"`
	LastName              string    `json:"last_name" db:"last_name"`
	Vertical              string    `json:"vertical" db:"vertical"`
	Designation           string    `json:"designation" db:"designation"`
	ReportingManagerEmail *string   `json:"reporting_manager_email,omitempty" db:"reporting_manager_email"`
	IsActive              bool      `json:"is_active" db:"is_active"`
	CreatedAt             time.Time `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time `json:"updated_at" db:"updated_at"`
}

// FullName returns "First Last".
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// CyclePhase is derived from today's date and the cycle deadlines; no stored
// phase field is authoritative.
type CyclePhase string

const (
	PhaseNomination CyclePhase = "nomination"
	PhaseFeedback   CyclePhase = "feedback"
	PhaseComplete   CyclePhase = "complete"
)

// Cycle is one review period. At most one cycle is active at a time.
type Cycle struct {
	ID                 int64     `json:"cycle_id" db:"cycle_id"`
	Name               string    `json:"cycle_name" db:"cycle_name"`
	NominationStart    time.Time `json:"nomination_start" db:"nomination_start"`
	NominationDeadline time.Time `json:"nomination_deadline" db:"nomination_deadline"`
	FeedbackDeadline   time.Time `json:"feedback_deadline" db:"feedback_deadline"`
	IsActive           bool      `json:"is_active" db:"is_active"`
	CreatedBy          int64     `json:"created_by" db:"created_by"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

// Phase derives the current cycle phase from now. Deadline days are
// inclusive: the cycle stays in a phase through the end of its deadline day.
func (c *Cycle) Phase(now time.Time) CyclePhase {
	day := now.Truncate(24 * time.Hour)
	if !day.After(c.NominationDeadline) {
		return PhaseNomination
	}
	if !day.After(c.FeedbackDeadline) {
		return PhaseFeedback
	}
	return PhaseComplete
}

// NominationClosed reports whether the nomination deadline has passed.
func (c *Cycle) NominationClosed(now time.Time) bool {
	return c.Phase(now) != PhaseNomination
}

// ReviewerKind discriminates the two reviewer identities.
type ReviewerKind int

const (
	ReviewerInternal ReviewerKind = iota
	ReviewerExternal
)

// Reviewer is the tagged union of the two reviewer identities: an internal
// directory user or an external address with a display name. Exactly one arm
// is populated.
type Reviewer struct {
	Kind        ReviewerKind
	UserID      int64
	Email       string
	DisplayName string
}

// InternalReviewer builds the internal arm.
func InternalReviewer(userID int64) Reviewer {
	return Reviewer{Kind: ReviewerInternal, UserID: userID}
}

// ExternalReviewer builds the external arm.
func ExternalReviewer(email, displayName string) Reviewer {
	return Reviewer{Kind: ReviewerExternal, Email: email, DisplayName: displayName}
}

// FeedbackRequest is one (requester, reviewer) nomination within a cycle.
type FeedbackRequest struct {
	ID                int64            `json:"request_id" db:"request_id"`
	CycleID           int64            `json:"cycle_id" db:"cycle_id"`
	RequesterID       int64            `json:"requester_id" db:"requester_id"`
	ReviewerID        *int64           `json:"reviewer_id,omitempty" db:"reviewer_id"`
	ExternalEmail     *string          `json:"external_email,omitempty" db:"external_email"`
	ExternalName      *string          `json:"external_name,omitempty" db:"external_name"`
	Relationship      RelationshipType `json:"relationship_type" db:"relationship_type"`
	State             WorkflowState    `json:"workflow_state" db:"workflow_state"`
	ApprovalActor     *int64           `json:"approval_actor,omitempty" db:"approval_actor"`
	ApprovalReason    *string          `json:"approval_reason,omitempty" db:"approval_reason"`
	ApprovedAt        *time.Time       `json:"approved_at,omitempty" db:"approved_at"`
	ResponseActor     *string          `json:"response_actor,omitempty" db:"response_actor"`
	ResponseReason    *string          `json:"response_reason,omitempty" db:"response_reason"`
	RespondedAt       *time.Time       `json:"responded_at,omitempty" db:"responded_at"`
	CountsTowardQuota bool             `json:"counts_toward_quota" db:"counts_toward_quota"`
	IsActive          bool             `json:"is_active" db:"is_active"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
	CompletedAt       *time.Time       `json:"completed_at,omitempty" db:"completed_at"`
}

// IsExternal reports whether the reviewer is an external stakeholder.
func (r *FeedbackRequest) IsExternal() bool {
	return r.ExternalEmail != nil
}

// Reviewer reconstructs the reviewer identity union from the stored columns.
func (r *FeedbackRequest) Reviewer() Reviewer {
	if r.ExternalEmail != nil {
		name := ""
		if r.ExternalName != nil {
			name = *r.ExternalName
		}
		return ExternalReviewer(*r.ExternalEmail, name)
	}
	return InternalReviewer(*r.ReviewerID)
}

// FeedbackRequestDetail extends a request with names for listing.
type FeedbackRequestDetail struct {
	FeedbackRequest
	RequesterName     string `json:"requester_name"`
	RequesterVertical string `json:"requester_vertical"`
	ReviewerName      string `json:"reviewer_name"`
	ReviewerVertical  string `json:"reviewer_vertical"`
	DraftCount        int    `json:"draft_count"`
}

// ExternalAccessToken is the bearer credential for one external reviewer on
// one request. The token string is stored only as a hash.
type ExternalAccessToken struct {
	ID         int64      `json:"token_id" db:"token_id"`
	RequestID  int64      `json:"request_id" db:"request_id"`
	CycleID    int64      `json:"cycle_id" db:"cycle_id"`
	Email      string     `json:"email" db:"email"`
	TokenHash  string     `json:"-" db:"token_hash"`
	Status     string     `json:"status" db:"status"`
	IsActive   bool       `json:"is_active" db:"is_active"`
	IssuedAt   time.Time  `json:"issued_at" db:"issued_at"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty" db:"consumed_at"`
}

// QuestionType distinguishes 1-5 ratings from free text.
type QuestionType string

const (
	QuestionRating QuestionType = "rating"
	QuestionText   QuestionType = "text"
)

// Question is one catalog entry for a relationship category.
type Question struct {
	ID           int64            `json:"question_id" db:"question_id"`
	Relationship RelationshipType `json:"relationship_type" db:"relationship_type"`
	Text         string           `json:"question_text" db:"question_text"`
	Type         QuestionType     `json:"question_type" db:"question_type"`
	IsRequired   bool             `json:"is_required" db:"is_required"`
	SortOrder    int              `json:"sort_order" db:"sort_order"`
	IsActive     bool             `json:"is_active" db:"is_active"`
}

// Answer is one submitted (or drafted) response to a question. For rating
// questions RatingValue is set; for text questions ResponseValue is.
type Answer struct {
	QuestionID    int64   `json:"question_id"`
	ResponseValue *string `json:"response_value,omitempty"`
	RatingValue   *int    `json:"rating_value,omitempty"`
}

// NominationStatus is the requester-side ledger view.
type NominationStatus struct {
	ActiveNominations   []FeedbackRequestDetail `json:"active_nominations"`
	RejectedNominations []FeedbackRequestDetail `json:"rejected_nominations"`
	CountedTotal        int                     `json:"counted_total"`
	RemainingSlots      int                     `json:"remaining_slots"`
}

// ReviewerCandidate is a directory entry annotated with nominee load for the
// selection listing.
type ReviewerCandidate struct {
	User
	NominationCount int  `json:"nomination_count"`
	AtLimit         bool `json:"at_limit"`
}

// EmailLog records one notification delivery attempt.
type EmailLog struct {
	ID           int64     `json:"log_id" db:"log_id"`
	EventID      string    `json:"event_id" db:"event_id"`
	EventKind    string    `json:"event_kind" db:"event_kind"`
	Recipient    string    `json:"recipient" db:"recipient"`
	Subject      string    `json:"subject" db:"subject"`
	Status       string    `json:"status" db:"status"`
	ErrorMessage *string   `json:"error_message,omitempty" db:"error_message"`
	SentAt       time.Time `json:"sent_at" db:"sent_at"`
}
