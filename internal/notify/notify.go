package notify

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"insight360/internal/models"
)

// EventKind identifies the workflow moment an event describes
type EventKind string

const (
	// EventManagerApprovalRequested fires when nominations land in the
	// manager's approval queue
	EventManagerApprovalRequested EventKind = "manager_approval_requested"
	// EventNominationApproved fires when a manager approves a nomination
	EventNominationApproved EventKind = "nomination_approved"
	// EventNominationRejected fires when a manager or reviewer rejects
	EventNominationRejected EventKind = "nomination_rejected"
	// EventExternalInviteReady fires when an external reviewer's access
	// token has been issued; this is the only place the plaintext token
	// leaves the system
	EventExternalInviteReady EventKind = "external_invite_ready"
	// EventReviewerInviteReady fires when an internal reviewer has a
	// request awaiting acceptance
	EventReviewerInviteReady EventKind = "reviewer_invite_ready"
	// EventFeedbackCompleted fires when feedback is submitted
	EventFeedbackCompleted EventKind = "feedback_completed"
)

// Event is one notification payload. Fields are populated per kind; Token
// is set only on EventExternalInviteReady.
type Event struct {
	ID            string
	Kind          EventKind
	OccurredAt    time.Time
	CycleName     string
	RequestID     int64
	RequesterName string
	ReviewerName  string
	Recipient     string
	Relationship  models.RelationshipType
	Reason        string
	Token         string
	Deadline      time.Time
}

// NewEvent builds an event with a fresh ID and timestamp
func NewEvent(kind EventKind) Event {
	return Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		OccurredAt: time.Now(),
	}
}

// Notifier delivers workflow events. Delivery failures must not fail the
// workflow transition that produced the event.
type Notifier interface {
	Notify(event Event)
}

// LogNotifier writes events to the structured log. It backs development
// setups and tests where no SMTP relay is available.
type LogNotifier struct{}

// Notify logs the event
func (LogNotifier) Notify(event Event) {
	slog.Info("notification event",
		"event_id", event.ID,
		"kind", event.Kind,
		"request_id", event.RequestID,
		"recipient", event.Recipient,
	)
}

// Multi fans an event out to several notifiers
type Multi []Notifier

// Notify delivers the event to every notifier in order
func (m Multi) Notify(event Event) {
	for _, n := range m {
		n.Notify(event)
	}
}
