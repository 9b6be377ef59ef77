package workflow

import (
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"insight360/internal/config"
	"insight360/internal/database"
	"insight360/internal/models"
	"insight360/internal/notify"
	"insight360/internal/repository"
)

// sweepActor is stamped into the actor columns of every row the
// sweeper moves, so audit queries can tell policy decisions from
// human ones.
const sweepActor = "system"

// Sweeper advances requests stranded at an approval gate once the
// nomination deadline passes. It is safe to run on any schedule: every
// update is guarded on the current state, so a second run finds nothing
// left to move.
type Sweeper struct {
	db       *sql.DB
	users    *repository.UserRepository
	cycles   *repository.CycleRepository
	requests *repository.RequestRepository
	tokens   *repository.TokenRepository
	notifier notify.Notifier
	policy   string

	// Clock is overridable in tests
	Clock func() time.Time
}

// NewSweeper creates a deadline sweeper with the given stale-request policy
func NewSweeper(
	db *sql.DB,
	users *repository.UserRepository,
	cycles *repository.CycleRepository,
	requests *repository.RequestRepository,
	tokens *repository.TokenRepository,
	notifier notify.Notifier,
	policy string,
) *Sweeper {
	return &Sweeper{
		db:       db,
		users:    users,
		cycles:   cycles,
		requests: requests,
		tokens:   tokens,
		notifier: notifier,
		policy:   policy,
		Clock:    time.Now,
	}
}

// SweepResult summarizes one sweep pass
type SweepResult struct {
	AutoApproved []int64
	AutoAccepted []int64
	Expired      []int64
}

// Total returns the number of requests the pass moved
func (r SweepResult) Total() int {
	return len(r.AutoApproved) + len(r.AutoAccepted) + len(r.Expired)
}

// Run executes one sweep pass over the active cycle
func (s *Sweeper) Run() (SweepResult, error) {
	var result SweepResult

	cycle, err := s.cycles.GetActive()
	if errors.Is(err, repository.ErrNoActiveCycle) {
		return result, nil
	}
	if err != nil {
		return result, err
	}

	now := s.Clock()
	if !cycle.NominationClosed(now) {
		return result, nil
	}

	var events []notify.Event
	err = database.WithTx(s.db, func(tx *sql.Tx) error {
		events = events[:0]
		result = SweepResult{}

		// Past the feedback deadline nothing can finish anymore
		if cycle.Phase(now) == models.PhaseComplete {
			return s.expireAll(tx, cycle, now, &result)
		}

		if s.policy == config.SweepPolicyExpire {
			return s.expirePending(tx, cycle, now, &result)
		}

		return s.advancePending(tx, cycle, now, &result, &events)
	})
	if err != nil {
		return result, err
	}

	for _, event := range events {
		s.notifier.Notify(event)
	}

	if result.Total() > 0 {
		slog.Info("Deadline sweep finished",
			"cycle_id", cycle.ID,
			"auto_approved", len(result.AutoApproved),
			"auto_accepted", len(result.AutoAccepted),
			"expired", len(result.Expired),
		)
	}

	return result, nil
}

// advancePending applies the auto-approve policy: stale manager approvals
// advance to reviewer acceptance, then stale acceptances advance to in
// progress. The order means a request can cross both gates in one pass.
func (s *Sweeper) advancePending(tx *sql.Tx, cycle *models.Cycle, now time.Time, result *SweepResult, events *[]notify.Event) error {
	approved, err := s.requests.SweepTx(tx, cycle.ID,
		models.StatePendingManagerApproval, models.StatePendingReviewerAcceptance,
		`, approval_actor = $4, approval_reason = $5, approved_at = $6`,
		sweepActor, "auto-approved at nomination deadline", now)
	if err != nil {
		return err
	}
	result.AutoApproved = approved

	// Newly approved external requests still need their access tokens
	for _, id := range approved {
		req, err := s.requests.GetByIDTx(tx, id)
		if err != nil {
			return err
		}
		if !req.IsExternal() {
			continue
		}

		event, err := s.issueExternalInvite(tx, cycle, req)
		if err != nil {
			return err
		}
		*events = append(*events, event)
	}

	accepted, err := s.requests.SweepTx(tx, cycle.ID,
		models.StatePendingReviewerAcceptance, models.StateInProgress,
		`, response_actor = $4, response_reason = $5, responded_at = $6`,
		sweepActor, "auto-accepted at nomination deadline", now)
	if err != nil {
		return err
	}
	result.AutoAccepted = accepted

	for _, id := range accepted {
		if err := s.markTokenAccepted(tx, id); err != nil {
			return err
		}
	}

	return nil
}

func (s *Sweeper) issueExternalInvite(tx *sql.Tx, cycle *models.Cycle, req *models.FeedbackRequest) (notify.Event, error) {
	plain, err := issueAccessToken(tx, s.tokens, req)
	if err != nil {
		return notify.Event{}, err
	}

	requesterName := ""
	if requester, err := s.users.GetByID(req.RequesterID); err == nil {
		requesterName = requester.FullName()
	}

	event := notify.NewEvent(notify.EventExternalInviteReady)
	event.CycleName = cycle.Name
	event.RequestID = req.ID
	event.RequesterName = requesterName
	event.ReviewerName = *req.ExternalEmail
	if req.ExternalName != nil && *req.ExternalName != "" {
		event.ReviewerName = *req.ExternalName
	}
	event.Recipient = *req.ExternalEmail
	event.Token = plain
	event.Deadline = cycle.FeedbackDeadline
	return event, nil
}

func (s *Sweeper) markTokenAccepted(tx *sql.Tx, requestID int64) error {
	err := s.tokens.UpdateStatusTx(tx, requestID, "accepted")
	if errors.Is(err, repository.ErrTokenNotFound) {
		// Internal requests carry no token
		return nil
	}
	return err
}

// expirePending applies the expire policy to the two approval gates
func (s *Sweeper) expirePending(tx *sql.Tx, cycle *models.Cycle, now time.Time, result *SweepResult) error {
	for _, state := range []models.WorkflowState{
		models.StatePendingManagerApproval,
		models.StatePendingReviewerAcceptance,
	} {
		expired, err := s.expireState(tx, cycle, state, now)
		if err != nil {
			return err
		}
		result.Expired = append(result.Expired, expired...)
	}
	return nil
}

// expireAll terminates everything still unfinished after the feedback
// deadline, including accepted in-progress requests
func (s *Sweeper) expireAll(tx *sql.Tx, cycle *models.Cycle, now time.Time, result *SweepResult) error {
	for _, state := range []models.WorkflowState{
		models.StatePendingManagerApproval,
		models.StatePendingReviewerAcceptance,
		models.StateInProgress,
	} {
		expired, err := s.expireState(tx, cycle, state, now)
		if err != nil {
			return err
		}
		result.Expired = append(result.Expired, expired...)
	}
	return nil
}

func (s *Sweeper) expireState(tx *sql.Tx, cycle *models.Cycle, state models.WorkflowState, now time.Time) ([]int64, error) {
	expired, err := s.requests.SweepTx(tx, cycle.ID,
		state, models.StateExpired,
		`, response_actor = $4, response_reason = $5, responded_at = $6, counts_toward_quota = FALSE, is_active = FALSE`,
		sweepActor, "expired at deadline", now)
	if err != nil {
		return nil, err
	}

	for _, id := range expired {
		if err := s.tokens.DeactivateTx(tx, id); err != nil {
			return nil, err
		}
	}

	return expired, nil
}
