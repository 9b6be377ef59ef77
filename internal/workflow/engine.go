package workflow

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"insight360/internal/auth"
	"insight360/internal/database"
	"insight360/internal/models"
	"insight360/internal/notify"
	"insight360/internal/repository"
)

// Engine coordinates the feedback request workflow: nomination, the two
// approval gates, feedback capture and completion. All state transitions
// run through guarded updates inside transactions; notifications fire only
// after the transaction commits.
type Engine struct {
	db        *sql.DB
	users     *repository.UserRepository
	cycles    *repository.CycleRepository
	requests  *repository.RequestRepository
	tokens    *repository.TokenRepository
	questions *repository.QuestionRepository
	responses *repository.ResponseRepository
	notifier  notify.Notifier
	quota     int

	// Clock is overridable in tests
	Clock func() time.Time
}

// NewEngine creates a workflow engine
func NewEngine(
	db *sql.DB,
	users *repository.UserRepository,
	cycles *repository.CycleRepository,
	requests *repository.RequestRepository,
	tokens *repository.TokenRepository,
	questions *repository.QuestionRepository,
	responses *repository.ResponseRepository,
	notifier notify.Notifier,
	quota int,
) *Engine {
	return &Engine{
		db:        db,
		users:     users,
		cycles:    cycles,
		requests:  requests,
		tokens:    tokens,
		questions: questions,
		responses: responses,
		notifier:  notifier,
		quota:     quota,
		Clock:     time.Now,
	}
}

// Quota returns the per-requester nomination limit
func (e *Engine) Quota() int {
	return e.quota
}

// ActiveCycle returns the single open review cycle
func (e *Engine) ActiveCycle() (*models.Cycle, error) {
	cycle, err := e.cycles.GetActive()
	if errors.Is(err, repository.ErrNoActiveCycle) {
		return nil, ErrNoActiveCycle
	}
	return cycle, err
}

// CreateNominations records a batch of nominations for the requester. The
// batch is atomic: if any reviewer fails validation or the batch would
// overflow the requester's quota, nothing is created.
func (e *Engine) CreateNominations(requesterID int64, reviewers []models.Reviewer) ([]models.FeedbackRequest, error) {
	if len(reviewers) == 0 {
		return nil, nil
	}

	cycle, err := e.ActiveCycle()
	if err != nil {
		return nil, err
	}
	if cycle.NominationClosed(e.Clock()) {
		return nil, ErrNominationClosed
	}

	requester, err := e.users.GetByID(requesterID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	// Resolve identities and derive relationships before touching the ledger
	prepared := make([]models.FeedbackRequest, 0, len(reviewers))
	var internalIDs []int64
	for _, reviewer := range reviewers {
		req := models.FeedbackRequest{
			CycleID:     cycle.ID,
			RequesterID: requesterID,
			State:       models.StatePendingManagerApproval,
		}

		if reviewer.Kind == models.ReviewerExternal {
			email := strings.TrimSpace(strings.ToLower(reviewer.Email))
			if email == "" {
				return nil, fmt.Errorf("%w: external reviewer email is empty", ErrNotFound)
			}
			if strings.EqualFold(email, requester.Email) {
				return nil, ErrSelfManagerNomination
			}
			if requester.ReportingManagerEmail != nil &&
				strings.EqualFold(email, *requester.ReportingManagerEmail) {
				return nil, ErrSelfManagerNomination
			}

			// A directory email is one identity, not two: it resolves to
			// the internal arm so self/manager checks and deduplication
			// cannot be sidestepped by retyping a colleague's address.
			target, err := e.users.GetByEmail(email)
			switch {
			case err == nil:
				reviewer = models.InternalReviewer(target.ID)
			case errors.Is(err, repository.ErrUserNotFound):
				name := reviewer.DisplayName
				req.ExternalEmail = &email
				req.ExternalName = &name
				req.Relationship = models.RelationshipExternalStakeholder
				prepared = append(prepared, req)
				continue
			default:
				return nil, err
			}
		}

		if reviewer.UserID == requesterID {
			return nil, ErrSelfManagerNomination
		}
		target, err := e.users.GetByID(reviewer.UserID)
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		rel, err := DeriveRelationship(requester, target)
		if err != nil {
			return nil, err
		}
		id := target.ID
		req.ReviewerID = &id
		req.Relationship = rel
		internalIDs = append(internalIDs, id)
		prepared = append(prepared, req)
	}

	created := make([]models.FeedbackRequest, len(prepared))
	err = database.WithTx(e.db, func(tx *sql.Tx) error {
		// Locking the requester and every named internal reviewer
		// serializes competing batches over the same quota rows
		lock := append([]int64{requesterID}, internalIDs...)
		if err := e.users.LockTx(tx, lock); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return ErrNotFound
			}
			return err
		}

		used, err := e.requests.CountQuotaUsedTx(tx, cycle.ID, requesterID)
		if err != nil {
			return err
		}
		if used+len(prepared) > e.quota {
			return ErrQuotaExceeded
		}

		for i := range prepared {
			req := prepared[i]

			exists, err := e.requests.ExistsNominationTx(tx, cycle.ID, requesterID, req.Reviewer())
			if err != nil {
				return err
			}
			if exists {
				return ErrDuplicateNomination
			}

			if req.ReviewerID != nil {
				load, err := e.requests.CountReviewerLoadTx(tx, cycle.ID, *req.ReviewerID)
				if err != nil {
					return err
				}
				if load >= e.quota {
					return ErrReviewerAtCapacity
				}
			}

			if err := e.requests.CreateTx(tx, &req); err != nil {
				if errors.Is(err, repository.ErrDuplicateNomination) {
					return ErrDuplicateNomination
				}
				return err
			}
			created[i] = req
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	e.notifyManagerApproval(cycle, requester)
	return created, nil
}

// Status returns the requester's nomination ledger view for the active cycle
func (e *Engine) Status(requesterID int64) (*models.NominationStatus, error) {
	cycle, err := e.ActiveCycle()
	if err != nil {
		return nil, err
	}

	all, err := e.requests.ListByRequester(cycle.ID, requesterID)
	if err != nil {
		return nil, err
	}

	status := &models.NominationStatus{
		ActiveNominations:   []models.FeedbackRequestDetail{},
		RejectedNominations: []models.FeedbackRequestDetail{},
	}
	for _, d := range all {
		if d.State.CountsTowardQuota() {
			status.ActiveNominations = append(status.ActiveNominations, d)
			status.CountedTotal++
		} else {
			status.RejectedNominations = append(status.RejectedNominations, d)
		}
	}

	status.RemainingSlots = e.quota - status.CountedTotal
	if status.RemainingSlots < 0 {
		status.RemainingSlots = 0
	}

	return status, nil
}

// Candidates lists active users annotated with their reviewer load
func (e *Engine) Candidates() ([]models.ReviewerCandidate, error) {
	cycle, err := e.ActiveCycle()
	if err != nil {
		return nil, err
	}
	return e.users.ListCandidates(cycle.ID, e.quota)
}

// PendingApprovals lists requests waiting on the manager's decision
func (e *Engine) PendingApprovals(managerID int64) ([]models.FeedbackRequestDetail, error) {
	cycle, err := e.ActiveCycle()
	if err != nil {
		return nil, err
	}

	manager, err := e.users.GetByID(managerID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return e.requests.ListPendingApprovalForManager(cycle.ID, manager.Email)
}

// DecideApproval records the manager's approve or reject decision on one
// request. Approving an external nomination also mints the reviewer's
// access token; the plaintext token travels only in the resulting event.
func (e *Engine) DecideApproval(actorID, requestID int64, approve bool, reason string) (*models.FeedbackRequest, error) {
	reason = strings.TrimSpace(reason)
	if !approve && reason == "" {
		return nil, ErrReasonRequired
	}

	req, err := e.getRequest(requestID)
	if err != nil {
		return nil, err
	}

	requester, err := e.users.GetByID(req.RequesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve requester: %w", err)
	}

	actor, err := e.users.GetByID(actorID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if requester.ReportingManagerEmail == nil ||
		!strings.EqualFold(*requester.ReportingManagerEmail, actor.Email) {
		return nil, ErrUnauthorized
	}

	plainToken := ""
	now := e.Clock()
	err = database.WithTx(e.db, func(tx *sql.Tx) error {
		locked, err := e.requests.GetByIDTx(tx, requestID)
		if err != nil {
			return mapRepoErr(err)
		}
		if locked.State != models.StatePendingManagerApproval {
			return ErrInvalidTransition
		}

		if !approve {
			if err := e.requests.RejectByManagerTx(tx, requestID, actorID, reason, now); err != nil {
				return mapRepoErr(err)
			}
			return nil
		}

		var reasonPtr *string
		if reason != "" {
			reasonPtr = &reason
		}
		if err := e.requests.ApproveTx(tx, requestID, actorID, reasonPtr, now); err != nil {
			return mapRepoErr(err)
		}

		if locked.IsExternal() {
			plainToken, err = issueAccessToken(tx, e.tokens, locked)
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := e.getRequest(requestID)
	if err != nil {
		return nil, err
	}

	e.notifyApprovalDecision(updated, requester, approve, reason, plainToken)
	return updated, nil
}

// issueAccessToken mints and stores a hashed bearer token for the external
// reviewer, returning the plaintext exactly once
func issueAccessToken(tx *sql.Tx, tokens *repository.TokenRepository, req *models.FeedbackRequest) (string, error) {
	plain, err := auth.GenerateRandomToken(32)
	if err != nil {
		return "", err
	}

	hash, err := auth.HashAccessToken(plain)
	if err != nil {
		return "", err
	}

	token := &models.ExternalAccessToken{
		RequestID: req.ID,
		CycleID:   req.CycleID,
		Email:     *req.ExternalEmail,
		TokenHash: hash,
	}
	if err := tokens.CreateTx(tx, token); err != nil {
		return "", err
	}

	return plain, nil
}

// PendingReviews lists requests awaiting the internal reviewer's acceptance
func (e *Engine) PendingReviews(reviewerID int64) ([]models.FeedbackRequestDetail, error) {
	cycle, err := e.ActiveCycle()
	if err != nil {
		return nil, err
	}
	return e.requests.ListForReviewer(cycle.ID, reviewerID, models.StatePendingReviewerAcceptance)
}

// AssignedReviews lists the internal reviewer's accepted, unfinished requests
func (e *Engine) AssignedReviews(reviewerID int64) ([]models.FeedbackRequestDetail, error) {
	cycle, err := e.ActiveCycle()
	if err != nil {
		return nil, err
	}
	return e.requests.ListForReviewer(cycle.ID, reviewerID, models.StateInProgress)
}

// DecideReview records the internal reviewer's accept or decline decision
func (e *Engine) DecideReview(actorID, requestID int64, accept bool, reason string) (*models.FeedbackRequest, error) {
	actor, err := e.users.GetByID(actorID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	return e.decideReview(requestID, actor.Email, accept, reason, func(req *models.FeedbackRequest) error {
		if req.IsExternal() || req.ReviewerID == nil || *req.ReviewerID != actorID {
			return ErrUnauthorized
		}
		return nil
	})
}

// DecideReviewExternal records an external reviewer's accept or decline
// decision. Callers must have already validated the bearer token.
func (e *Engine) DecideReviewExternal(requestID int64, email string, accept bool, reason string) (*models.FeedbackRequest, error) {
	return e.decideReview(requestID, email, accept, reason, func(req *models.FeedbackRequest) error {
		if !req.IsExternal() || !strings.EqualFold(*req.ExternalEmail, email) {
			return ErrUnauthorized
		}
		return nil
	})
}

func (e *Engine) decideReview(requestID int64, actor string, accept bool, reason string, authorize func(*models.FeedbackRequest) error) (*models.FeedbackRequest, error) {
	reason = strings.TrimSpace(reason)
	if !accept && reason == "" {
		return nil, ErrReasonRequired
	}

	req, err := e.getRequest(requestID)
	if err != nil {
		return nil, err
	}
	if err := authorize(req); err != nil {
		return nil, err
	}

	now := e.Clock()
	err = database.WithTx(e.db, func(tx *sql.Tx) error {
		locked, err := e.requests.GetByIDTx(tx, requestID)
		if err != nil {
			return mapRepoErr(err)
		}
		if locked.State != models.StatePendingReviewerAcceptance {
			return ErrInvalidTransition
		}

		if accept {
			if err := e.requests.AcceptTx(tx, requestID, actor, now); err != nil {
				return mapRepoErr(err)
			}
			if locked.IsExternal() {
				return e.tokens.UpdateStatusTx(tx, requestID, "accepted")
			}
			return nil
		}

		if err := e.requests.DeclineTx(tx, requestID, actor, reason, now); err != nil {
			return mapRepoErr(err)
		}
		if locked.IsExternal() {
			return e.tokens.UpdateStatusTx(tx, requestID, "rejected")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := e.getRequest(requestID)
	if err != nil {
		return nil, err
	}

	if !accept {
		e.notifyReviewDeclined(updated, reason)
	}
	return updated, nil
}

// QuestionsFor returns the question set the request's reviewer must answer
func (e *Engine) QuestionsFor(requestID int64) ([]models.Question, error) {
	req, err := e.getRequest(requestID)
	if err != nil {
		return nil, err
	}
	return e.questions.ListByRelationship(req.Relationship)
}

// SaveDraft stores partial answers for an in-progress request. Drafts are
// never validated against the completion guard.
func (e *Engine) SaveDraft(actorID, requestID int64, answers []models.Answer) error {
	req, err := e.getRequest(requestID)
	if err != nil {
		return err
	}
	if req.IsExternal() || req.ReviewerID == nil || *req.ReviewerID != actorID {
		return ErrUnauthorized
	}
	return e.saveDraft(req, answers)
}

// SaveDraftExternal stores partial answers on behalf of an external reviewer
func (e *Engine) SaveDraftExternal(requestID int64, email string, answers []models.Answer) error {
	req, err := e.getRequest(requestID)
	if err != nil {
		return err
	}
	if !req.IsExternal() || !strings.EqualFold(*req.ExternalEmail, email) {
		return ErrUnauthorized
	}
	return e.saveDraft(req, answers)
}

func (e *Engine) saveDraft(req *models.FeedbackRequest, answers []models.Answer) error {
	if req.State != models.StateInProgress {
		return ErrInvalidTransition
	}
	return e.responses.SaveDrafts(req.ID, answers)
}

// Drafts returns the saved draft answers for a request
func (e *Engine) Drafts(requestID int64) ([]models.Answer, error) {
	return e.responses.GetDrafts(requestID)
}

// SubmitFeedback finalizes an internal reviewer's answers. The request
// completes only if every required question is answered.
func (e *Engine) SubmitFeedback(actorID, requestID int64, answers []models.Answer) (*models.FeedbackRequest, error) {
	req, err := e.getRequest(requestID)
	if err != nil {
		return nil, err
	}
	if req.IsExternal() || req.ReviewerID == nil || *req.ReviewerID != actorID {
		return nil, ErrUnauthorized
	}
	return e.submitFeedback(req, answers)
}

// SubmitFeedbackExternal finalizes an external reviewer's answers
func (e *Engine) SubmitFeedbackExternal(requestID int64, email string, answers []models.Answer) (*models.FeedbackRequest, error) {
	req, err := e.getRequest(requestID)
	if err != nil {
		return nil, err
	}
	if !req.IsExternal() || !strings.EqualFold(*req.ExternalEmail, email) {
		return nil, ErrUnauthorized
	}
	return e.submitFeedback(req, answers)
}

func (e *Engine) submitFeedback(req *models.FeedbackRequest, answers []models.Answer) (*models.FeedbackRequest, error) {
	if req.State != models.StateInProgress {
		return nil, ErrInvalidTransition
	}

	questions, err := e.questions.ListByRelationship(req.Relationship)
	if err != nil {
		return nil, err
	}
	if err := validateAnswers(questions, answers); err != nil {
		return nil, err
	}

	now := e.Clock()
	err = database.WithTx(e.db, func(tx *sql.Tx) error {
		locked, err := e.requests.GetByIDTx(tx, req.ID)
		if err != nil {
			return mapRepoErr(err)
		}
		if locked.State != models.StateInProgress {
			return ErrInvalidTransition
		}

		if err := e.responses.SubmitTx(tx, req.ID, answers); err != nil {
			return err
		}
		if err := e.requests.CompleteTx(tx, req.ID, now); err != nil {
			return mapRepoErr(err)
		}
		if locked.IsExternal() {
			return e.tokens.UpdateStatusTx(tx, req.ID, "completed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := e.getRequest(req.ID)
	if err != nil {
		return nil, err
	}

	e.notifyCompleted(updated)
	return updated, nil
}

// validateAnswers applies the completion guard: required text questions
// need non-blank answers, ratings must be within 1-5, and no answer may
// reference a question outside the request's set
func validateAnswers(questions []models.Question, answers []models.Answer) error {
	byID := make(map[int64]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	answered := make(map[int64]bool, len(answers))
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			return fmt.Errorf("%w: unknown question %d", ErrIncompleteAnswers, a.QuestionID)
		}

		switch q.Type {
		case models.QuestionRating:
			if a.RatingValue == nil || *a.RatingValue < 1 || *a.RatingValue > 5 {
				return fmt.Errorf("%w: rating for question %d must be 1-5", ErrIncompleteAnswers, q.ID)
			}
			answered[q.ID] = true
		case models.QuestionText:
			if a.ResponseValue != nil && strings.TrimSpace(*a.ResponseValue) != "" {
				answered[q.ID] = true
			}
		}
	}

	for _, q := range questions {
		if q.IsRequired && !answered[q.ID] {
			return fmt.Errorf("%w: question %d", ErrIncompleteAnswers, q.ID)
		}
	}

	return nil
}

// GetRequest returns a single request, for display
func (e *Engine) GetRequest(requestID int64) (*models.FeedbackRequest, error) {
	return e.getRequest(requestID)
}

func (e *Engine) getRequest(requestID int64) (*models.FeedbackRequest, error) {
	req, err := e.requests.GetByID(requestID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return req, nil
}

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrRequestNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrStateConflict):
		return ErrInvalidTransition
	case errors.Is(err, repository.ErrDuplicateNomination):
		return ErrDuplicateNomination
	default:
		return err
	}
}

// reviewerDisplayName resolves the reviewer's name for notifications
func (e *Engine) reviewerDisplayName(req *models.FeedbackRequest) string {
	if req.IsExternal() {
		if req.ExternalName != nil && *req.ExternalName != "" {
			return *req.ExternalName
		}
		return *req.ExternalEmail
	}
	reviewer, err := e.users.GetByID(*req.ReviewerID)
	if err != nil {
		return ""
	}
	return reviewer.FullName()
}

func (e *Engine) notifyManagerApproval(cycle *models.Cycle, requester *models.User) {
	manager, err := e.users.GetManager(requester)
	if err != nil {
		return
	}

	event := notify.NewEvent(notify.EventManagerApprovalRequested)
	event.CycleName = cycle.Name
	event.RequesterName = requester.FullName()
	event.Recipient = manager.Email
	event.Deadline = cycle.NominationDeadline
	e.notifier.Notify(event)
}

func (e *Engine) notifyApprovalDecision(req *models.FeedbackRequest, requester *models.User, approved bool, reason, plainToken string) {
	cycle, err := e.cycles.GetByID(req.CycleID)
	if err != nil {
		return
	}
	reviewerName := e.reviewerDisplayName(req)

	if !approved {
		event := notify.NewEvent(notify.EventNominationRejected)
		event.CycleName = cycle.Name
		event.RequestID = req.ID
		event.ReviewerName = reviewerName
		event.Recipient = requester.Email
		event.Reason = reason
		e.notifier.Notify(event)
		return
	}

	event := notify.NewEvent(notify.EventNominationApproved)
	event.CycleName = cycle.Name
	event.RequestID = req.ID
	event.ReviewerName = reviewerName
	event.Relationship = req.Relationship
	event.Recipient = requester.Email
	e.notifier.Notify(event)

	if req.IsExternal() {
		invite := notify.NewEvent(notify.EventExternalInviteReady)
		invite.CycleName = cycle.Name
		invite.RequestID = req.ID
		invite.RequesterName = requester.FullName()
		invite.ReviewerName = reviewerName
		invite.Recipient = *req.ExternalEmail
		invite.Token = plainToken
		invite.Deadline = cycle.FeedbackDeadline
		e.notifier.Notify(invite)
		return
	}

	reviewer, err := e.users.GetByID(*req.ReviewerID)
	if err != nil {
		return
	}
	invite := notify.NewEvent(notify.EventReviewerInviteReady)
	invite.CycleName = cycle.Name
	invite.RequestID = req.ID
	invite.RequesterName = requester.FullName()
	invite.Relationship = req.Relationship
	invite.Recipient = reviewer.Email
	invite.Deadline = cycle.FeedbackDeadline
	e.notifier.Notify(invite)
}

func (e *Engine) notifyReviewDeclined(req *models.FeedbackRequest, reason string) {
	cycle, err := e.cycles.GetByID(req.CycleID)
	if err != nil {
		return
	}
	requester, err := e.users.GetByID(req.RequesterID)
	if err != nil {
		return
	}

	event := notify.NewEvent(notify.EventNominationRejected)
	event.CycleName = cycle.Name
	event.RequestID = req.ID
	event.ReviewerName = e.reviewerDisplayName(req)
	event.Recipient = requester.Email
	event.Reason = reason
	e.notifier.Notify(event)
}

func (e *Engine) notifyCompleted(req *models.FeedbackRequest) {
	cycle, err := e.cycles.GetByID(req.CycleID)
	if err != nil {
		return
	}
	requester, err := e.users.GetByID(req.RequesterID)
	if err != nil {
		return
	}

	event := notify.NewEvent(notify.EventFeedbackCompleted)
	event.CycleName = cycle.Name
	event.RequestID = req.ID
	event.ReviewerName = e.reviewerDisplayName(req)
	event.Recipient = requester.Email
	e.notifier.Notify(event)
}
