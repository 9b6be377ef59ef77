package workflow_test

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"

	"insight360/internal/models"
	"insight360/internal/notify"
	"insight360/internal/repository"
	"insight360/internal/testutil"
	"insight360/internal/workflow"
)

func newTestEngine(db *sql.DB, notifier notify.Notifier, quota int) *workflow.Engine {
	return workflow.NewEngine(
		db,
		repository.NewUserRepository(db),
		repository.NewCycleRepository(db),
		repository.NewRequestRepository(db),
		repository.NewTokenRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewResponseRepository(db),
		notifier,
		quota,
	)
}

// completeAnswers builds a full answer set for the request's question catalog
func completeAnswers(t *testing.T, engine *workflow.Engine, requestID int64) []models.Answer {
	t.Helper()

	questions, err := engine.QuestionsFor(requestID)
	if err != nil {
		t.Fatalf("Failed to load questions: %v", err)
	}

	answers := make([]models.Answer, 0, len(questions))
	for _, q := range questions {
		a := models.Answer{QuestionID: q.ID}
		if q.Type == models.QuestionRating {
			rating := 4
			a.RatingValue = &rating
		} else {
			text := "Consistently thoughtful in how they hand work over."
			a.ResponseValue = &text
		}
		answers = append(answers, a)
	}
	return answers
}

func TestCreateNominations(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)

	notifier := &testutil.RecordingNotifier{}
	engine := newTestEngine(containers.DB, notifier, 4)

	created, err := engine.CreateNominations(fixtures.Requester.ID, []models.Reviewer{
		models.InternalReviewer(fixtures.Peer.ID),
		models.ExternalReviewer("client@partner.com", "Client Contact"),
	})
	if err != nil {
		t.Fatalf("Failed to create nominations: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("Expected 2 requests, got %d", len(created))
	}

	for _, req := range created {
		if req.State != models.StatePendingManagerApproval {
			t.Errorf("New nomination should await manager approval, got %s", req.State)
		}
	}
	if created[0].Relationship != models.RelationshipPeer {
		t.Errorf("Same-vertical colleague should be a peer, got %s", created[0].Relationship)
	}
	if created[1].Relationship != models.RelationshipExternalStakeholder {
		t.Errorf("External reviewer should be a stakeholder, got %s", created[1].Relationship)
	}

	if got := notifier.ByKind(notify.EventManagerApprovalRequested); len(got) == 0 {
		t.Error("Manager should have been notified about pending approvals")
	}

	status, err := engine.Status(fixtures.Requester.ID)
	if err != nil {
		t.Fatalf("Failed to get status: %v", err)
	}
	if status.CountedTotal != 2 || status.RemainingSlots != 2 {
		t.Errorf("Expected 2 used / 2 remaining, got %d / %d", status.CountedTotal, status.RemainingSlots)
	}
}

func TestCreateNominationsRejectsInvalidReviewers(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)

	engine := newTestEngine(containers.DB, &testutil.RecordingNotifier{}, 4)

	// Self-nomination
	_, err := engine.CreateNominations(fixtures.Requester.ID, []models.Reviewer{
		models.InternalReviewer(fixtures.Requester.ID),
	})
	if !errors.Is(err, workflow.ErrSelfManagerNomination) {
		t.Errorf("Self-nomination should be rejected, got %v", err)
	}

	// Nominating the reporting manager
	_, err = engine.CreateNominations(fixtures.Requester.ID, []models.Reviewer{
		models.InternalReviewer(fixtures.Manager.ID),
	})
	if !errors.Is(err, workflow.ErrSelfManagerNomination) {
		t.Errorf("Manager nomination should be rejected, got %v", err)
	}

	// Own email through the external arm
	_, err = engine.CreateNominations(fixtures.Requester.ID, []models.Reviewer{
		models.ExternalReviewer(fixtures.Requester.Email, "Alice"),
	})
	if !errors.Is(err, workflow.ErrSelfManagerNomination) {
		t.Errorf("External self-nomination should be rejected, got %v", err)
	}

	// The manager's email through the external arm
	_, err = engine.CreateNominations(fixtures.Requester.ID, []models.Reviewer{
		models.ExternalReviewer("Maya@Test.com", "Maya"),
	})
	if !errors.Is(err, workflow.ErrSelfManagerNomination) {
		t.Errorf("External manager nomination should be rejected, got %v", err)
	}

	// Duplicate within one batch and across batches
	if _, err := engine.CreateNominations(fixtures.Requester.ID, []models.Reviewer{
		models.InternalReviewer(fixtures.Peer.ID),
	}); err != nil {
		t.Fatalf("First nomination should succeed: %v", err)
	}
	_, err = engine.CreateNominations(fixtures.Requester.ID, []models.Reviewer{
		models.InternalReviewer(fixtures.Peer.ID),
	})
	if !errors.Is(err, workflow.ErrDuplicateNomination) {
		t.Errorf("Repeat nomination should be rejected, got %v", err)
	}

	// Retyping the same colleague's address as an external reviewer is
	// still the same identity.
	_, err = engine.CreateNominations(fixtures.Requester.ID, []models.Reviewer{
		models.ExternalReviewer(fixtures.Peer.Email, "Ben"),
	})
	if !errors.Is(err, workflow.ErrDuplicateNomination) {
		t.Errorf("Directory email should collide with the internal nomination, got %v", err)
	}
}

func TestDirectoryEmailResolvesInternally(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)

	engine := newTestEngine(containers.DB, &testutil.RecordingNotifier{}, 4)

	created, err := engine.CreateNominations(fixtures.Requester.ID, []models.Reviewer{
		models.ExternalReviewer(fixtures.Colleague.Email, "Carol"),
	})
	if err != nil {
		t.Fatalf("Failed to create nomination: %v", err)
	}

	req := created[0]
	if req.ReviewerID == nil || *req.ReviewerID != fixtures.Colleague.ID {
		t.Fatalf("Directory email should resolve to the internal reviewer, got %+v", req)
	}
	if req.ExternalEmail != nil {
		t.Error("Resolved nomination should carry no external email")
	}
	if req.Relationship != models.RelationshipInternalCollaborator {
		t.Errorf("Resolved nomination should derive the directory relationship, got %s", req.Relationship)
	}
}

func TestCreateNominationsQuota(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)

	engine := newTestEngine(containers.DB, &testutil.RecordingNotifier{}, 2)

	// A batch bigger than the quota must fail as a whole.
	_, err := engine.CreateNominations(fixtures.Requester.ID, []models.Reviewer{
		models.InternalReviewer(fixtures.Peer.ID),
		models.ExternalReviewer("one@partner.com", "One"),
		models.ExternalReviewer("two@partner.com", "Two"),
	})
	if !errors.Is(err, workflow.ErrQuotaExceeded) {
		t.Fatalf("Oversized batch should be rejected, got %v", err)
	}

	// Nothing from the failed batch may linger.
	status, err := engine.Status(fixtures.Requester.ID)
	if err != nil {
		t.Fatalf("Failed to get status: %v", err)
	}
	if status.CountedTotal != 0 {
		t.Errorf("Failed batch should leave no nominations, found %d", status.CountedTotal)
	}

	if _, err := engine.CreateNominations(fixtures.Requester.ID, []models.Reviewer{
		models.InternalReviewer(fixtures.Peer.ID),
		models.ExternalReviewer("one@partner.com", "One"),
	}); err != nil {
		t.Fatalf("Batch within quota should succeed: %v", err)
	}

	_, err = engine.CreateNominations(fixtures.Requester.ID, []models.Reviewer{
		models.InternalReviewer(fixtures.Colleague.ID),
	})
	if !errors.Is(err, workflow.ErrQuotaExceeded) {
		t.Errorf("Nomination beyond the quota should be rejected, got %v", err)
	}
}

func TestCreateNominationsQuotaUnderConcurrency(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)

	quota := 4
	engine := newTestEngine(containers.DB, &testutil.RecordingNotifier{}, quota)

	// More competing submissions than slots; the requester row lock
	// serializes them, so exactly quota many may win.
	attempts := 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := engine.CreateNominations(fixtures.Requester.ID, []models.Reviewer{
				models.ExternalReviewer(fmt.Sprintf("reviewer%d@partner.com", n), "Reviewer"),
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	succeeded, overQuota := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, workflow.ErrQuotaExceeded):
			overQuota++
		default:
			t.Errorf("Unexpected error under concurrency: %v", err)
		}
	}
	if succeeded != quota {
		t.Errorf("Exactly %d submissions should win, got %d", quota, succeeded)
	}
	if overQuota != attempts-quota {
		t.Errorf("Expected %d quota rejections, got %d", attempts-quota, overQuota)
	}

	status, err := engine.Status(fixtures.Requester.ID)
	if err != nil {
		t.Fatalf("Failed to get status: %v", err)
	}
	if status.CountedTotal != quota {
		t.Errorf("Ledger should hold exactly %d nominations, got %d", quota, status.CountedTotal)
	}
}

func TestReviewerAtCapacity(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)

	quota := 2
	engine := newTestEngine(containers.DB, &testutil.RecordingNotifier{}, quota)

	second := testutil.CreateUser(t, containers.DB, testutil.UserSpec{
		Email:        "erin@test.com",
		FirstName:    "Erin",
		LastName:     "Walsh",
		Vertical:     "Engineering",
		Desig:        "Engineer",
		ManagerEmail: fixtures.Manager.Email,
	})
	third := testutil.CreateUser(t, containers.DB, testutil.UserSpec{
		Email:        "femi@test.com",
		FirstName:    "Femi",
		LastName:     "Adeyemi",
		Vertical:     "Engineering",
		Desig:        "Engineer",
		ManagerEmail: fixtures.Manager.Email,
	})

	for _, requester := range []int64{fixtures.Requester.ID, second.ID} {
		if _, err := engine.CreateNominations(requester, []models.Reviewer{
			models.InternalReviewer(fixtures.Peer.ID),
		}); err != nil {
			t.Fatalf("Nomination below the cap should succeed: %v", err)
		}
	}

	_, err := engine.CreateNominations(third.ID, []models.Reviewer{
		models.InternalReviewer(fixtures.Peer.ID),
	})
	if !errors.Is(err, workflow.ErrReviewerAtCapacity) {
		t.Errorf("Nominee over the cap should be rejected, got %v", err)
	}
}

func TestCreateNominationsAfterDeadline(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)

	testutil.CloseNominations(t, containers.DB, fixtures.Cycle.ID)

	engine := newTestEngine(containers.DB, &testutil.RecordingNotifier{}, 4)

	_, err := engine.CreateNominations(fixtures.Requester.ID, []models.Reviewer{
		models.InternalReviewer(fixtures.Peer.ID),
	})
	if !errors.Is(err, workflow.ErrNominationClosed) {
		t.Errorf("Nominations after the deadline should be rejected, got %v", err)
	}
}

func TestManagerApproval(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)

	notifier := &testutil.RecordingNotifier{}
	engine := newTestEngine(containers.DB, notifier, 4)

	created, err := engine.CreateNominations(fixtures.Requester.ID, []models.Reviewer{
		models.InternalReviewer(fixtures.Peer.ID),
		models.InternalReviewer(fixtures.Colleague.ID),
	})
	if err != nil {
		t.Fatalf("Failed to create nominations: %v", err)
	}

	pending, err := engine.PendingApprovals(fixtures.Manager.ID)
	if err != nil {
		t.Fatalf("Failed to list pending approvals: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("Manager should see 2 pending approvals, got %d", len(pending))
	}

	// Only the reporting manager may decide.
	if _, err := engine.DecideApproval(fixtures.Peer.ID, created[0].ID, true, ""); !errors.Is(err, workflow.ErrUnauthorized) {
		t.Errorf("Non-manager approval should be rejected, got %v", err)
	}

	// Rejection needs a reason.
	if _, err := engine.DecideApproval(fixtures.Manager.ID, created[0].ID, false, ""); !errors.Is(err, workflow.ErrReasonRequired) {
		t.Errorf("Rejection without reason should fail, got %v", err)
	}

	approved, err := engine.DecideApproval(fixtures.Manager.ID, created[0].ID, true, "")
	if err != nil {
		t.Fatalf("Approval failed: %v", err)
	}
	if approved.State != models.StatePendingReviewerAcceptance {
		t.Errorf("Approved request should await the reviewer, got %s", approved.State)
	}

	rejected, err := engine.DecideApproval(fixtures.Manager.ID, created[1].ID, false, "Too many cross-team asks this cycle")
	if err != nil {
		t.Fatalf("Rejection failed: %v", err)
	}
	if rejected.State != models.StateManagerRejected {
		t.Errorf("Rejected request should be manager_rejected, got %s", rejected.State)
	}

	// The rejected nomination frees its slot.
	status, err := engine.Status(fixtures.Requester.ID)
	if err != nil {
		t.Fatalf("Failed to get status: %v", err)
	}
	if status.CountedTotal != 1 || status.RemainingSlots != 3 {
		t.Errorf("Expected 1 used / 3 remaining after rejection, got %d / %d", status.CountedTotal, status.RemainingSlots)
	}

	// Deciding twice hits the state guard.
	if _, err := engine.DecideApproval(fixtures.Manager.ID, created[0].ID, true, ""); !errors.Is(err, workflow.ErrInvalidTransition) {
		t.Errorf("Second decision should be rejected, got %v", err)
	}
}

func TestExternalApprovalIssuesToken(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)

	notifier := &testutil.RecordingNotifier{}
	engine := newTestEngine(containers.DB, notifier, 4)

	created, err := engine.CreateNominations(fixtures.Requester.ID, []models.Reviewer{
		models.ExternalReviewer("client@partner.com", "Client Contact"),
	})
	if err != nil {
		t.Fatalf("Failed to create nomination: %v", err)
	}

	if _, err := engine.DecideApproval(fixtures.Manager.ID, created[0].ID, true, ""); err != nil {
		t.Fatalf("Approval failed: %v", err)
	}

	invites := notifier.ByKind(notify.EventExternalInviteReady)
	if len(invites) != 1 {
		t.Fatalf("Expected 1 external invite, got %d", len(invites))
	}
	if invites[0].Token == "" {
		t.Error("Invite should carry the plaintext access code")
	}

	tokens := repository.NewTokenRepository(containers.DB)
	record, err := tokens.GetByRequestID(created[0].ID)
	if err != nil {
		t.Fatalf("Token record missing: %v", err)
	}
	if record.TokenHash == invites[0].Token {
		t.Error("Stored token must be hashed, not plaintext")
	}
}

func TestReviewerFlow(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)

	notifier := &testutil.RecordingNotifier{}
	engine := newTestEngine(containers.DB, notifier, 4)

	created, err := engine.CreateNominations(fixtures.Requester.ID, []models.Reviewer{
		models.InternalReviewer(fixtures.Peer.ID),
		models.InternalReviewer(fixtures.Colleague.ID),
	})
	if err != nil {
		t.Fatalf("Failed to create nominations: %v", err)
	}
	for _, req := range created {
		if _, err := engine.DecideApproval(fixtures.Manager.ID, req.ID, true, ""); err != nil {
			t.Fatalf("Approval failed: %v", err)
		}
	}

	pending, err := engine.PendingReviews(fixtures.Peer.ID)
	if err != nil {
		t.Fatalf("Failed to list pending reviews: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("Peer should see 1 pending invitation, got %d", len(pending))
	}

	// Only the nominated reviewer may decide.
	if _, err := engine.DecideReview(fixtures.Colleague.ID, created[0].ID, true, ""); !errors.Is(err, workflow.ErrUnauthorized) {
		t.Errorf("Decision by another user should be rejected, got %v", err)
	}

	accepted, err := engine.DecideReview(fixtures.Peer.ID, created[0].ID, true, "")
	if err != nil {
		t.Fatalf("Acceptance failed: %v", err)
	}
	if accepted.State != models.StateInProgress {
		t.Errorf("Accepted request should be in progress, got %s", accepted.State)
	}

	declined, err := engine.DecideReview(fixtures.Colleague.ID, created[1].ID, false, "Travelling for most of the window")
	if err != nil {
		t.Fatalf("Decline failed: %v", err)
	}
	if declined.State != models.StateReviewerRejected {
		t.Errorf("Declined request should be reviewer_rejected, got %s", declined.State)
	}
	if got := notifier.ByKind(notify.EventNominationRejected); len(got) == 0 {
		t.Error("Requester should hear about the decline")
	}

	// Declined nomination frees its slot.
	status, err := engine.Status(fixtures.Requester.ID)
	if err != nil {
		t.Fatalf("Failed to get status: %v", err)
	}
	if status.CountedTotal != 1 {
		t.Errorf("Expected 1 counted nomination after decline, got %d", status.CountedTotal)
	}
}

func TestSubmitFeedback(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)

	notifier := &testutil.RecordingNotifier{}
	engine := newTestEngine(containers.DB, notifier, 4)

	created, err := engine.CreateNominations(fixtures.Requester.ID, []models.Reviewer{
		models.InternalReviewer(fixtures.Peer.ID),
	})
	if err != nil {
		t.Fatalf("Failed to create nomination: %v", err)
	}
	requestID := created[0].ID

	if _, err := engine.DecideApproval(fixtures.Manager.ID, requestID, true, ""); err != nil {
		t.Fatalf("Approval failed: %v", err)
	}

	// Submission before acceptance hits the state guard.
	answers := completeAnswers(t, engine, requestID)
	if _, err := engine.SubmitFeedback(fixtures.Peer.ID, requestID, answers); !errors.Is(err, workflow.ErrInvalidTransition) {
		t.Errorf("Submission before acceptance should fail, got %v", err)
	}

	if _, err := engine.DecideReview(fixtures.Peer.ID, requestID, true, ""); err != nil {
		t.Fatalf("Acceptance failed: %v", err)
	}

	// Drafts survive until submission.
	if err := engine.SaveDraft(fixtures.Peer.ID, requestID, answers[:2]); err != nil {
		t.Fatalf("Draft save failed: %v", err)
	}
	drafts, err := engine.Drafts(requestID)
	if err != nil {
		t.Fatalf("Failed to load drafts: %v", err)
	}
	if len(drafts) != 2 {
		t.Errorf("Expected 2 drafted answers, got %d", len(drafts))
	}

	// Incomplete submissions are rejected.
	if _, err := engine.SubmitFeedback(fixtures.Peer.ID, requestID, answers[:2]); !errors.Is(err, workflow.ErrIncompleteAnswers) {
		t.Errorf("Partial submission should fail, got %v", err)
	}

	// Out-of-range ratings are rejected.
	bad := completeAnswers(t, engine, requestID)
	outOfRange := 9
	bad[0].RatingValue = &outOfRange
	if _, err := engine.SubmitFeedback(fixtures.Peer.ID, requestID, bad); !errors.Is(err, workflow.ErrIncompleteAnswers) {
		t.Errorf("Out-of-range rating should fail, got %v", err)
	}

	completed, err := engine.SubmitFeedback(fixtures.Peer.ID, requestID, answers)
	if err != nil {
		t.Fatalf("Submission failed: %v", err)
	}
	if completed.State != models.StateCompleted {
		t.Errorf("Submitted request should be completed, got %s", completed.State)
	}
	if completed.CompletedAt == nil {
		t.Error("Completion timestamp should be set")
	}

	// Drafts are cleared on submission.
	drafts, err = engine.Drafts(requestID)
	if err != nil {
		t.Fatalf("Failed to load drafts: %v", err)
	}
	if len(drafts) != 0 {
		t.Errorf("Drafts should be cleared after submission, got %d", len(drafts))
	}

	if got := notifier.ByKind(notify.EventFeedbackCompleted); len(got) == 0 {
		t.Error("Requester should hear about the completed feedback")
	}

	// A completed request accepts nothing further.
	if _, err := engine.SubmitFeedback(fixtures.Peer.ID, requestID, answers); !errors.Is(err, workflow.ErrInvalidTransition) {
		t.Errorf("Re-submission should fail, got %v", err)
	}
}
