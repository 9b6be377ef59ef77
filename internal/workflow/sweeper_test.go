package workflow_test

import (
	"database/sql"
	"testing"

	"insight360/internal/config"
	"insight360/internal/models"
	"insight360/internal/notify"
	"insight360/internal/repository"
	"insight360/internal/testutil"
	"insight360/internal/workflow"
)

func newTestSweeper(db *sql.DB, notifier notify.Notifier, policy string) *workflow.Sweeper {
	return workflow.NewSweeper(
		db,
		repository.NewUserRepository(db),
		repository.NewCycleRepository(db),
		repository.NewRequestRepository(db),
		repository.NewTokenRepository(db),
		notifier,
		policy,
	)
}

func requestState(t *testing.T, db *sql.DB, requestID int64) models.WorkflowState {
	t.Helper()

	var state models.WorkflowState
	if err := db.QueryRow(
		"SELECT workflow_state FROM feedback_requests WHERE request_id = $1", requestID,
	).Scan(&state); err != nil {
		t.Fatalf("Failed to read request state: %v", err)
	}
	return state
}

// requestActors reads the audit columns the sweeper stamps
func requestActors(t *testing.T, db *sql.DB, requestID int64) (approvalActor, responseActor, responseReason string) {
	t.Helper()

	var approval, actor, reason sql.NullString
	if err := db.QueryRow(
		"SELECT approval_actor, response_actor, response_reason FROM feedback_requests WHERE request_id = $1",
		requestID,
	).Scan(&approval, &actor, &reason); err != nil {
		t.Fatalf("Failed to read request actors: %v", err)
	}
	return approval.String, actor.String, reason.String
}

func TestSweepBeforeDeadlineIsNoOp(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)

	engine := newTestEngine(containers.DB, &testutil.RecordingNotifier{}, 4)
	if _, err := engine.CreateNominations(fixtures.Requester.ID, []models.Reviewer{
		models.InternalReviewer(fixtures.Peer.ID),
	}); err != nil {
		t.Fatalf("Failed to create nomination: %v", err)
	}

	sweeper := newTestSweeper(containers.DB, &testutil.RecordingNotifier{}, config.SweepPolicyAutoApprove)
	result, err := sweeper.Run()
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if result.Total() != 0 {
		t.Errorf("Sweep before the deadline should touch nothing, moved %d", result.Total())
	}
}

func TestSweepAutoApprove(t *testing.T) {
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

	testutil.CloseNominations(t, containers.DB, fixtures.Cycle.ID)

	sweepNotifier := &testutil.RecordingNotifier{}
	sweeper := newTestSweeper(containers.DB, sweepNotifier, config.SweepPolicyAutoApprove)

	result, err := sweeper.Run()
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if len(result.AutoApproved) != 2 {
		t.Errorf("Expected 2 auto-approvals, got %d", len(result.AutoApproved))
	}
	if len(result.AutoAccepted) != 2 {
		t.Errorf("Expected 2 auto-acceptances, got %d", len(result.AutoAccepted))
	}

	for _, req := range created {
		if state := requestState(t, containers.DB, req.ID); state != models.StateInProgress {
			t.Errorf("Request %d should be in progress after the sweep, got %s", req.ID, state)
		}
		approval, actor, reason := requestActors(t, containers.DB, req.ID)
		if approval != "system" || actor != "system" {
			t.Errorf("Policy decisions should be attributed to system, got approval=%q response=%q", approval, actor)
		}
		if reason != "auto-accepted at nomination deadline" {
			t.Errorf("Unexpected response reason %q", reason)
		}
	}

	// The external reviewer still gets an access code.
	invites := sweepNotifier.ByKind(notify.EventExternalInviteReady)
	if len(invites) != 1 {
		t.Fatalf("Expected 1 external invite, got %d", len(invites))
	}
	if invites[0].Token == "" {
		t.Error("Invite should carry the plaintext access code")
	}

	tokens := repository.NewTokenRepository(containers.DB)
	external := created[1]
	record, err := tokens.GetByRequestID(external.ID)
	if err != nil {
		t.Fatalf("Token record missing: %v", err)
	}
	if record.Status != "accepted" {
		t.Errorf("Auto-accepted token should be marked accepted, got %s", record.Status)
	}

	// Second run finds nothing left to move.
	again, err := sweeper.Run()
	if err != nil {
		t.Fatalf("Second sweep failed: %v", err)
	}
	if again.Total() != 0 {
		t.Errorf("Repeated sweep should be a no-op, moved %d", again.Total())
	}
}

func TestSweepExpirePolicy(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)

	engine := newTestEngine(containers.DB, &testutil.RecordingNotifier{}, 4)

	created, err := engine.CreateNominations(fixtures.Requester.ID, []models.Reviewer{
		models.InternalReviewer(fixtures.Peer.ID),
		models.InternalReviewer(fixtures.Colleague.ID),
	})
	if err != nil {
		t.Fatalf("Failed to create nominations: %v", err)
	}

	// One request is already past the manager gate.
	if _, err := engine.DecideApproval(fixtures.Manager.ID, created[0].ID, true, ""); err != nil {
		t.Fatalf("Approval failed: %v", err)
	}

	testutil.CloseNominations(t, containers.DB, fixtures.Cycle.ID)

	sweeper := newTestSweeper(containers.DB, &testutil.RecordingNotifier{}, config.SweepPolicyExpire)
	result, err := sweeper.Run()
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if len(result.Expired) != 2 {
		t.Fatalf("Both pending requests should expire, got %d", len(result.Expired))
	}

	for _, req := range created {
		if state := requestState(t, containers.DB, req.ID); state != models.StateExpired {
			t.Errorf("Request %d should be expired, got %s", req.ID, state)
		}
		_, actor, reason := requestActors(t, containers.DB, req.ID)
		if actor != "system" {
			t.Errorf("Expiry should be attributed to system, got %q", actor)
		}
		if reason != "expired at deadline" {
			t.Errorf("Unexpected response reason %q", reason)
		}
	}

	// Expired nominations free their slots.
	status, err := engine.Status(fixtures.Requester.ID)
	if err != nil {
		t.Fatalf("Failed to get status: %v", err)
	}
	if status.CountedTotal != 0 {
		t.Errorf("Expired nominations should not count, found %d", status.CountedTotal)
	}
}

func TestSweepAfterFeedbackDeadline(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)

	engine := newTestEngine(containers.DB, &testutil.RecordingNotifier{}, 4)

	created, err := engine.CreateNominations(fixtures.Requester.ID, []models.Reviewer{
		models.InternalReviewer(fixtures.Peer.ID),
		models.InternalReviewer(fixtures.Colleague.ID),
	})
	if err != nil {
		t.Fatalf("Failed to create nominations: %v", err)
	}

	// Walk one request all the way to completion before the deadline.
	if _, err := engine.DecideApproval(fixtures.Manager.ID, created[0].ID, true, ""); err != nil {
		t.Fatalf("Approval failed: %v", err)
	}
	if _, err := engine.DecideReview(fixtures.Peer.ID, created[0].ID, true, ""); err != nil {
		t.Fatalf("Acceptance failed: %v", err)
	}
	answers := completeAnswers(t, engine, created[0].ID)
	if _, err := engine.SubmitFeedback(fixtures.Peer.ID, created[0].ID, answers); err != nil {
		t.Fatalf("Submission failed: %v", err)
	}

	// Leave the second one accepted but unfinished.
	if _, err := engine.DecideApproval(fixtures.Manager.ID, created[1].ID, true, ""); err != nil {
		t.Fatalf("Approval failed: %v", err)
	}
	if _, err := engine.DecideReview(fixtures.Colleague.ID, created[1].ID, true, ""); err != nil {
		t.Fatalf("Acceptance failed: %v", err)
	}

	testutil.CloseFeedback(t, containers.DB, fixtures.Cycle.ID)

	sweeper := newTestSweeper(containers.DB, &testutil.RecordingNotifier{}, config.SweepPolicyAutoApprove)
	result, err := sweeper.Run()
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if len(result.Expired) != 1 {
		t.Fatalf("Only the unfinished request should expire, got %d", len(result.Expired))
	}

	if state := requestState(t, containers.DB, created[0].ID); state != models.StateCompleted {
		t.Errorf("Completed feedback must stay completed, got %s", state)
	}
	if state := requestState(t, containers.DB, created[1].ID); state != models.StateExpired {
		t.Errorf("Unfinished request should be expired, got %s", state)
	}
}

func TestSweepWithoutActiveCycle(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)

	cycles := repository.NewCycleRepository(containers.DB)
	if err := cycles.Deactivate(fixtures.Cycle.ID); err != nil {
		t.Fatalf("Failed to deactivate cycle: %v", err)
	}

	sweeper := newTestSweeper(containers.DB, &testutil.RecordingNotifier{}, config.SweepPolicyAutoApprove)
	result, err := sweeper.Run()
	if err != nil {
		t.Fatalf("Sweep without a cycle should succeed: %v", err)
	}
	if result.Total() != 0 {
		t.Errorf("Sweep without a cycle should touch nothing, moved %d", result.Total())
	}
}
