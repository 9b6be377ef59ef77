package external_test

import (
	"database/sql"
	"errors"
	"testing"

	"insight360/internal/external"
	"insight360/internal/models"
	"insight360/internal/notify"
	"insight360/internal/repository"
	"insight360/internal/testutil"
	"insight360/internal/workflow"
)

type portal struct {
	engine  *workflow.Engine
	gateway *external.Gateway
}

func newPortal(db *sql.DB, notifier notify.Notifier) *portal {
	users := repository.NewUserRepository(db)
	cycles := repository.NewCycleRepository(db)
	requests := repository.NewRequestRepository(db)
	tokens := repository.NewTokenRepository(db)
	questions := repository.NewQuestionRepository(db)
	responses := repository.NewResponseRepository(db)

	engine := workflow.NewEngine(db, users, cycles, requests, tokens, questions, responses, notifier, 4)
	return &portal{
		engine:  engine,
		gateway: external.NewGateway(engine, tokens, users, cycles),
	}
}

// inviteExternal walks a nomination through manager approval and returns
// the request plus the plaintext access code from the invite.
func inviteExternal(t *testing.T, p *portal, notifier *testutil.RecordingNotifier, f *testutil.Fixtures, email, name string) (*models.FeedbackRequest, string) {
	t.Helper()

	created, err := p.engine.CreateNominations(f.Requester.ID, []models.Reviewer{
		models.ExternalReviewer(email, name),
	})
	if err != nil {
		t.Fatalf("Failed to create nomination: %v", err)
	}
	if _, err := p.engine.DecideApproval(f.Manager.ID, created[0].ID, true, ""); err != nil {
		t.Fatalf("Approval failed: %v", err)
	}

	var token string
	for _, event := range notifier.ByKind(notify.EventExternalInviteReady) {
		if event.RequestID == created[0].ID {
			token = event.Token
		}
	}
	if token == "" {
		t.Fatal("No invite was issued for the approved nomination")
	}
	return &created[0], token
}

func TestGatewayValidate(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)

	notifier := &testutil.RecordingNotifier{}
	p := newPortal(containers.DB, notifier)
	req, token := inviteExternal(t, p, notifier, fixtures, "client@partner.com", "Client Contact")

	session, err := p.gateway.Validate("client@partner.com", token)
	if err != nil {
		t.Fatalf("Validation failed: %v", err)
	}
	if session.Request.ID != req.ID {
		t.Errorf("Session bound to wrong request: %d", session.Request.ID)
	}
	if session.RequesterName == "" || session.CycleName == "" {
		t.Error("Session should name the requester and cycle")
	}
	if len(session.Questions) == 0 {
		t.Error("Session should include the question set")
	}

	// The email match is case-insensitive; the token is not negotiable.
	if _, err := p.gateway.Validate("Client@Partner.com", token); err != nil {
		t.Errorf("Case-insensitive email should validate: %v", err)
	}
	if _, err := p.gateway.Validate("client@partner.com", "not-the-token"); !errors.Is(err, workflow.ErrInvalidToken) {
		t.Errorf("Wrong token should be rejected, got %v", err)
	}
	if _, err := p.gateway.Validate("other@partner.com", token); !errors.Is(err, workflow.ErrInvalidToken) {
		t.Errorf("Wrong email should be rejected, got %v", err)
	}
	if _, err := p.gateway.Validate("", ""); !errors.Is(err, workflow.ErrInvalidToken) {
		t.Errorf("Blank credentials should be rejected, got %v", err)
	}
}

func TestGatewayTokenBinding(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)

	notifier := &testutil.RecordingNotifier{}
	p := newPortal(containers.DB, notifier)

	reqA, tokenA := inviteExternal(t, p, notifier, fixtures, "one@partner.com", "One")
	reqB, _ := inviteExternal(t, p, notifier, fixtures, "two@partner.com", "Two")

	// A valid token must not reach another reviewer's request.
	if _, err := p.gateway.Accept("one@partner.com", tokenA, reqB.ID); !errors.Is(err, workflow.ErrInvalidToken) {
		t.Errorf("Cross-request access should be rejected, got %v", err)
	}
	if state := reqB.State; state != models.StatePendingReviewerAcceptance {
		t.Errorf("Unrelated request must be untouched, got %s", state)
	}

	accepted, err := p.gateway.Accept("one@partner.com", tokenA, reqA.ID)
	if err != nil {
		t.Fatalf("Acceptance failed: %v", err)
	}
	if accepted.State != models.StateInProgress {
		t.Errorf("Accepted request should be in progress, got %s", accepted.State)
	}
}

func TestGatewayDeclineInvalidatesToken(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)

	notifier := &testutil.RecordingNotifier{}
	p := newPortal(containers.DB, notifier)
	req, token := inviteExternal(t, p, notifier, fixtures, "client@partner.com", "Client Contact")

	declined, err := p.gateway.Decline("client@partner.com", token, req.ID, "No longer working with this team")
	if err != nil {
		t.Fatalf("Decline failed: %v", err)
	}
	if declined.State != models.StateReviewerRejected {
		t.Errorf("Declined request should be reviewer_rejected, got %s", declined.State)
	}

	// The token dies with the terminal state.
	if _, err := p.gateway.Validate("client@partner.com", token); !errors.Is(err, workflow.ErrInvalidToken) {
		t.Errorf("Token should be dead after decline, got %v", err)
	}
}

func TestGatewaySubmitFeedback(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)

	notifier := &testutil.RecordingNotifier{}
	p := newPortal(containers.DB, notifier)
	req, token := inviteExternal(t, p, notifier, fixtures, "client@partner.com", "Client Contact")

	if _, err := p.gateway.Accept("client@partner.com", token, req.ID); err != nil {
		t.Fatalf("Acceptance failed: %v", err)
	}

	session, err := p.gateway.Validate("client@partner.com", token)
	if err != nil {
		t.Fatalf("Validation failed: %v", err)
	}

	answers := make([]models.Answer, 0, len(session.Questions))
	for _, q := range session.Questions {
		a := models.Answer{QuestionID: q.ID}
		if q.Type == models.QuestionRating {
			rating := 5
			a.RatingValue = &rating
		} else {
			text := "Always clear about scope and follows through on commitments."
			a.ResponseValue = &text
		}
		answers = append(answers, a)
	}

	// Drafts come back on the next validation.
	if err := p.gateway.SaveDraft("client@partner.com", token, req.ID, answers[:1]); err != nil {
		t.Fatalf("Draft save failed: %v", err)
	}
	session, err = p.gateway.Validate("client@partner.com", token)
	if err != nil {
		t.Fatalf("Validation failed: %v", err)
	}
	if len(session.Drafts) != 1 {
		t.Errorf("Expected 1 drafted answer, got %d", len(session.Drafts))
	}

	completed, err := p.gateway.SubmitFeedback("client@partner.com", token, req.ID, answers)
	if err != nil {
		t.Fatalf("Submission failed: %v", err)
	}
	if completed.State != models.StateCompleted {
		t.Errorf("Submitted request should be completed, got %s", completed.State)
	}

	tokens := repository.NewTokenRepository(containers.DB)
	record, err := tokens.GetByRequestID(req.ID)
	if err != nil {
		t.Fatalf("Token record missing: %v", err)
	}
	if record.Status != "completed" {
		t.Errorf("Token should be marked completed, got %s", record.Status)
	}

	// Completed requests are no longer reachable through the portal.
	if _, err := p.gateway.Validate("client@partner.com", token); !errors.Is(err, workflow.ErrInvalidToken) {
		t.Errorf("Token should be dead after submission, got %v", err)
	}
}
