package external

import (
	"errors"
	"strings"

	"insight360/internal/auth"
	"insight360/internal/models"
	"insight360/internal/repository"
	"insight360/internal/workflow"
)

// Gateway authenticates external reviewers by email and bearer token and
// brokers their actions into the workflow engine. An external reviewer
// never gets a directory account; the token binds them to exactly one
// feedback request.
type Gateway struct {
	engine *workflow.Engine
	tokens *repository.TokenRepository
	users  *repository.UserRepository
	cycles *repository.CycleRepository
}

// NewGateway creates an external participant gateway
func NewGateway(
	engine *workflow.Engine,
	tokens *repository.TokenRepository,
	users *repository.UserRepository,
	cycles *repository.CycleRepository,
) *Gateway {
	return &Gateway{
		engine: engine,
		tokens: tokens,
		users:  users,
		cycles: cycles,
	}
}

// Session is the validated view an external reviewer gets of their request
type Session struct {
	Request       *models.FeedbackRequest `json:"request"`
	RequesterName string                  `json:"requester_name"`
	CycleName     string                  `json:"cycle_name"`
	Questions     []models.Question       `json:"questions"`
	Drafts        []models.Answer         `json:"drafts"`
}

// Validate matches the credentials against the caller's live tokens and
// returns the session for the one request the token is bound to. Tokens of
// requests that already reached a terminal state never match.
func (g *Gateway) Validate(email, token string) (*Session, error) {
	email = strings.TrimSpace(email)
	token = strings.TrimSpace(token)
	if email == "" || token == "" {
		return nil, workflow.ErrInvalidToken
	}

	candidates, err := g.tokens.ListActiveByEmail(email)
	if err != nil {
		return nil, err
	}

	for _, candidate := range candidates {
		if auth.VerifyAccessToken(candidate.TokenHash, token) != nil {
			continue
		}

		req, err := g.engine.GetRequest(candidate.RequestID)
		if errors.Is(err, workflow.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if req.State.Terminal() {
			return nil, workflow.ErrInvalidToken
		}

		return g.buildSession(req)
	}

	return nil, workflow.ErrInvalidToken
}

func (g *Gateway) buildSession(req *models.FeedbackRequest) (*Session, error) {
	session := &Session{Request: req}

	if requester, err := g.users.GetByID(req.RequesterID); err == nil {
		session.RequesterName = requester.FullName()
	}
	if cycle, err := g.cycles.GetByID(req.CycleID); err == nil {
		session.CycleName = cycle.Name
	}

	questions, err := g.engine.QuestionsFor(req.ID)
	if err != nil {
		return nil, err
	}
	session.Questions = questions

	drafts, err := g.engine.Drafts(req.ID)
	if err != nil {
		return nil, err
	}
	session.Drafts = drafts

	return session, nil
}

// authorize re-validates the credentials and checks that the token is
// bound to the request the caller named. A valid token for some other
// request is rejected the same way as a bad token.
func (g *Gateway) authorize(email, token string, requestID int64) (*Session, error) {
	session, err := g.Validate(email, token)
	if err != nil {
		return nil, err
	}
	if session.Request.ID != requestID {
		return nil, workflow.ErrInvalidToken
	}
	return session, nil
}

// Accept records the external reviewer's acceptance of the request
func (g *Gateway) Accept(email, token string, requestID int64) (*models.FeedbackRequest, error) {
	session, err := g.authorize(email, token, requestID)
	if err != nil {
		return nil, err
	}
	return g.engine.DecideReviewExternal(requestID, *session.Request.ExternalEmail, true, "")
}

// Decline records the external reviewer's refusal, with a reason
func (g *Gateway) Decline(email, token string, requestID int64, reason string) (*models.FeedbackRequest, error) {
	session, err := g.authorize(email, token, requestID)
	if err != nil {
		return nil, err
	}
	return g.engine.DecideReviewExternal(requestID, *session.Request.ExternalEmail, false, reason)
}

// SaveDraft stores partial answers for the external reviewer's request
func (g *Gateway) SaveDraft(email, token string, requestID int64, answers []models.Answer) error {
	session, err := g.authorize(email, token, requestID)
	if err != nil {
		return err
	}
	return g.engine.SaveDraftExternal(requestID, *session.Request.ExternalEmail, answers)
}

// SubmitFeedback finalizes the external reviewer's answers
func (g *Gateway) SubmitFeedback(email, token string, requestID int64, answers []models.Answer) (*models.FeedbackRequest, error) {
	session, err := g.authorize(email, token, requestID)
	if err != nil {
		return nil, err
	}
	return g.engine.SubmitFeedbackExternal(requestID, *session.Request.ExternalEmail, answers)
}
