package workflow

import "errors"

var (
	// ErrNoActiveCycle means no review cycle is currently open
	ErrNoActiveCycle = errors.New("no active review cycle")
	// ErrNominationClosed means the nomination deadline has passed
	ErrNominationClosed = errors.New("nomination phase is closed")
	// ErrQuotaExceeded means the requester's nomination slots are used up
	ErrQuotaExceeded = errors.New("nomination quota exceeded")
	// ErrReviewerAtCapacity means the internal reviewer already carries the
	// maximum number of nominations
	ErrReviewerAtCapacity = errors.New("reviewer is at capacity")
	// ErrDuplicateNomination means the reviewer was already nominated by
	// this requester in the cycle
	ErrDuplicateNomination = errors.New("reviewer already nominated in this cycle")
	// ErrSelfManagerNomination means the requester named themselves or
	// their own reporting manager
	ErrSelfManagerNomination = errors.New("cannot nominate yourself or your reporting manager")
	// ErrUnauthorized means the actor holds no role over the request
	ErrUnauthorized = errors.New("actor is not authorized for this request")
	// ErrInvalidTransition means the request is not in a state the
	// operation can act on
	ErrInvalidTransition = errors.New("request state does not permit this operation")
	// ErrReasonRequired means a rejection was attempted without a reason
	ErrReasonRequired = errors.New("a reason is required to reject")
	// ErrInvalidToken means external credentials did not match a live token
	ErrInvalidToken = errors.New("invalid or expired access token")
	// ErrIncompleteAnswers means a submission failed the completion guard
	ErrIncompleteAnswers = errors.New("required questions are unanswered")
	// ErrNotFound means the referenced entity does not exist
	ErrNotFound = errors.New("not found")
)
