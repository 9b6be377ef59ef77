package workflow

import (
	"strings"

	"insight360/internal/models"
)

// DeriveRelationship classifies the reviewer's relationship to the
// requester from the directory. The caller never supplies it.
//
// The requester's own reporting manager is not a valid reviewer; that
// case returns ErrSelfManagerNomination instead of a category so no
// caller can classify its way past the guard.
func DeriveRelationship(requester, reviewer *models.User) (models.RelationshipType, error) {
	if requester.ReportingManagerEmail != nil &&
		strings.EqualFold(*requester.ReportingManagerEmail, reviewer.Email) {
		return "", ErrSelfManagerNomination
	}

	if reviewer.ReportingManagerEmail != nil &&
		strings.EqualFold(*reviewer.ReportingManagerEmail, requester.Email) {
		return models.RelationshipDirectReportee, nil
	}

	if requester.Vertical != "" && strings.EqualFold(requester.Vertical, reviewer.Vertical) {
		return models.RelationshipPeer, nil
	}

	return models.RelationshipInternalCollaborator, nil
}
