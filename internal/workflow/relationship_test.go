package workflow

import (
	"errors"
	"testing"

	"insight360/internal/models"
)

func userWith(email, vertical string, managerEmail string) *models.User {
	u := &models.User{Email: email, Vertical: vertical}
	if managerEmail != "" {
		u.ReportingManagerEmail = &managerEmail
	}
	return u
}

func TestDeriveRelationship(t *testing.T) {
	tests := []struct {
		name      string
		requester *models.User
		reviewer  *models.User
		want      models.RelationshipType
	}{
		{
			"reviewer reports to the requester",
			userWith("alice@test.com", "Engineering", "maya@test.com"),
			userWith("dave@test.com", "Engineering", "alice@test.com"),
			models.RelationshipDirectReportee,
		},
		{
			"same vertical makes a peer",
			userWith("alice@test.com", "Engineering", "maya@test.com"),
			userWith("ben@test.com", "Engineering", "maya@test.com"),
			models.RelationshipPeer,
		},
		{
			"different vertical makes a collaborator",
			userWith("alice@test.com", "Engineering", "maya@test.com"),
			userWith("carol@test.com", "Design", ""),
			models.RelationshipInternalCollaborator,
		},
		{
			"empty verticals fall back to collaborator",
			userWith("alice@test.com", "", ""),
			userWith("ben@test.com", "", ""),
			models.RelationshipInternalCollaborator,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveRelationship(tt.requester, tt.reviewer)
			if err != nil {
				t.Fatalf("DeriveRelationship() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DeriveRelationship() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeriveRelationshipRejectsOwnManager(t *testing.T) {
	tests := []struct {
		name      string
		requester *models.User
		reviewer  *models.User
	}{
		{
			"reporting manager",
			userWith("alice@test.com", "Engineering", "maya@test.com"),
			userWith("maya@test.com", "Engineering", ""),
		},
		{
			"manager in the same vertical",
			userWith("alice@test.com", "Engineering", "maya@test.com"),
			userWith("maya@test.com", "Engineering", "vp@test.com"),
		},
		{
			"case-insensitive manager match",
			userWith("alice@test.com", "Engineering", "Maya@Test.com"),
			userWith("maya@test.com", "Engineering", ""),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DeriveRelationship(tt.requester, tt.reviewer); !errors.Is(err, ErrSelfManagerNomination) {
				t.Errorf("Own manager should be rejected, got %v", err)
			}
		})
	}
}
