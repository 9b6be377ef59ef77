package models

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCyclePhase(t *testing.T) {
	cycle := &Cycle{
		NominationStart:    day("2026-03-01"),
		NominationDeadline: day("2026-03-15"),
		FeedbackDeadline:   day("2026-04-15"),
	}

	tests := []struct {
		name string
		now  time.Time
		want CyclePhase
	}{
		{"before nomination deadline", day("2026-03-10"), PhaseNomination},
		{"on nomination deadline day", day("2026-03-15").Add(23 * time.Hour), PhaseNomination},
		{"day after nomination deadline", day("2026-03-16"), PhaseFeedback},
		{"on feedback deadline day", day("2026-04-15").Add(12 * time.Hour), PhaseFeedback},
		{"after feedback deadline", day("2026-04-16"), PhaseComplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cycle.Phase(tt.now); got != tt.want {
				t.Errorf("Phase(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestNominationClosed(t *testing.T) {
	cycle := &Cycle{
		NominationStart:    day("2026-03-01"),
		NominationDeadline: day("2026-03-15"),
		FeedbackDeadline:   day("2026-04-15"),
	}

	if cycle.NominationClosed(day("2026-03-15")) {
		t.Error("Nominations should remain open through the deadline day")
	}
	if !cycle.NominationClosed(day("2026-03-16")) {
		t.Error("Nominations should be closed the day after the deadline")
	}
}

func TestWorkflowStateTerminal(t *testing.T) {
	terminal := []WorkflowState{StateManagerRejected, StateReviewerRejected, StateCompleted, StateExpired}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}

	open := []WorkflowState{StatePendingManagerApproval, StatePendingReviewerAcceptance, StateInProgress}
	for _, s := range open {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestCountsTowardQuota(t *testing.T) {
	counting := []WorkflowState{StatePendingManagerApproval, StatePendingReviewerAcceptance, StateInProgress, StateCompleted}
	for _, s := range counting {
		if !s.CountsTowardQuota() {
			t.Errorf("%s should count toward the quota", s)
		}
	}

	freed := []WorkflowState{StateManagerRejected, StateReviewerRejected, StateExpired}
	for _, s := range freed {
		if s.CountsTowardQuota() {
			t.Errorf("%s should free its slot", s)
		}
	}
}

func TestReviewerConstructors(t *testing.T) {
	internal := InternalReviewer(7)
	if internal.Kind != ReviewerInternal || internal.UserID != 7 {
		t.Errorf("unexpected internal reviewer: %+v", internal)
	}

	external := ExternalReviewer("Client@Example.com", "Client Contact")
	if external.Kind != ReviewerExternal {
		t.Errorf("unexpected external reviewer kind: %v", external.Kind)
	}
	if external.Email != "Client@Example.com" {
		t.Errorf("constructor should not rewrite the email, got %q", external.Email)
	}
}
