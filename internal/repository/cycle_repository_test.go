package repository_test

import (
	"errors"
	"testing"
	"time"

	"insight360/internal/models"
	"insight360/internal/repository"
	"insight360/internal/testutil"
)

func TestCycleCreateSupersedesActive(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)

	cycles := repository.NewCycleRepository(containers.DB)
	now := time.Now()

	next := &models.Cycle{
		Name:               "H1 2027",
		NominationStart:    now,
		NominationDeadline: now.AddDate(0, 0, 14),
		FeedbackDeadline:   now.AddDate(0, 0, 45),
		CreatedBy:          fixtures.Manager.ID,
	}
	if err := cycles.Create(next); err != nil {
		t.Fatalf("Failed to create cycle: %v", err)
	}

	active, err := cycles.GetActive()
	if err != nil {
		t.Fatalf("Failed to get active cycle: %v", err)
	}
	if active.ID != next.ID {
		t.Errorf("New cycle should be the active one, got %d", active.ID)
	}

	old, err := cycles.GetByID(fixtures.Cycle.ID)
	if err != nil {
		t.Fatalf("Failed to get superseded cycle: %v", err)
	}
	if old.IsActive {
		t.Error("Superseded cycle should be inactive")
	}
}

func TestCycleCreateRejectsInvertedDeadlines(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)

	cycles := repository.NewCycleRepository(containers.DB)
	now := time.Now()

	err := cycles.Create(&models.Cycle{
		Name:               "Inverted",
		NominationStart:    now,
		NominationDeadline: now.AddDate(0, 0, 30),
		FeedbackDeadline:   now.AddDate(0, 0, 10),
		CreatedBy:          fixtures.Manager.ID,
	})
	if !errors.Is(err, repository.ErrInvalidDeadline) {
		t.Errorf("Expected ErrInvalidDeadline, got %v", err)
	}
}
