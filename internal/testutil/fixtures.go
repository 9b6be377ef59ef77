package testutil

import (
	"database/sql"
	"testing"
	"time"

	"insight360/internal/models"
)

// Fixtures holds a small reporting hierarchy plus an active cycle:
// Maya manages Alice, Alice manages Dave, Ben shares Alice's vertical
// and Carol works in another one.
type Fixtures struct {
	DB        *sql.DB
	Manager   *models.User
	Requester *models.User
	Peer      *models.User
	Colleague *models.User
	Reportee  *models.User
	Cycle     *models.Cycle
}

// SetupFixtures creates test data with a cycle still in its nomination phase
func SetupFixtures(t *testing.T, db *sql.DB) *Fixtures {
	t.Helper()

	f := &Fixtures{DB: db}

	f.Manager = CreateUser(t, db, UserSpec{
		Email:     "maya@test.com",
		FirstName: "Maya",
		LastName:  "Lindqvist",
		Vertical:  "Engineering",
		Desig:     "Engineering Manager",
	})
	f.Requester = CreateUser(t, db, UserSpec{
		Email:        "alice@test.com",
		FirstName:    "Alice",
		LastName:     "Moreau",
		Vertical:     "Engineering",
		Desig:        "Senior Engineer",
		ManagerEmail: f.Manager.Email,
	})
	f.Peer = CreateUser(t, db, UserSpec{
		Email:        "ben@test.com",
		FirstName:    "Ben",
		LastName:     "Okafor",
		Vertical:     "Engineering",
		Desig:        "Engineer",
		ManagerEmail: f.Manager.Email,
	})
	f.Colleague = CreateUser(t, db, UserSpec{
		Email:     "carol@test.com",
		FirstName: "Carol",
		LastName:  "Nakamura",
		Vertical:  "Design",
		Desig:     "Product Designer",
	})
	f.Reportee = CreateUser(t, db, UserSpec{
		Email:        "dave@test.com",
		FirstName:    "Dave",
		LastName:     "Petrov",
		Vertical:     "Engineering",
		Desig:        "Engineer",
		ManagerEmail: f.Requester.Email,
	})

	now := time.Now()
	f.Cycle = CreateCycle(t, db, CycleSpec{
		Name:               "H2 Review",
		NominationStart:    now.AddDate(0, 0, -7),
		NominationDeadline: now.AddDate(0, 0, 7),
		FeedbackDeadline:   now.AddDate(0, 0, 30),
		CreatedBy:          f.Manager.ID,
	})

	return f
}

// UserSpec describes a user to insert
type UserSpec struct {
	Email        string
	FirstName    string
	LastName     string
	Vertical     string
	Desig        string
	ManagerEmail string
}

// CreateUser inserts a user and returns it
func CreateUser(t *testing.T, db *sql.DB, spec UserSpec) *models.User {
	t.Helper()

	var managerEmail *string
	if spec.ManagerEmail != "" {
		managerEmail = &spec.ManagerEmail
	}

	user := &models.User{
		Email:                 spec.Email,
		FirstName:             spec.FirstName,
		LastName:              spec.LastName,
		Vertical:              spec.Vertical,
		Designation:           spec.Desig,
		ReportingManagerEmail: managerEmail,
		IsActive:              true,
	}

	err := db.QueryRow(`
		INSERT INTO users (email, first_name, last_name, vertical, designation, reporting_manager_email)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING user_id, created_at, updated_at`,
		spec.Email, spec.FirstName, spec.LastName, spec.Vertical, spec.Desig, managerEmail,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", spec.Email, err)
	}

	return user
}

// CycleSpec describes a review cycle to insert
type CycleSpec struct {
	Name               string
	NominationStart    time.Time
	NominationDeadline time.Time
	FeedbackDeadline   time.Time
	CreatedBy          int64
	Inactive           bool
}

// CreateCycle inserts a cycle, active unless Inactive is set
func CreateCycle(t *testing.T, db *sql.DB, spec CycleSpec) *models.Cycle {
	t.Helper()

	cycle := &models.Cycle{
		Name:               spec.Name,
		NominationStart:    spec.NominationStart,
		NominationDeadline: spec.NominationDeadline,
		FeedbackDeadline:   spec.FeedbackDeadline,
		IsActive:           !spec.Inactive,
		CreatedBy:          spec.CreatedBy,
	}

	err := db.QueryRow(`
		INSERT INTO review_cycles (cycle_name, nomination_start, nomination_deadline, feedback_deadline, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING cycle_id, created_at`,
		spec.Name, spec.NominationStart, spec.NominationDeadline, spec.FeedbackDeadline, !spec.Inactive, spec.CreatedBy,
	).Scan(&cycle.ID, &cycle.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create cycle %s: %v", spec.Name, err)
	}

	return cycle
}

// CloseNominations moves the cycle's nomination deadline into the past
// while keeping the feedback deadline open.
func CloseNominations(t *testing.T, db *sql.DB, cycleID int64) {
	t.Helper()

	_, err := db.Exec(`
		UPDATE review_cycles
		SET nomination_start = NOW() - INTERVAL '14 days',
		    nomination_deadline = NOW() - INTERVAL '2 days'
		WHERE cycle_id = $1`, cycleID)
	if err != nil {
		t.Fatalf("Failed to close nominations for cycle %d: %v", cycleID, err)
	}
}

// CloseFeedback moves both deadlines into the past
func CloseFeedback(t *testing.T, db *sql.DB, cycleID int64) {
	t.Helper()

	_, err := db.Exec(`
		UPDATE review_cycles
		SET nomination_start = NOW() - INTERVAL '60 days',
		    nomination_deadline = NOW() - INTERVAL '40 days',
		    feedback_deadline = NOW() - INTERVAL '2 days'
		WHERE cycle_id = $1`, cycleID)
	if err != nil {
		t.Fatalf("Failed to close feedback for cycle %d: %v", cycleID, err)
	}
}

// ResetRequests clears workflow data between test cases
func ResetRequests(t *testing.T, db *sql.DB) {
	t.Helper()

	for _, table := range []string{"feedback_responses", "draft_responses", "external_access_tokens", "feedback_requests"} {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			t.Fatalf("Failed to reset %s: %v", table, err)
		}
	}
}
