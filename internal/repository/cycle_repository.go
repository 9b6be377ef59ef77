package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"insight360/internal/models"
)

var (
	ErrCycleNotFound   = errors.New("review cycle not found")
	ErrNoActiveCycle   = errors.New("no active review cycle")
	ErrInvalidDeadline = errors.New("feedback deadline must not precede nomination deadline")
)

const cycleColumns = `cycle_id, cycle_name, nomination_start, nomination_deadline,
	       feedback_deadline, is_active, created_by, created_at`

// CycleRepository handles review cycle database operations
type CycleRepository struct {
	db *sql.DB
}

// NewCycleRepository creates a new cycle repository
func NewCycleRepository(db *sql.DB) *CycleRepository {
	return &CycleRepository{db: db}
}

func scanCycle(row interface{ Scan(...any) error }) (*models.Cycle, error) {
	cycle := &models.Cycle{}
	err := row.Scan(
		&cycle.ID,
		&cycle.Name,
		&cycle.NominationStart,
		&cycle.NominationDeadline,
		&cycle.FeedbackDeadline,
		&cycle.IsActive,
		&cycle.CreatedBy,
		&cycle.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return cycle, nil
}

// Create opens a new cycle as the single active one. Any previously active
// cycle is deactivated in the same transaction.
func (r *CycleRepository) Create(cycle *models.Cycle) error {
	if cycle.FeedbackDeadline.Before(cycle.NominationDeadline) {
		return ErrInvalidDeadline
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("Failed to rollback transaction", "error", err)
		}
	}()

	// The review_cycles_single_active partial unique index rejects a
	// second active row, so the old cycle must be deactivated before
	// the insert, not after.
	if _, err := tx.Exec(`UPDATE review_cycles SET is_active = FALSE WHERE is_active = TRUE`); err != nil {
		return fmt.Errorf("failed to deactivate previous cycle: %w", err)
	}

	query := `
		INSERT INTO review_cycles (cycle_name, nomination_start, nomination_deadline, feedback_deadline, is_active, created_by, created_at)
		VALUES ($1, $2, $3, $4, TRUE, $5, $6)
		RETURNING cycle_id
	`

	now := time.Now()
	err = tx.QueryRow(
		query,
		cycle.Name,
		cycle.NominationStart,
		cycle.NominationDeadline,
		cycle.FeedbackDeadline,
		cycle.CreatedBy,
		now,
	).Scan(&cycle.ID)
	if err != nil {
		return fmt.Errorf("failed to create cycle: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cycle: %w", err)
	}

	cycle.IsActive = true
	cycle.CreatedAt = now
	return nil
}

// GetActive returns the single active cycle
func (r *CycleRepository) GetActive() (*models.Cycle, error) {
	query := `SELECT ` + cycleColumns + ` FROM review_cycles WHERE is_active = TRUE`

	cycle, err := scanCycle(r.db.QueryRow(query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveCycle
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active cycle: %w", err)
	}

	return cycle, nil
}

// GetByID retrieves a cycle by ID
func (r *CycleRepository) GetByID(id int64) (*models.Cycle, error) {
	query := `SELECT ` + cycleColumns + ` FROM review_cycles WHERE cycle_id = $1`

	cycle, err := scanCycle(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCycleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cycle: %w", err)
	}

	return cycle, nil
}

// List returns all cycles, newest first
func (r *CycleRepository) List() ([]models.Cycle, error) {
	query := `SELECT ` + cycleColumns + ` FROM review_cycles ORDER BY created_at DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list cycles: %w", err)
	}
	defer rows.Close()

	var cycles []models.Cycle
	for rows.Next() {
		cycle, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cycle: %w", err)
		}
		cycles = append(cycles, *cycle)
	}

	return cycles, rows.Err()
}

// Deactivate closes the given cycle
func (r *CycleRepository) Deactivate(id int64) error {
	result, err := r.db.Exec(`UPDATE review_cycles SET is_active = FALSE WHERE cycle_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate cycle: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrCycleNotFound
	}

	return nil
}
