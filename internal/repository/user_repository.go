package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"insight360/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

const userColumns = `user_id, email, first_name, last_name, vertical, designation,
	       reporting_manager_email, is_active, created_at, updated_at`

// UserRepository handles directory database operations
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Vertical,
		&user.Designation,
		&user.ReportingManagerEmail,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create creates a new directory entry
func (r *UserRepository) Create(user *models.User) error {
	query := `
		INSERT INTO users (email, first_name, last_name, vertical, designation, reporting_manager_email, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING user_id
	`

	now := time.Now()
	err := r.db.QueryRow(
		query,
		strings.ToLower(user.Email),
		user.FirstName,
		user.LastName,
		user.Vertical,
		user.Designation,
		user.ReportingManagerEmail,
		user.IsActive,
		now,
		now,
	).Scan(&user.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`

	user, err := scanUser(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`

	user, err := scanUser(r.db.QueryRow(query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetManager resolves the reporting manager of a user, if any
func (r *UserRepository) GetManager(user *models.User) (*models.User, error) {
	if user.ReportingManagerEmail == nil || *user.ReportingManagerEmail == "" {
		return nil, ErrUserNotFound
	}
	return r.GetByEmail(*user.ReportingManagerEmail)
}

// ListActive lists active directory entries, optionally filtered by a
// case-insensitive name or email search term
func (r *UserRepository) ListActive(search string) ([]models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE is_active = TRUE
		  AND ($1 = '' OR LOWER(first_name || ' ' || last_name || ' ' || email) LIKE '%' || LOWER($1) || '%')
		ORDER BY first_name, last_name
	`

	rows, err := r.db.Query(query, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}

	return users, rows.Err()
}

// ListCandidates lists active users annotated with their reviewer load in
// the given cycle, for the nomination picker
func (r *UserRepository) ListCandidates(cycleID int64, quota int) ([]models.ReviewerCandidate, error) {
	query := `
		SELECT ` + userColumns + `,
		       COALESCE(l.cnt, 0) AS nomination_count
		FROM users u
		LEFT JOIN (
			SELECT reviewer_id, COUNT(*) AS cnt
			FROM feedback_requests
			WHERE cycle_id = $1
			  AND reviewer_id IS NOT NULL
			  AND counts_toward_quota = TRUE
			  AND workflow_state IN ('pending_manager_approval', 'pending_reviewer_acceptance', 'in_progress', 'completed')
			GROUP BY reviewer_id
		) l ON l.reviewer_id = u.user_id
		WHERE u.is_active = TRUE
		ORDER BY u.first_name, u.last_name
	`

	rows, err := r.db.Query(query, cycleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []models.ReviewerCandidate
	for rows.Next() {
		var c models.ReviewerCandidate
		err := rows.Scan(
			&c.ID,
			&c.Email,
			&c.FirstName,
			&c.LastName,
			&c.Vertical,
			&c.Designation,
			&c.ReportingManagerEmail,
			&c.IsActive,
			&c.CreatedAt,
			&c.UpdatedAt,
			&c.NominationCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		c.AtLimit = c.NominationCount >= quota
		candidates = append(candidates, c)
	}

	return candidates, rows.Err()
}

// LockTx locks the given user rows for the duration of the transaction.
// IDs are locked in ascending order to keep lock acquisition deterministic.
func (r *UserRepository) LockTx(tx *sql.Tx, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	sorted := make([]int64, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	for _, id := range sorted {
		var locked int64
		err := tx.QueryRow(`SELECT user_id FROM users WHERE user_id = $1 FOR UPDATE`, id).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock user %d: %w", id, err)
		}
	}

	return nil
}
