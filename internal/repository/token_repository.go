package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"insight360/internal/models"
)

var ErrTokenNotFound = errors.New("access token not found")

const tokenColumns = `token_id, request_id, cycle_id, email, token_hash, status, is_active, issued_at, consumed_at`

// TokenRepository handles external access token database operations
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func scanToken(row interface{ Scan(...any) error }) (*models.ExternalAccessToken, error) {
	token := &models.ExternalAccessToken{}
	err := row.Scan(
		&token.ID,
		&token.RequestID,
		&token.CycleID,
		&token.Email,
		&token.TokenHash,
		&token.Status,
		&token.IsActive,
		&token.IssuedAt,
		&token.ConsumedAt,
	)
	if err != nil {
		return nil, err
	}
	return token, nil
}

// CreateTx stores a new token record within the caller's transaction
func (r *TokenRepository) CreateTx(tx *sql.Tx, token *models.ExternalAccessToken) error {
	query := `
		INSERT INTO external_access_tokens (request_id, cycle_id, email, token_hash, status, is_active, issued_at)
		VALUES ($1, $2, $3, $4, 'pending', TRUE, $5)
		RETURNING token_id
	`

	now := time.Now()
	err := tx.QueryRow(
		query,
		token.RequestID,
		token.CycleID,
		strings.ToLower(token.Email),
		token.TokenHash,
		now,
	).Scan(&token.ID)
	if err != nil {
		return fmt.Errorf("failed to create access token: %w", err)
	}

	token.Status = "pending"
	token.IsActive = true
	token.IssuedAt = now
	return nil
}

// ListActiveByEmail returns the caller's live token records, matched
// case-insensitively on email
func (r *TokenRepository) ListActiveByEmail(email string) ([]models.ExternalAccessToken, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM external_access_tokens
		WHERE LOWER(email) = LOWER($1) AND is_active = TRUE
		ORDER BY issued_at DESC
	`

	rows, err := r.db.Query(query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list access tokens: %w", err)
	}
	defer rows.Close()

	var tokens []models.ExternalAccessToken
	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan access token: %w", err)
		}
		tokens = append(tokens, *token)
	}

	return tokens, rows.Err()
}

// GetByRequestID retrieves the token record bound to a request
func (r *TokenRepository) GetByRequestID(requestID int64) (*models.ExternalAccessToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM external_access_tokens WHERE request_id = $1`

	token, err := scanToken(r.db.QueryRow(query, requestID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	return token, nil
}

// UpdateStatusTx records the token's lifecycle status; terminal statuses
// also deactivate the token
func (r *TokenRepository) UpdateStatusTx(tx *sql.Tx, requestID int64, status string) error {
	query := `
		UPDATE external_access_tokens
		SET status = $1,
		    is_active = ($1 NOT IN ('rejected', 'completed')),
		    consumed_at = CASE WHEN $1 IN ('rejected', 'completed') THEN NOW() ELSE consumed_at END
		WHERE request_id = $2
	`

	result, err := tx.Exec(query, status, requestID)
	if err != nil {
		return fmt.Errorf("failed to update access token: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrTokenNotFound
	}

	return nil
}

// DeactivateTx invalidates the token bound to a request, if one exists
func (r *TokenRepository) DeactivateTx(tx *sql.Tx, requestID int64) error {
	_, err := tx.Exec(
		`UPDATE external_access_tokens SET is_active = FALSE WHERE request_id = $1`,
		requestID,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate access token: %w", err)
	}
	return nil
}
