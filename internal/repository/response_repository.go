package repository

import (
	"database/sql"
	"fmt"
	"log/slog"

	"insight360/internal/models"
)

// ResponseRepository handles draft and final feedback responses
type ResponseRepository struct {
	db *sql.DB
}

// NewResponseRepository creates a new response repository
func NewResponseRepository(db *sql.DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// SaveDrafts upserts the given draft answers for a request
func (r *ResponseRepository) SaveDrafts(requestID int64, answers []models.Answer) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			slog.Error("Failed to rollback transaction", "error", err)
		}
	}()

	query := `
		INSERT INTO draft_responses (request_id, question_id, response_value, rating_value, saved_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (request_id, question_id)
		DO UPDATE SET response_value = EXCLUDED.response_value,
		              rating_value = EXCLUDED.rating_value,
		              saved_at = NOW()
	`

	for _, a := range answers {
		if _, err := tx.Exec(query, requestID, a.QuestionID, a.ResponseValue, a.RatingValue); err != nil {
			return fmt.Errorf("failed to save draft: %w", err)
		}
	}

	return tx.Commit()
}

// GetDrafts returns the saved draft answers for a request
func (r *ResponseRepository) GetDrafts(requestID int64) ([]models.Answer, error) {
	query := `
		SELECT question_id, response_value, rating_value
		FROM draft_responses
		WHERE request_id = $1
		ORDER BY question_id
	`
	return r.queryAnswers(query, requestID)
}

// GetResponses returns the submitted answers for a request
func (r *ResponseRepository) GetResponses(requestID int64) ([]models.Answer, error) {
	query := `
		SELECT question_id, response_value, rating_value
		FROM feedback_responses
		WHERE request_id = $1
		ORDER BY question_id
	`
	return r.queryAnswers(query, requestID)
}

func (r *ResponseRepository) queryAnswers(query string, requestID int64) ([]models.Answer, error) {
	rows, err := r.db.Query(query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query responses: %w", err)
	}
	defer rows.Close()

	var answers []models.Answer
	for rows.Next() {
		var a models.Answer
		if err := rows.Scan(&a.QuestionID, &a.ResponseValue, &a.RatingValue); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		answers = append(answers, a)
	}

	return answers, rows.Err()
}

// SubmitTx writes the final answers and clears drafts, inside the caller's
// transaction so the writes land with the workflow transition
func (r *ResponseRepository) SubmitTx(tx *sql.Tx, requestID int64, answers []models.Answer) error {
	query := `
		INSERT INTO feedback_responses (request_id, question_id, response_value, rating_value, submitted_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (request_id, question_id)
		DO UPDATE SET response_value = EXCLUDED.response_value,
		              rating_value = EXCLUDED.rating_value,
		              submitted_at = NOW()
	`

	for _, a := range answers {
		if _, err := tx.Exec(query, requestID, a.QuestionID, a.ResponseValue, a.RatingValue); err != nil {
			return fmt.Errorf("failed to submit response: %w", err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM draft_responses WHERE request_id = $1`, requestID); err != nil {
		return fmt.Errorf("failed to clear drafts: %w", err)
	}

	return nil
}
