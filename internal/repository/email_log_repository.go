package repository

import (
	"database/sql"
	"fmt"
	"time"

	"insight360/internal/models"
)

// EmailLogRepository records notification delivery attempts
type EmailLogRepository struct {
	db *sql.DB
}

// NewEmailLogRepository creates a new email log repository
func NewEmailLogRepository(db *sql.DB) *EmailLogRepository {
	return &EmailLogRepository{db: db}
}

// Create appends a delivery record
func (r *EmailLogRepository) Create(log *models.EmailLog) error {
	query := `
		INSERT INTO email_log (event_id, event_kind, recipient, subject, status, error_message, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING log_id
	`

	now := time.Now()
	err := r.db.QueryRow(
		query,
		log.EventID,
		log.EventKind,
		log.Recipient,
		log.Subject,
		log.Status,
		log.ErrorMessage,
		now,
	).Scan(&log.ID)
	if err != nil {
		return fmt.Errorf("failed to create email log: %w", err)
	}

	log.SentAt = now
	return nil
}

// ListRecent returns the latest delivery records, newest first
func (r *EmailLogRepository) ListRecent(limit int) ([]models.EmailLog, error) {
	query := `
		SELECT log_id, event_id, event_kind, recipient, subject, status, error_message, sent_at
		FROM email_log
		ORDER BY sent_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list email log: %w", err)
	}
	defer rows.Close()

	var logs []models.EmailLog
	for rows.Next() {
		var l models.EmailLog
		err := rows.Scan(&l.ID, &l.EventID, &l.EventKind, &l.Recipient, &l.Subject, &l.Status, &l.ErrorMessage, &l.SentAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan email log: %w", err)
		}
		logs = append(logs, l)
	}

	return logs, rows.Err()
}
