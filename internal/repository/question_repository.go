package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"insight360/internal/models"
)

var ErrQuestionNotFound = errors.New("question not found")

// QuestionRepository handles the feedback question catalog
type QuestionRepository struct {
	db *sql.DB
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *sql.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// ListByRelationship returns the active question set for a relationship
// category, in display order
func (r *QuestionRepository) ListByRelationship(rel models.RelationshipType) ([]models.Question, error) {
	query := `
		SELECT question_id, relationship_type, question_text, question_type, is_required, sort_order, is_active
		FROM feedback_questions
		WHERE relationship_type = $1 AND is_active = TRUE
		ORDER BY sort_order, question_id
	`

	rows, err := r.db.Query(query, rel)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		err := rows.Scan(&q.ID, &q.Relationship, &q.Text, &q.Type, &q.IsRequired, &q.SortOrder, &q.IsActive)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}

	return questions, rows.Err()
}
