package repository

import (
	"context"
	"fmt"

	"vocabtrainer/internal/database"
	"vocabtrainer/internal/models"
)

// FeedbackRepository handles submitted feedback messages
type FeedbackRepository struct {
	db database.DBTX
}

func NewFeedbackRepository(db database.DBTX) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// CreateFeedback inserts a feedback row and returns its id
func (r *FeedbackRepository) CreateFeedback(ctx context.Context, fb models.FeedbackRow) (int64, error) {
	query := `INSERT INTO feedback (user_id, email, name, message) VALUES (?, ?, ?, ?)`
	id, err := r.db.ExecReturningID(ctx, query, fb.UserID, fb.Email, fb.Name, fb.Message)
	if err != nil {
		return 0, fmt.Errorf("failed to create feedback: %w", err)
	}
	return id, nil
}

// GetRecentFeedback returns the newest feedback rows
func (r *FeedbackRepository) GetRecentFeedback(ctx context.Context, limit int) ([]models.FeedbackRow, error) {
	query := `
		SELECT id, user_id, email, name, message, created_at
		FROM feedback
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	result := []models.FeedbackRow{}
	for rows.Next() {
		var fb models.FeedbackRow
		if err := rows.Scan(&fb.ID, &fb.UserID, &fb.Email, &fb.Name, &fb.Message, &fb.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		result = append(result, fb)
	}
	return result, rows.Err()
}
