package repository

import (
	"context"
	"database/sql"
	"fmt"

	"vocabtrainer/internal/database"
	"vocabtrainer/internal/models"
)

// WordProgressRepository handles per-user word practice counters
type WordProgressRepository struct {
	db database.DBTX
}

// NewWordProgressRepository creates a new word progress repository
func NewWordProgressRepository(db database.DBTX) *WordProgressRepository {
	return &WordProgressRepository{db: db}
}

// GetWordProgress returns the counter row for a word, or nil when none exists
func (r *WordProgressRepository) GetWordProgress(ctx context.Context, userID, word string) (*models.WordProgressRow, error) {
	query := `
		SELECT id, user_id, word, practice_count, updated_at
		FROM word_progress
		WHERE user_id = ? AND word = ?
	`
	row := &models.WordProgressRow{}
	err := r.db.QueryRowContext(ctx, query, userID, word).Scan(
		&row.ID,
		&row.UserID,
		&row.Word,
		&row.PracticeCount,
		&row.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word progress: %w", err)
	}
	return row, nil
}

// InsertWordProgress creates a counter row
func (r *WordProgressRepository) InsertWordProgress(ctx context.Context, userID, word string, count int) error {
	query := `INSERT INTO word_progress (user_id, word, practice_count) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, userID, word, count); err != nil {
		return fmt.Errorf("failed to insert word progress: %w", err)
	}
	return nil
}

// UpdatePracticeCount overwrites the counter of an existing row
func (r *WordProgressRepository) UpdatePracticeCount(ctx context.Context, id int64, count int) error {
	query := `
		UPDATE word_progress
		SET practice_count = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	if _, err := r.db.ExecContext(ctx, query, count, id); err != nil {
		return fmt.Errorf("failed to update word progress: %w", err)
	}
	return nil
}

// GetUserWordProgress lists a user's counters, most practiced first
func (r *WordProgressRepository) GetUserWordProgress(ctx context.Context, userID string) ([]models.WordProgressRow, error) {
	query := `
		SELECT id, user_id, word, practice_count, updated_at
		FROM word_progress
		WHERE user_id = ?
		ORDER BY practice_count DESC, word
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query word progress: %w", err)
	}
	defer rows.Close()

	result := []models.WordProgressRow{}
	for rows.Next() {
		var row models.WordProgressRow
		if err := rows.Scan(&row.ID, &row.UserID, &row.Word, &row.PracticeCount, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan word progress: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
