package repository

import (
	"context"
	"database/sql"
	"fmt"

	"vocabtrainer/internal/database"
	"vocabtrainer/internal/models"
)

// SessionRepository handles remote practice session summary rows
type SessionRepository struct {
	db database.DBTX
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db database.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// CreateSession inserts a summary row and returns its id
func (r *SessionRepository) CreateSession(ctx context.Context, row models.PracticeSessionRow) (int64, error) {
	query := `
		INSERT INTO practice_sessions (user_id, context, file_name, score, question_count, duration_seconds)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	var fileName sql.NullString
	if row.FileName != "" {
		fileName = sql.NullString{String: row.FileName, Valid: true}
	}

	id, err := r.db.ExecReturningID(ctx, query,
		row.UserID, row.Context, fileName, row.Score, row.QuestionCount, row.DurationSeconds)
	if err != nil {
		return 0, fmt.Errorf("failed to create practice session: %w", err)
	}
	return id, nil
}

// GetUserSessions returns a user's most recent sessions, newest first
func (r *SessionRepository) GetUserSessions(ctx context.Context, userID string, limit int) ([]models.PracticeSessionRow, error) {
	query := `
		SELECT id, user_id, context, COALESCE(file_name, ''), score, question_count, duration_seconds, created_at
		FROM practice_sessions
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query practice sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.PracticeSessionRow{}
	for rows.Next() {
		var s models.PracticeSessionRow
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.Context,
			&s.FileName,
			&s.Score,
			&s.QuestionCount,
			&s.DurationSeconds,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan practice session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
