package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"vocabtrainer/internal/models"
	"vocabtrainer/internal/progress"
	"vocabtrainer/internal/repository"
)

// syncTimeout bounds one fire-and-forget remote write
const syncTimeout = 30 * time.Second

// SyncService mirrors completed sessions into the remote tables. The rows
// are keyed by authenticated user id and are never reconciled with the
// profile blob.
type SyncService struct {
	sessions *repository.SessionRepository
	words    *repository.WordProgressRepository
	feedback *repository.FeedbackRepository
}

// NewSyncService creates a new sync service
func NewSyncService(sessions *repository.SessionRepository, words *repository.WordProgressRepository, feedback *repository.FeedbackRepository) *SyncService {
	return &SyncService{sessions: sessions, words: words, feedback: feedback}
}

// RecordSession inserts the summary row of a finished session
func (s *SyncService) RecordSession(ctx context.Context, userID string, outcome progress.SessionOutcome) (int64, error) {
	record := outcome.Record()
	row := models.PracticeSessionRow{
		UserID:          userID,
		Context:         progress.RemoteListID(outcome.Settings),
		FileName:        outcome.Settings.CustomFileName,
		Score:           outcome.Score,
		QuestionCount:   len(outcome.QuizResults),
		DurationSeconds: int(math.Round(record.TotalSeconds())),
	}
	id, err := s.sessions.CreateSession(ctx, row)
	if err != nil {
		return 0, fmt.Errorf("failed to record session: %w", err)
	}
	return id, nil
}

// RecordWordPractice bumps the practice counter of every word. Each word is
// read then updated or inserted without a transaction; concurrent sessions
// may race and the last write wins.
func (s *SyncService) RecordWordPractice(ctx context.Context, userID string, words []string) error {
	for _, word := range words {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			continue
		}

		existing, err := s.words.GetWordProgress(ctx, userID, word)
		if err != nil {
			return err
		}
		if existing != nil {
			err = s.words.UpdatePracticeCount(ctx, existing.ID, existing.PracticeCount+1)
		} else {
			err = s.words.InsertWordProgress(ctx, userID, word, 1)
		}
		if err != nil {
			return fmt.Errorf("failed to record practice of %q: %w", word, err)
		}
	}
	return nil
}

// SubmitFeedback stores a feedback message
func (s *SyncService) SubmitFeedback(ctx context.Context, row models.FeedbackRow) (int64, error) {
	return s.feedback.CreateFeedback(ctx, row)
}

// History returns the remote session rows of a user
func (s *SyncService) History(ctx context.Context, userID string, limit int) ([]models.PracticeSessionRow, error) {
	return s.sessions.GetUserSessions(ctx, userID, limit)
}

// WordCounts returns the remote practice counters of a user
func (s *SyncService) WordCounts(ctx context.Context, userID string) ([]models.WordProgressRow, error) {
	return s.words.GetUserWordProgress(ctx, userID)
}

// SyncOutcome writes the outcome rows in the background. Failures are
// logged only.
func (s *SyncService) SyncOutcome(userID string, outcome progress.SessionOutcome) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()

		if _, err := s.RecordSession(ctx, userID, outcome); err != nil {
			log.Printf("Failed to sync session %s: %v", outcome.ID, err)
		}
		if err := s.RecordWordPractice(ctx, userID, outcome.PracticeWords); err != nil {
			log.Printf("Failed to sync word progress for session %s: %v", outcome.ID, err)
		}
	}()
	return done
}
