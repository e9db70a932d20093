package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"vocabtrainer/internal/models"
	"vocabtrainer/internal/profile"
)

var (
	ErrEmptyFeedback  = errors.New("feedback message is required")
	ErrRecordNotFound = errors.New("session record not found")
)

// SessionReviewer writes evaluative feedback on a finished session
type SessionReviewer interface {
	Feedback(ctx context.Context, record models.SessionRecord) (models.Feedback, error)
}

// FeedbackService covers both directions of feedback: AI feedback on a
// student's session and messages students send to their teachers
type FeedbackService struct {
	reviewer SessionReviewer
	store    *profile.Store
	sync     *SyncService
	email    *EmailService
}

// NewFeedbackService creates a feedback service; email may be nil
func NewFeedbackService(reviewer SessionReviewer, store *profile.Store, sync *SyncService, email *EmailService) *FeedbackService {
	return &FeedbackService{reviewer: reviewer, store: store, sync: sync, email: email}
}

// ReviewSession generates feedback for one record of a user's history
func (s *FeedbackService) ReviewSession(ctx context.Context, user, sessionID string) (models.Feedback, error) {
	p, ok := s.store.Get(user)
	if !ok {
		return models.Feedback{}, profile.ErrProfileNotFound
	}
	for _, record := range p.SessionHistory {
		if record.ID == sessionID {
			return s.reviewer.Feedback(ctx, record)
		}
	}
	return models.Feedback{}, ErrRecordNotFound
}

// Submit stores a feedback message and notifies teachers by email. A failed
// notification does not fail the submission.
func (s *FeedbackService) Submit(ctx context.Context, fb models.FeedbackRow) (models.FeedbackRow, error) {
	fb.Message = strings.TrimSpace(fb.Message)
	if fb.Message == "" {
		return fb, ErrEmptyFeedback
	}

	id, err := s.sync.SubmitFeedback(ctx, fb)
	if err != nil {
		return fb, fmt.Errorf("failed to submit feedback: %w", err)
	}
	fb.ID = id

	if s.email != nil && s.email.IsEnabled() {
		if err := s.email.SendFeedbackNotification(ctx, fb); err != nil {
			log.Printf("Failed to send feedback notification: %v", err)
		}
	}
	return fb, nil
}

// Recent lists the newest feedback messages
func (s *FeedbackService) Recent(ctx context.Context, limit int) ([]models.FeedbackRow, error) {
	return s.sync.feedback.GetRecentFeedback(ctx, limit)
}
