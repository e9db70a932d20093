package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"vocabtrainer/internal/models"
	"vocabtrainer/internal/practice"
	"vocabtrainer/internal/profile"
	"vocabtrainer/internal/progress"
	"vocabtrainer/internal/quiz"
	"vocabtrainer/internal/security"
)

var (
	ErrSessionNotFound = errors.New("practice session not found")
	ErrNotOwner        = errors.New("practice session belongs to another user")
)

// StudyGenerator is the AI surface a practice session needs
type StudyGenerator interface {
	practice.Generator
	quiz.Simplifier
}

type practiceEntry struct {
	session   *practice.Session
	user      string // profile name
	userID    string // authenticated id, empty for anonymous use
	createdAt time.Time

	mergeMu sync.Mutex
	merged  bool
}

// PracticeService keeps the live practice sessions and finishes them into
// the profile store
type PracticeService struct {
	gen   StudyGenerator
	store *profile.Store
	sync  *SyncService

	mu       sync.Mutex
	sessions map[string]*practiceEntry

	loadTimeout time.Duration
	now         func() time.Time
	options     []practice.Option
	wg          sync.WaitGroup
}

// NewPracticeService creates a practice service. sync may be nil, in which
// case nothing is mirrored remotely.
func NewPracticeService(gen StudyGenerator, store *profile.Store, sync *SyncService, opts ...practice.Option) *PracticeService {
	return &PracticeService{
		gen:         gen,
		store:       store,
		sync:        sync,
		sessions:    make(map[string]*practiceEntry),
		loadTimeout: 5 * time.Minute,
		now:         time.Now,
		options:     opts,
	}
}

// Start creates a session and begins loading its study material in the
// background. The returned view is in the loading phase.
func (s *PracticeService) Start(user, userID string, words []string, settings models.PracticeSettings) (practice.View, error) {
	if profile.Key(user) == "" {
		return practice.View{}, errors.New("user name is required")
	}

	id := security.NewID()
	session, err := practice.NewSession(id, words, settings, s.options...)
	if err != nil {
		return practice.View{}, err
	}

	s.mu.Lock()
	s.sessions[id] = &practiceEntry{session: session, user: profile.Key(user), userID: userID, createdAt: s.now()}
	s.mu.Unlock()

	s.load(session)
	return session.View(), nil
}

// load runs outside the request; a client leaving does not cancel it
func (s *PracticeService) load(session *practice.Session) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.loadTimeout)
		defer cancel()

		if err := session.Load(ctx, s.gen); err != nil {
			log.Printf("Failed to load practice session %s: %v", session.ID(), err)
		}
	}()
}

// Wait blocks until background loads have finished
func (s *PracticeService) Wait() {
	s.wg.Wait()
}

func (s *PracticeService) entry(id, user string) (*practiceEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if e.user != profile.Key(user) {
		return nil, ErrNotOwner
	}
	return e, nil
}

// View returns the current snapshot of a session
func (s *PracticeService) View(id, user string) (practice.View, error) {
	e, err := s.entry(id, user)
	if err != nil {
		return practice.View{}, err
	}
	return e.session.View(), nil
}

// Retry restarts loading of a failed session
func (s *PracticeService) Retry(id, user string) (practice.View, error) {
	e, err := s.entry(id, user)
	if err != nil {
		return practice.View{}, err
	}
	if err := e.session.Retry(); err != nil {
		return practice.View{}, err
	}
	s.load(e.session)
	return e.session.View(), nil
}

// ChooseStudyMode selects or switches the presentation mode
func (s *PracticeService) ChooseStudyMode(id, user string, mode models.StudyMode) (practice.View, error) {
	return s.apply(id, user, func(ps *practice.Session) error { return ps.ChooseStudyMode(mode) })
}

// ViewWord moves the study cursor
func (s *PracticeService) ViewWord(id, user string, index int) (practice.View, error) {
	return s.apply(id, user, func(ps *practice.Session) error { return ps.ViewWord(index) })
}

// StartQuiz moves from studying to the quiz
func (s *PracticeService) StartQuiz(id, user string) (practice.View, error) {
	return s.apply(id, user, func(ps *practice.Session) error { return ps.StartQuiz() })
}

// AnswerChoice answers the current multiple-choice question
func (s *PracticeService) AnswerChoice(id, user string, option int) (bool, practice.View, error) {
	var correct bool
	v, err := s.apply(id, user, func(ps *practice.Session) error {
		var err error
		correct, err = ps.AnswerChoice(option)
		return err
	})
	return correct, v, err
}

// AnswerText answers the current writing question
func (s *PracticeService) AnswerText(id, user, text string) (bool, practice.View, error) {
	var correct bool
	v, err := s.apply(id, user, func(ps *practice.Session) error {
		var err error
		correct, err = ps.AnswerText(text)
		return err
	})
	return correct, v, err
}

// EliminateOptions spends a hint to remove two wrong options
func (s *PracticeService) EliminateOptions(id, user string) (practice.View, error) {
	return s.apply(id, user, func(ps *practice.Session) error {
		_, err := ps.EliminateOptions()
		return err
	})
}

// Simplify spends a hint to reword the current question. The hint is
// refunded when the AI call fails.
func (s *PracticeService) Simplify(ctx context.Context, id, user string) (practice.View, error) {
	e, err := s.entry(id, user)
	if err != nil {
		return practice.View{}, err
	}
	if _, err := e.session.Simplify(ctx, s.gen); err != nil {
		return e.session.View(), err
	}
	return e.session.View(), nil
}

// Acknowledge moves past the answered question. On the last question the
// session completes: the outcome is merged into the profile store and, for
// signed-in users, mirrored remotely in the background. If saving fails the
// session stays completed but unmerged, and acknowledging again retries the
// merge.
func (s *PracticeService) Acknowledge(ctx context.Context, id, user string) (practice.View, *models.UserProfile, error) {
	e, err := s.entry(id, user)
	if err != nil {
		return practice.View{}, nil, err
	}

	outcome, err := e.session.Acknowledge()
	if err != nil {
		if !errors.Is(err, practice.ErrWrongPhase) {
			return practice.View{}, nil, err
		}
		completed, ok := e.session.Outcome()
		if !ok {
			return practice.View{}, nil, err
		}
		outcome = &completed
	}
	if outcome == nil {
		return e.session.View(), nil, nil
	}

	e.mergeMu.Lock()
	defer e.mergeMu.Unlock()
	if e.merged {
		return e.session.View(), nil, practice.ErrWrongPhase
	}

	// The merge is kept even if the client goes away mid-request
	updated, err := s.store.Update(context.WithoutCancel(ctx), e.user, func(p models.UserProfile) (models.UserProfile, error) {
		return progress.Merge(&p, *outcome), nil
	})
	if err != nil {
		return e.session.View(), nil, fmt.Errorf("failed to save progress: %w", err)
	}
	e.merged = true

	if s.sync != nil && e.userID != "" {
		s.sync.SyncOutcome(e.userID, *outcome)
	}

	return e.session.View(), &updated, nil
}

// Discard forgets a session
func (s *PracticeService) Discard(id, user string) error {
	if _, err := s.entry(id, user); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// PruneSessions drops sessions older than maxAge
func (s *PracticeService) PruneSessions(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxAge)
	removed := 0
	for id, e := range s.sessions {
		if e.createdAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *PracticeService) apply(id, user string, fn func(*practice.Session) error) (practice.View, error) {
	e, err := s.entry(id, user)
	if err != nil {
		return practice.View{}, err
	}
	if err := fn(e.session); err != nil {
		return e.session.View(), err
	}
	return e.session.View(), nil
}
