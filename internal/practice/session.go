// Package practice drives one practice session from generating study
// material through studying and the quiz to completion.
package practice

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"vocabtrainer/internal/models"
	"vocabtrainer/internal/progress"
	"vocabtrainer/internal/quiz"
)

// Phase is a step of the session lifecycle
type Phase string

const (
	PhaseLoading            Phase = "loading"
	PhaseError              Phase = "error"
	PhaseStudyModeSelection Phase = "study_mode_selection"
	PhaseStudying           Phase = "studying"
	PhaseQuiz               Phase = "quiz"
	PhaseComplete           Phase = "complete"
)

// DefaultConcurrency bounds the per-word study model requests in flight
const DefaultConcurrency = 4

var (
	ErrNoWords           = errors.New("at least one word is required")
	ErrWrongPhase        = errors.New("action not allowed in the current phase")
	ErrAlreadyLoading    = errors.New("session is already loading")
	ErrInvalidStudyMode  = errors.New("invalid study mode")
	ErrWordOutOfRange    = errors.New("word index out of range")
	ErrNotAllWordsViewed = errors.New("view every word before starting the quiz")
)

// Generator produces the study material of a session
type Generator interface {
	StudyModel(ctx context.Context, word string, settings models.PracticeSettings) (models.FrayerModel, error)
	Quiz(ctx context.Context, cards []models.FrayerModel, settings models.PracticeSettings) ([]models.QuizQuestion, error)
}

// Session is one student's practice session. All methods are safe for
// concurrent use.
type Session struct {
	id       string
	words    []string
	settings models.PracticeSettings

	mu          sync.Mutex
	phase       Phase
	loading     bool
	loadErr     error
	cards       []models.FrayerModel
	questions   []models.QuizQuestion
	studyMode   models.StudyMode
	wordIndex   int
	reachedLast bool
	quiz        *quiz.Quiz
	outcome     *progress.SessionOutcome

	concurrency int
	now         func() time.Time
	rng         *rand.Rand
}

// Option configures a Session
type Option func(*Session)

// WithClock overrides the time source for question timers and the session date
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithRand overrides the random source used by quiz hints
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

// WithConcurrency bounds the study model requests in flight
func WithConcurrency(n int) Option {
	return func(s *Session) { s.concurrency = n }
}

// NewSession creates a session in the loading phase. Settings are frozen
// from here on.
func NewSession(id string, words []string, settings models.PracticeSettings, opts ...Option) (*Session, error) {
	var cleaned []string
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			cleaned = append(cleaned, w)
		}
	}
	if len(cleaned) == 0 {
		return nil, ErrNoWords
	}

	s := &Session{
		id:          id,
		words:       cleaned,
		settings:    settings,
		phase:       PhaseLoading,
		concurrency: DefaultConcurrency,
		now:         time.Now,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ID returns the session id
func (s *Session) ID() string { return s.id }

// Words returns the practice words
func (s *Session) Words() []string { return append([]string(nil), s.words...) }

// Settings returns the frozen settings
func (s *Session) Settings() models.PracticeSettings { return s.settings }

// Phase returns the current phase
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Load fetches every study model concurrently, then the quiz. Any failure
// moves the session to PhaseError; nothing fetched is kept.
func (s *Session) Load(ctx context.Context, gen Generator) error {
	s.mu.Lock()
	if s.phase != PhaseLoading {
		s.mu.Unlock()
		return ErrWrongPhase
	}
	if s.loading {
		s.mu.Unlock()
		return ErrAlreadyLoading
	}
	s.loading = true
	s.mu.Unlock()

	cards, questions, err := s.fetch(ctx, gen)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.phase = PhaseError
		s.loadErr = err
		return err
	}
	s.cards = cards
	s.questions = questions
	s.phase = PhaseStudyModeSelection
	return nil
}

func (s *Session) fetch(ctx context.Context, gen Generator) ([]models.FrayerModel, []models.QuizQuestion, error) {
	cards := make([]models.FrayerModel, len(s.words))

	g, gctx := errgroup.WithContext(ctx)
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	for i, word := range s.words {
		g.Go(func() error {
			card, err := gen.StudyModel(gctx, word, s.settings)
			if err != nil {
				return fmt.Errorf("failed to generate study material for %q: %w", word, err)
			}
			cards[i] = card
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	questions, err := gen.Quiz(ctx, cards, s.settings)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate quiz: %w", err)
	}
	return cards, questions, nil
}

// Retry moves a failed session back to loading; call Load again afterwards
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseError {
		return ErrWrongPhase
	}
	s.phase = PhaseLoading
	s.loadErr = nil
	return nil
}

// Err returns the failure that moved the session to PhaseError
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// ChooseStudyMode starts the study phase in the chosen presentation
func (s *Session) ChooseStudyMode(mode models.StudyMode) error {
	if !mode.Valid() {
		return ErrInvalidStudyMode
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Switching presentation while studying keeps the viewing progress.
	switch s.phase {
	case PhaseStudying:
		s.studyMode = mode
		return nil
	case PhaseStudyModeSelection:
	default:
		return ErrWrongPhase
	}
	s.studyMode = mode
	s.phase = PhaseStudying
	s.wordIndex = 0
	s.reachedLast = len(s.cards) == 1
	return nil
}

// ViewWord shows the card at index. Reaching the last card unlocks the quiz.
func (s *Session) ViewWord(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseStudying {
		return ErrWrongPhase
	}
	if index < 0 || index >= len(s.cards) {
		return ErrWordOutOfRange
	}
	s.wordIndex = index
	if index == len(s.cards)-1 {
		s.reachedLast = true
	}
	return nil
}

// StartQuiz moves from studying to the quiz once every word was viewed
func (s *Session) StartQuiz() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseStudying {
		return ErrWrongPhase
	}
	if !s.reachedLast {
		return ErrNotAllWordsViewed
	}
	s.quiz = quiz.New(s.questions, quiz.DefaultHintBudget, quiz.WithClock(s.now), quiz.WithRand(s.rng))
	s.phase = PhaseQuiz
	return nil
}

// AnswerChoice answers the current multiple-choice question
func (s *Session) AnswerChoice(option int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseQuiz {
		return false, ErrWrongPhase
	}
	return s.quiz.AnswerChoice(option)
}

// AnswerText answers the current writing question
func (s *Session) AnswerText(text string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseQuiz {
		return false, ErrWrongPhase
	}
	return s.quiz.AnswerText(text)
}

// EliminateOptions spends a hint on the current question
func (s *Session) EliminateOptions() ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseQuiz {
		return nil, ErrWrongPhase
	}
	return s.quiz.EliminateOptions()
}

// Simplify spends a hint on simpler wording of the current question. The
// session is not locked while the simplifier runs.
func (s *Session) Simplify(ctx context.Context, simplifier quiz.Simplifier) (string, error) {
	s.mu.Lock()
	if s.phase != PhaseQuiz {
		s.mu.Unlock()
		return "", ErrWrongPhase
	}
	q := s.quiz
	index, question, err := q.ReserveSimplify()
	s.mu.Unlock()
	if err != nil {
		return "", err
	}

	text, err := simplifier.SimplifyQuestion(ctx, question)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		q.RefundSimplify(index)
		return "", fmt.Errorf("failed to simplify question: %w", err)
	}
	if err := q.ApplySimplified(index, text); err != nil {
		return "", err
	}
	return text, nil
}

// Acknowledge moves past the answered question. Acknowledging the last
// question completes the session and returns its outcome.
func (s *Session) Acknowledge() (*progress.SessionOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseQuiz {
		return nil, ErrWrongPhase
	}
	if err := s.quiz.Next(); err != nil {
		return nil, err
	}
	if !s.quiz.Done() {
		return nil, nil
	}

	outcome := progress.SessionOutcome{
		ID:            s.id,
		Date:          s.now(),
		Score:         s.quiz.Score(),
		QuizResults:   s.quiz.Results(),
		FrayerModels:  append([]models.FrayerModel(nil), s.cards...),
		StudyMode:     s.studyMode,
		TimingData:    s.quiz.Timings(),
		PracticeWords: append([]string(nil), s.words...),
		Settings:      s.settings,
	}
	s.outcome = &outcome
	s.phase = PhaseComplete

	result := outcome
	return &result, nil
}

// Outcome returns the outcome of a completed session
func (s *Session) Outcome() (progress.SessionOutcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outcome == nil {
		return progress.SessionOutcome{}, false
	}
	return *s.outcome, true
}
