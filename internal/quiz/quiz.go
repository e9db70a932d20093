// Package quiz scores a generated vocabulary quiz one question at a time,
// timing each question and spending a shared hint budget.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"vocabtrainer/internal/models"
)

// DefaultHintBudget is the number of hints shared across one quiz
const DefaultHintBudget = 3

var (
	ErrFinished           = errors.New("quiz is finished")
	ErrAlreadyAnswered    = errors.New("question already answered")
	ErrNotAnswered        = errors.New("question not answered yet")
	ErrNoHints            = errors.New("no hints left")
	ErrNotMultipleChoice  = errors.New("question is not multiple choice")
	ErrAlreadyEliminated  = errors.New("options already eliminated for this question")
	ErrInvalidOption      = errors.New("invalid option")
	ErrWrongQuestionType  = errors.New("answer does not match question type")
	ErrNoSimplifyReserved = errors.New("no simplification in progress")
	ErrSimplifyInProgress = errors.New("simplification already in progress for this question")
)

// Simplifier rewrites a question in simpler wording
type Simplifier interface {
	SimplifyQuestion(ctx context.Context, q models.QuizQuestion) (string, error)
}

// Quiz holds the evaluation state of one quiz. It is not safe for
// concurrent use; callers serialize access.
type Quiz struct {
	questions  []models.QuizQuestion
	current    int
	answered   bool
	results    []models.QuizResult
	timings    []models.QuestionTiming
	hints      int
	eliminated map[int][]int
	simplified map[int]string
	pending    map[int]bool
	startedAt  time.Time
	now        func() time.Time
	rng        *rand.Rand
}

// Option configures a Quiz
type Option func(*Quiz)

// WithClock overrides the time source used for question timers
func WithClock(now func() time.Time) Option {
	return func(q *Quiz) { q.now = now }
}

// WithRand overrides the random source used to pick eliminated options
func WithRand(rng *rand.Rand) Option {
	return func(q *Quiz) { q.rng = rng }
}

// New starts a quiz; the first question's timer starts immediately
func New(questions []models.QuizQuestion, hintBudget int, opts ...Option) *Quiz {
	q := &Quiz{
		questions:  append([]models.QuizQuestion(nil), questions...),
		hints:      hintBudget,
		eliminated: make(map[int][]int),
		simplified: make(map[int]string),
		pending:    make(map[int]bool),
		now:        time.Now,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.startedAt = q.now()
	return q
}

// Len returns the number of questions
func (q *Quiz) Len() int { return len(q.questions) }

// Index returns the position of the current question
func (q *Quiz) Index() int { return q.current }

// Done reports whether every question has been answered and moved past
func (q *Quiz) Done() bool { return q.current >= len(q.questions) }

// Answered reports whether the current question has an answer
func (q *Quiz) Answered() bool { return q.answered }

// HintsLeft returns the remaining hint budget
func (q *Quiz) HintsLeft() int { return q.hints }

// Current returns the question being asked
func (q *Quiz) Current() (models.QuizQuestion, bool) {
	if q.Done() {
		return models.QuizQuestion{}, false
	}
	return q.questions[q.current], true
}

// Eliminated returns the option indexes hidden for the current question
func (q *Quiz) Eliminated() []int {
	return append([]int(nil), q.eliminated[q.current]...)
}

// SimplifiedText returns the simplified wording of the current question, if any
func (q *Quiz) SimplifiedText() string {
	return q.simplified[q.current]
}

// AnswerChoice answers a multiple-choice question
func (q *Quiz) AnswerChoice(option int) (bool, error) {
	question, err := q.answerable()
	if err != nil {
		return false, err
	}
	if question.Type != models.QuestionMultipleChoice {
		return false, ErrWrongQuestionType
	}
	if option < 0 || option >= len(question.Options) {
		return false, ErrInvalidOption
	}
	return q.record(question, CheckChoice(question, option)), nil
}

// AnswerText answers a writing question
func (q *Quiz) AnswerText(text string) (bool, error) {
	question, err := q.answerable()
	if err != nil {
		return false, err
	}
	if question.Type != models.QuestionWriting {
		return false, ErrWrongQuestionType
	}
	return q.record(question, CheckText(question, text)), nil
}

// Next records the current question's time and moves on. Timing is kept
// whether or not the answer was correct.
func (q *Quiz) Next() error {
	if q.Done() {
		return ErrFinished
	}
	if !q.answered {
		return ErrNotAnswered
	}

	elapsed := q.now().Sub(q.startedAt).Seconds()
	q.timings = append(q.timings, models.QuestionTiming{
		Word:    q.questions[q.current].Word,
		Seconds: elapsed,
	})

	delete(q.pending, q.current)
	q.current++
	q.answered = false
	q.startedAt = q.now()
	return nil
}

// Results returns the answered results in presentation order
func (q *Quiz) Results() []models.QuizResult {
	return append([]models.QuizResult(nil), q.results...)
}

// Timings returns the recorded per-question times
func (q *Quiz) Timings() []models.QuestionTiming {
	return append([]models.QuestionTiming(nil), q.timings...)
}

// Score counts the correct results
func (q *Quiz) Score() int {
	return Score(q.results)
}

// EliminateOptions spends a hint to hide two incorrect options of the
// current multiple-choice question
func (q *Quiz) EliminateOptions() ([]int, error) {
	question, err := q.answerable()
	if err != nil {
		return nil, err
	}
	if question.Type != models.QuestionMultipleChoice {
		return nil, ErrNotMultipleChoice
	}
	if len(q.eliminated[q.current]) > 0 {
		return nil, ErrAlreadyEliminated
	}
	if q.hints <= 0 {
		return nil, ErrNoHints
	}

	var wrong []int
	for i := range question.Options {
		if i != question.CorrectIndex {
			wrong = append(wrong, i)
		}
	}
	q.rng.Shuffle(len(wrong), func(i, j int) { wrong[i], wrong[j] = wrong[j], wrong[i] })
	if len(wrong) > 2 {
		wrong = wrong[:2]
	}

	q.hints--
	q.eliminated[q.current] = wrong
	return append([]int(nil), wrong...), nil
}

// ReserveSimplify spends a hint for a simplification of the current question
// and returns its index and the question to send to the simplifier. Complete
// the reservation with ApplySimplified or RefundSimplify using that index.
// Moving past the question drops the reservation.
func (q *Quiz) ReserveSimplify() (int, models.QuizQuestion, error) {
	question, err := q.answerable()
	if err != nil {
		return -1, models.QuizQuestion{}, err
	}
	if q.pending[q.current] {
		return -1, models.QuizQuestion{}, ErrSimplifyInProgress
	}
	if q.hints <= 0 {
		return -1, models.QuizQuestion{}, ErrNoHints
	}
	q.hints--
	q.pending[q.current] = true
	return q.current, question, nil
}

// ApplySimplified stores the simplified wording for question index if its
// reservation is still open
func (q *Quiz) ApplySimplified(index int, text string) error {
	if !q.pending[index] {
		return ErrNoSimplifyReserved
	}
	delete(q.pending, index)
	q.simplified[index] = text
	return nil
}

// RefundSimplify returns the hint spent on question index if its
// reservation is still open
func (q *Quiz) RefundSimplify(index int) {
	if !q.pending[index] {
		return
	}
	delete(q.pending, index)
	q.hints++
}

// Simplify reserves a hint, calls s and refunds the hint when s fails
func (q *Quiz) Simplify(ctx context.Context, s Simplifier) (string, error) {
	index, question, err := q.ReserveSimplify()
	if err != nil {
		return "", err
	}
	text, err := s.SimplifyQuestion(ctx, question)
	if err != nil {
		q.RefundSimplify(index)
		return "", fmt.Errorf("failed to simplify question: %w", err)
	}
	if err := q.ApplySimplified(index, text); err != nil {
		return "", err
	}
	return text, nil
}

func (q *Quiz) answerable() (models.QuizQuestion, error) {
	if q.Done() {
		return models.QuizQuestion{}, ErrFinished
	}
	if q.answered {
		return models.QuizQuestion{}, ErrAlreadyAnswered
	}
	return q.questions[q.current], nil
}

func (q *Quiz) record(question models.QuizQuestion, correct bool) bool {
	q.results = append(q.results, models.QuizResult{Word: question.Word, Correct: correct})
	q.answered = true
	return correct
}

// CheckChoice reports whether option is the correct index
func CheckChoice(question models.QuizQuestion, option int) bool {
	return option == question.CorrectIndex
}

// CheckText compares a typed answer with the target word, ignoring case
// and surrounding whitespace
func CheckText(question models.QuizQuestion, text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), strings.TrimSpace(question.Word))
}

// Score counts correct results
func Score(results []models.QuizResult) int {
	score := 0
	for _, r := range results {
		if r.Correct {
			score++
		}
	}
	return score
}
