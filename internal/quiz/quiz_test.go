package quiz

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabtrainer/internal/models"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type stubSimplifier struct {
	text string
	err  error
}

func (s stubSimplifier) SimplifyQuestion(ctx context.Context, q models.QuizQuestion) (string, error) {
	return s.text, s.err
}

func sampleQuestions() []models.QuizQuestion {
	return []models.QuizQuestion{
		{Word: "kat", Type: models.QuestionMultipleChoice, Question: "Which animal says miauw?", Options: []string{"hond", "kat", "koe", "vis"}, CorrectIndex: 1},
		{Word: "hond", Type: models.QuestionWriting, Question: "Write the word for dog"},
		{Word: "koe", Type: models.QuestionMultipleChoice, Question: "Which animal gives milk?", Options: []string{"koe", "kat", "hond", "vis"}, CorrectIndex: 0},
	}
}

func newTestQuiz(clock *fakeClock) *Quiz {
	return New(sampleQuestions(), DefaultHintBudget, WithClock(clock.now), WithRand(rand.New(rand.NewSource(1))))
}

func TestQuizScoresAndTimesEveryQuestion(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)}
	q := newTestQuiz(clock)

	clock.advance(4 * time.Second)
	ok, err := q.AnswerChoice(1)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, q.Next())

	clock.advance(10 * time.Second)
	ok, err = q.AnswerText("  HOND ")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, q.Next())

	clock.advance(2 * time.Second)
	ok, err = q.AnswerChoice(3)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, q.Next())

	assert.True(t, q.Done())
	assert.Equal(t, 2, q.Score())
	assert.Equal(t, []models.QuizResult{
		{Word: "kat", Correct: true},
		{Word: "hond", Correct: true},
		{Word: "koe", Correct: false},
	}, q.Results())
	assert.Equal(t, []models.QuestionTiming{
		{Word: "kat", Seconds: 4},
		{Word: "hond", Seconds: 10},
		{Word: "koe", Seconds: 2},
	}, q.Timings())
}

func TestQuizAnswerOrdering(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	q := newTestQuiz(clock)

	assert.ErrorIs(t, q.Next(), ErrNotAnswered)

	_, err := q.AnswerText("kat")
	assert.ErrorIs(t, err, ErrWrongQuestionType)

	_, err = q.AnswerChoice(9)
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, err = q.AnswerChoice(0)
	require.NoError(t, err)
	_, err = q.AnswerChoice(1)
	assert.ErrorIs(t, err, ErrAlreadyAnswered)
}

func TestQuizFinished(t *testing.T) {
	q := New(nil, DefaultHintBudget)
	assert.True(t, q.Done())
	_, ok := q.Current()
	assert.False(t, ok)
	_, err := q.AnswerChoice(0)
	assert.ErrorIs(t, err, ErrFinished)
	assert.ErrorIs(t, q.Next(), ErrFinished)
	assert.Equal(t, 0, q.Score())
}

func TestEliminateOptions(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	q := newTestQuiz(clock)

	removed, err := q.EliminateOptions()
	require.NoError(t, err)
	assert.Len(t, removed, 2)
	assert.NotContains(t, removed, 1)
	assert.Equal(t, DefaultHintBudget-1, q.HintsLeft())
	assert.ElementsMatch(t, removed, q.Eliminated())

	_, err = q.EliminateOptions()
	assert.ErrorIs(t, err, ErrAlreadyEliminated)
	assert.Equal(t, DefaultHintBudget-1, q.HintsLeft())

	_, err = q.AnswerChoice(1)
	require.NoError(t, err)
	require.NoError(t, q.Next())

	_, err = q.EliminateOptions()
	assert.ErrorIs(t, err, ErrNotMultipleChoice)
	assert.Empty(t, q.Eliminated())
}

func TestHintBudgetIsShared(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	q := New(sampleQuestions(), 1, WithClock(clock.now))

	_, err := q.EliminateOptions()
	require.NoError(t, err)

	_, err = q.Simplify(context.Background(), stubSimplifier{text: "easier"})
	assert.ErrorIs(t, err, ErrNoHints)
	assert.Equal(t, 0, q.HintsLeft())
}

func TestSimplify(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	q := newTestQuiz(clock)

	text, err := q.Simplify(context.Background(), stubSimplifier{text: "Which pet purrs?"})
	require.NoError(t, err)
	assert.Equal(t, "Which pet purrs?", text)
	assert.Equal(t, "Which pet purrs?", q.SimplifiedText())
	assert.Equal(t, DefaultHintBudget-1, q.HintsLeft())
}

func TestSimplifyRefundsOnFailure(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	q := newTestQuiz(clock)

	_, err := q.Simplify(context.Background(), stubSimplifier{err: errors.New("network error")})
	require.Error(t, err)
	assert.Equal(t, DefaultHintBudget, q.HintsLeft())
	assert.Empty(t, q.SimplifiedText())
}

func TestReservedSimplifyDroppedOnNext(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	q := newTestQuiz(clock)

	index, _, err := q.ReserveSimplify()
	require.NoError(t, err)
	assert.Equal(t, 0, index)
	_, err = q.AnswerChoice(1)
	require.NoError(t, err)
	require.NoError(t, q.Next())

	assert.ErrorIs(t, q.ApplySimplified(index, "late"), ErrNoSimplifyReserved)
	q.RefundSimplify(index)
	assert.Equal(t, DefaultHintBudget-1, q.HintsLeft())
	assert.Empty(t, q.SimplifiedText())
}

func TestSimplifyReservationIsPerQuestion(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	q := newTestQuiz(clock)

	first, _, err := q.ReserveSimplify()
	require.NoError(t, err)
	_, _, err = q.ReserveSimplify()
	assert.ErrorIs(t, err, ErrSimplifyInProgress)
	assert.Equal(t, DefaultHintBudget-1, q.HintsLeft())

	_, err = q.AnswerChoice(0)
	require.NoError(t, err)
	require.NoError(t, q.Next())

	second, _, err := q.ReserveSimplify()
	require.NoError(t, err)
	assert.Equal(t, 1, second)

	assert.ErrorIs(t, q.ApplySimplified(first, "stale"), ErrNoSimplifyReserved)
	require.NoError(t, q.ApplySimplified(second, "fresh"))
	assert.Equal(t, "fresh", q.SimplifiedText())
	assert.Equal(t, DefaultHintBudget-2, q.HintsLeft())
}

func TestCheckText(t *testing.T) {
	question := models.QuizQuestion{Word: "Appel", Type: models.QuestionWriting}
	tests := []struct {
		answer string
		want   bool
	}{
		{"appel", true},
		{"  APPEL\n", true},
		{"apel", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckText(question, tt.answer))
		})
	}
}
