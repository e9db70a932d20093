package models

import "time"

// StudyMode selects how study material is presented
type StudyMode string

const (
	StudyModeFrayer     StudyMode = "frayer"
	StudyModeFlashcards StudyMode = "flashcards"
)

// Valid reports whether m is a known study mode
func (m StudyMode) Valid() bool {
	return m == StudyModeFrayer || m == StudyModeFlashcards
}

// Quality tiers select which AI model serves a session
const (
	QualityFast     = "fast"
	QualityAdvanced = "advanced"
)

// PracticeSettings is the configuration snapshot of one session.
// Empty strings mean the setting is absent.
type PracticeSettings struct {
	WordCount      int    `json:"wordCount" validate:"min=1,max=50"`
	Difficulty     string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Subject        string `json:"subject,omitempty" validate:"max=100"`
	CourseID       string `json:"courseId,omitempty" validate:"max=100"`
	Context        string `json:"context,omitempty" validate:"max=200"`
	CustomFileName string `json:"customFileName,omitempty" validate:"max=255"`
	NativeLanguage string `json:"nativeLanguage,omitempty" validate:"max=50"`
	Quality        string `json:"quality,omitempty" validate:"omitempty,oneof=fast advanced"`
}

// QuizResult is the outcome of one quiz question
type QuizResult struct {
	Word    string `json:"word"`
	Correct bool   `json:"correct"`
}

// QuestionTiming records how long a student spent on one question
type QuestionTiming struct {
	Word    string  `json:"word"`
	Seconds float64 `json:"seconds"`
}

// SessionRecord is an immutable summary of a completed practice session
type SessionRecord struct {
	ID          string           `json:"id"`
	Date        time.Time        `json:"date"`
	Words       []string         `json:"words"`
	Score       int              `json:"score"`
	QuizResults []QuizResult     `json:"quizResults"`
	Settings    PracticeSettings `json:"settings"`
	StudyMode   StudyMode        `json:"studyMode"`
	TimingData  []QuestionTiming `json:"timingData"`
}

// TotalSeconds sums the per-question timings
func (r SessionRecord) TotalSeconds() float64 {
	total := 0.0
	for _, t := range r.TimingData {
		total += t.Seconds
	}
	return total
}

// Accuracy returns the percentage of correct quiz answers
func (r SessionRecord) Accuracy() float64 {
	if len(r.QuizResults) == 0 {
		return 0
	}
	return float64(r.Score) / float64(len(r.QuizResults)) * 100
}
