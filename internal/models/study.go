package models

// FrayerModel is the four-quadrant study card of one word
type FrayerModel struct {
	Word        string   `json:"word"`
	Definition  string   `json:"definition"`
	Examples    []string `json:"examples"`
	Synonyms    []string `json:"synonyms"`
	Antonyms    []string `json:"antonyms"`
	Translation string   `json:"translation,omitempty"`
}

// QuestionType distinguishes quiz question kinds
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple-choice"
	QuestionWriting        QuestionType = "writing"
)

// QuizQuestion is one generated quiz question
type QuizQuestion struct {
	Word         string       `json:"word"`
	Type         QuestionType `json:"type"`
	Question     string       `json:"question"`
	Options      []string     `json:"options,omitempty"`
	CorrectIndex int          `json:"correctIndex"`
}

// Story is a short generated text that uses the session words
type Story struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// FeedbackSection is one headed part of evaluative feedback
type FeedbackSection struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// Feedback is free-text evaluation of a session
type Feedback struct {
	Raw      string            `json:"raw"`
	Sections []FeedbackSection `json:"sections"`
}
