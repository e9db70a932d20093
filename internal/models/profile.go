package models

import "time"

// DateLayout is the calendar-day format used for LastPracticeDate
const DateLayout = "2006-01-02"

// DefaultAvatarID is assigned to every new profile
const DefaultAvatarID = "owl"

// LearnedWord holds the per-word tallies of a student
type LearnedWord struct {
	Definition     string `json:"definition"`
	CorrectCount   int    `json:"correctCount"`
	IncorrectCount int    `json:"incorrectCount"`
}

// WordListProgress tracks which words of one list a student has practiced.
// PracticedWords is a set kept as a sorted slice of lowercase words.
type WordListProgress struct {
	ListID         string     `json:"listId"`
	AllWords       []string   `json:"allWords"`
	PracticedWords []string   `json:"practicedWords"`
	LastPracticed  *time.Time `json:"lastPracticed,omitempty"`
}

// UserProfile is the cumulative state of one student
type UserProfile struct {
	MasteredWords    int                         `json:"masteredWords"`
	TotalScore       int                         `json:"totalScore"`
	SessionHistory   []SessionRecord             `json:"sessionHistory"`
	LearnedWords     map[string]LearnedWord      `json:"learnedWords"`
	Streak           int                         `json:"streak"`
	LastPracticeDate *string                     `json:"lastPracticeDate"`
	Points           int                         `json:"points"`
	AvatarID         string                      `json:"avatarId"`
	UnlockedAvatars  []string                    `json:"unlockedAvatars,omitempty"`
	WordListProgress map[string]WordListProgress `json:"wordListProgress"`
}

// AllUsersData maps a lowercased user name to that user's profile
type AllUsersData map[string]UserProfile

// ProfileSummary is the dashboard view of a profile
type ProfileSummary struct {
	Name             string  `json:"name"`
	MasteredWords    int     `json:"masteredWords"`
	TotalScore       int     `json:"totalScore"`
	Points           int     `json:"points"`
	Streak           int     `json:"streak"`
	LastPracticeDate *string `json:"lastPracticeDate"`
	SessionCount     int     `json:"sessionCount"`
	AvatarID         string  `json:"avatarId"`
}
