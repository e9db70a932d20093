package models

import "time"

// Roles stored on remote user rows
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

// User represents an authenticated account in the remote store
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	OAuthProvider string    `json:"oauthProvider"`
	OAuthSubject  string    `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// IsTeacher reports whether the user has the teacher role
func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

// PracticeSessionRow is the remote summary row of a completed session
type PracticeSessionRow struct {
	ID              int64     `json:"id"`
	UserID          string    `json:"userId"`
	Context         string    `json:"context"`
	FileName        string    `json:"fileName,omitempty"`
	Score           int       `json:"score"`
	QuestionCount   int       `json:"questionCount"`
	DurationSeconds int       `json:"durationSeconds"`
	CreatedAt       time.Time `json:"createdAt"`
}

// WordProgressRow counts how often a user practiced a word
type WordProgressRow struct {
	ID            int64     `json:"id"`
	UserID        string    `json:"userId"`
	Word          string    `json:"word"`
	PracticeCount int       `json:"practiceCount"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// FeedbackRow is a message submitted through the feedback form
type FeedbackRow struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
