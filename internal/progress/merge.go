// Package progress folds completed practice sessions into a student's
// cumulative profile. Every function here returns a new profile and leaves its
// input untouched; callers persist the result.
package progress

import (
	"sort"
	"strings"
	"time"

	"vocabtrainer/internal/models"
)

// SessionOutcome is everything a finished practice session contributes
type SessionOutcome struct {
	ID            string
	Date          time.Time
	Score         int
	QuizResults   []models.QuizResult
	FrayerModels  []models.FrayerModel
	StudyMode     models.StudyMode
	TimingData    []models.QuestionTiming
	PracticeWords []string
	Settings      models.PracticeSettings
}

// Record builds the immutable history entry for the outcome
func (o SessionOutcome) Record() models.SessionRecord {
	return models.SessionRecord{
		ID:          o.ID,
		Date:        o.Date,
		Words:       append([]string(nil), o.PracticeWords...),
		Score:       o.Score,
		QuizResults: append([]models.QuizResult(nil), o.QuizResults...),
		Settings:    o.Settings,
		StudyMode:   o.StudyMode,
		TimingData:  append([]models.QuestionTiming(nil), o.TimingData...),
	}
}

// DefaultProfile returns the profile of a student who never practiced
func DefaultProfile() models.UserProfile {
	return models.UserProfile{
		SessionHistory:   []models.SessionRecord{},
		LearnedWords:     map[string]models.LearnedWord{},
		AvatarID:         models.DefaultAvatarID,
		WordListProgress: map[string]models.WordListProgress{},
	}
}

// ListID identifies the word list a session belongs to in the local profile
func ListID(settings models.PracticeSettings) string {
	switch {
	case settings.CustomFileName != "":
		return settings.CustomFileName
	case settings.Context != "":
		return settings.Context
	default:
		return "general"
	}
}

// RemoteListID identifies the word list in remote session rows. Its
// precedence differs from ListID.
func RemoteListID(settings models.PracticeSettings) string {
	switch {
	case settings.CustomFileName != "":
		return settings.CustomFileName
	case settings.CourseID != "":
		return settings.CourseID
	case settings.Context != "":
		return settings.Context
	default:
		return "custom"
	}
}

// Merge folds a finished session into prior. A nil prior is treated as
// DefaultProfile(). Merging the same outcome twice counts its quiz results twice.
func Merge(prior *models.UserProfile, outcome SessionOutcome) models.UserProfile {
	var next models.UserProfile
	if prior == nil {
		next = DefaultProfile()
	} else {
		next = Clone(*prior)
	}

	for _, fm := range outcome.FrayerModels {
		key := normalize(fm.Word)
		if key == "" {
			continue
		}
		if _, exists := next.LearnedWords[key]; !exists {
			next.LearnedWords[key] = models.LearnedWord{Definition: fm.Definition}
		}
	}

	// Results for words that were never studied are dropped
	for _, result := range outcome.QuizResults {
		key := normalize(result.Word)
		lw, exists := next.LearnedWords[key]
		if !exists {
			continue
		}
		if result.Correct {
			lw.CorrectCount++
		} else {
			lw.IncorrectCount++
		}
		next.LearnedWords[key] = lw
	}

	today := outcome.Date.Format(models.DateLayout)
	next.Streak = NextStreak(next.Streak, next.LastPracticeDate, outcome.Date)
	next.LastPracticeDate = &today

	next.Points += outcome.Score
	next.TotalScore += outcome.Score

	listID := ListID(outcome.Settings)
	lp, exists := next.WordListProgress[listID]
	if !exists {
		lp = models.WordListProgress{ListID: listID}
	}
	lp.PracticedWords = union(lp.PracticedWords, outcome.PracticeWords)
	lp.AllWords = union(lp.AllWords, outcome.PracticeWords)
	practicedAt := outcome.Date
	lp.LastPracticed = &practicedAt
	next.WordListProgress[listID] = lp

	next.SessionHistory = append([]models.SessionRecord{outcome.Record()}, next.SessionHistory...)
	next.MasteredWords = len(next.LearnedWords)

	return next
}

// RecordListWords stores the complete word set of a list, keeping any
// practiced words already recorded for it.
func RecordListWords(p models.UserProfile, listID string, words []string) models.UserProfile {
	next := Clone(p)
	lp, exists := next.WordListProgress[listID]
	if !exists {
		lp = models.WordListProgress{ListID: listID, PracticedWords: []string{}}
	}
	lp.AllWords = union(nil, words)
	next.WordListProgress[listID] = lp
	return next
}

// PracticedSet returns the practiced words of a list as a set
func PracticedSet(p models.UserProfile, listID string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range p.WordListProgress[listID].PracticedWords {
		set[w] = true
	}
	return set
}

// DeleteSession removes one record from the session history. It reports
// false when no record has the given id. Cumulative counters are not rewound.
func DeleteSession(p models.UserProfile, sessionID string) (models.UserProfile, bool) {
	next := Clone(p)
	for i, record := range next.SessionHistory {
		if record.ID == sessionID {
			next.SessionHistory = append(next.SessionHistory[:i], next.SessionHistory[i+1:]...)
			return next, true
		}
	}
	return next, false
}

// Summarize builds the dashboard summary of a profile
func Summarize(name string, p models.UserProfile) models.ProfileSummary {
	return models.ProfileSummary{
		Name:             name,
		MasteredWords:    p.MasteredWords,
		TotalScore:       p.TotalScore,
		Points:           p.Points,
		Streak:           p.Streak,
		LastPracticeDate: p.LastPracticeDate,
		SessionCount:     len(p.SessionHistory),
		AvatarID:         p.AvatarID,
	}
}

// Clone deep-copies a profile so reducers never share maps or slices
func Clone(p models.UserProfile) models.UserProfile {
	c := p

	c.SessionHistory = make([]models.SessionRecord, len(p.SessionHistory))
	copy(c.SessionHistory, p.SessionHistory)

	c.LearnedWords = make(map[string]models.LearnedWord, len(p.LearnedWords))
	for k, v := range p.LearnedWords {
		c.LearnedWords[k] = v
	}

	c.WordListProgress = make(map[string]models.WordListProgress, len(p.WordListProgress))
	for k, v := range p.WordListProgress {
		v.AllWords = append([]string(nil), v.AllWords...)
		v.PracticedWords = append([]string(nil), v.PracticedWords...)
		c.WordListProgress[k] = v
	}

	if p.LastPracticeDate != nil {
		d := *p.LastPracticeDate
		c.LastPracticeDate = &d
	}
	c.UnlockedAvatars = append([]string(nil), p.UnlockedAvatars...)

	return c
}

func normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// union merges words into a sorted, lowercase, duplicate-free set
func union(set []string, words []string) []string {
	seen := make(map[string]bool, len(set)+len(words))
	out := make([]string, 0, len(set)+len(words))
	for _, w := range set {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	for _, w := range words {
		key := normalize(w)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
