package progress

import (
	"time"

	"vocabtrainer/internal/models"
)

// NextStreak computes the streak after practicing on day now.
// Practicing again on the same day keeps the streak, practicing the day after
// the last session extends it, and any other gap restarts it at 1.
func NextStreak(current int, lastPracticeDate *string, now time.Time) int {
	if lastPracticeDate == nil || len(*lastPracticeDate) < len(models.DateLayout) {
		return 1
	}

	last, err := time.Parse(models.DateLayout, (*lastPracticeDate)[:len(models.DateLayout)])
	if err != nil {
		return 1
	}

	today := civilDay(now)
	switch daysBetween(last, today) {
	case 0:
		return current
	case 1:
		return current + 1
	default:
		return 1
	}
}

func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts calendar days from a to b; both are UTC midnights
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
