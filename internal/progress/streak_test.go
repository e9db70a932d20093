package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"vocabtrainer/internal/models"
)

func TestNextStreak(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		current int
		last    *string
		want    int
	}{
		{name: "never practiced", current: 0, last: nil, want: 1},
		{name: "practiced yesterday", current: 4, last: strPtr("2024-03-14"), want: 5},
		{name: "already practiced today", current: 4, last: strPtr("2024-03-15"), want: 4},
		{name: "three days ago", current: 9, last: strPtr("2024-03-12"), want: 1},
		{name: "two days ago", current: 2, last: strPtr("2024-03-13"), want: 1},
		{name: "full timestamp uses date portion", current: 2, last: strPtr("2024-03-14T23:59:59Z"), want: 3},
		{name: "garbage resets", current: 7, last: strPtr("not a date"), want: 1},
		{name: "future date resets", current: 3, last: strPtr("2024-03-16"), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextStreak(tt.current, tt.last, now))
		})
	}
}

func TestNextStreakAcrossMonthBoundary(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, 3, NextStreak(2, strPtr("2024-02-29"), now))
}

func TestMergeStreakProperties(t *testing.T) {
	today := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		last string
		want int
	}{
		{name: "yesterday increments", last: today.AddDate(0, 0, -1).Format(models.DateLayout), want: 6},
		{name: "three days ago resets", last: today.AddDate(0, 0, -3).Format(models.DateLayout), want: 1},
		{name: "today unchanged", last: today.Format(models.DateLayout), want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prior := DefaultProfile()
			prior.Streak = 5
			prior.LastPracticeDate = strPtr(tt.last)

			got := Merge(&prior, SessionOutcome{Date: today})
			assert.Equal(t, tt.want, got.Streak)
		})
	}
}
