package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabtrainer/internal/models"
)

func TestSubjectInstruction(t *testing.T) {
	tests := []struct {
		name     string
		settings models.PracticeSettings
		want     string
	}{
		{"known subject", models.PracticeSettings{Subject: "Biology"}, subjectInstructions["biology"]},
		{"free text context", models.PracticeSettings{Context: "World War II trenches"}, `Use the word as it is used in this context: "World War II trenches".`},
		{"unknown subject", models.PracticeSettings{Subject: "astronomy"}, `Use the word as it is used in this context: "astronomy".`},
		{"nothing set", models.PracticeSettings{}, subjectInstructions["english"]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SubjectInstruction(tt.settings))
		})
	}
}

func TestStudyModelPromptMentionsTranslation(t *testing.T) {
	prompt := buildStudyModelPrompt("kat", models.PracticeSettings{NativeLanguage: "Turkish"})
	assert.Contains(t, prompt, "translated into Turkish")

	prompt = buildStudyModelPrompt("kat", models.PracticeSettings{})
	assert.NotContains(t, prompt, "translation")
}

func TestParseFeedback(t *testing.T) {
	raw := `Nice work today!

## What went well
You knew **kat** right away.

**What to practice:** hond and koe.

Next steps
Try a story with these words.`

	fb := ParseFeedback(raw)
	assert.Equal(t, raw, fb.Raw)
	require.Len(t, fb.Sections, 4)
	assert.Equal(t, models.FeedbackSection{Heading: "Feedback", Body: "Nice work today!"}, fb.Sections[0])
	assert.Equal(t, "What went well", fb.Sections[1].Heading)
	assert.Equal(t, "You knew **kat** right away.", fb.Sections[1].Body)
	assert.Equal(t, "What to practice", fb.Sections[2].Heading)
	assert.Equal(t, "hond and koe.", fb.Sections[2].Body)
	assert.Equal(t, "Next steps", fb.Sections[3].Heading)
}

func TestParseFeedbackWithoutHeaders(t *testing.T) {
	fb := ParseFeedback("Just keep going.")
	require.Len(t, fb.Sections, 1)
	assert.Equal(t, "Feedback", fb.Sections[0].Heading)
}
