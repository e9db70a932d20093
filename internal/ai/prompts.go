package ai

import (
	"fmt"
	"strings"

	"vocabtrainer/internal/models"
)

// subjectInstructions phrase the prompts for each known subject
var subjectInstructions = map[string]string{
	"english":   "Use everyday and academic English suited to secondary-school students.",
	"biology":   "Use the word as it is used in biology lessons: living organisms, cells, ecosystems and the human body.",
	"chemistry": "Use the word as it is used in chemistry lessons: substances, reactions and the periodic table.",
	"physics":   "Use the word as it is used in physics lessons: forces, energy, electricity and motion.",
	"history":   "Use the word as it is used in history lessons: events, periods, sources and causes.",
	"geography": "Use the word as it is used in geography lessons: landscapes, climate, population and maps.",
	"economics": "Use the word as it is used in economics lessons: markets, money, trade and government policy.",
	"math":      "Use the word as it is used in mathematics lessons: numbers, shapes, equations and statistics.",
}

var difficultyInstructions = map[string]string{
	"easy":   "Keep sentences short and use simple words.",
	"medium": "Use clear sentences of moderate length.",
	"hard":   "Use rich, exam-level sentences.",
}

// SubjectInstruction returns the instruction for a subject id. Unknown
// subjects and free-text contexts fall back to a generic instruction
// naming the context.
func SubjectInstruction(settings models.PracticeSettings) string {
	if s, ok := subjectInstructions[strings.ToLower(strings.TrimSpace(settings.Subject))]; ok {
		return s
	}

	context := settings.Context
	if context == "" {
		context = settings.Subject
	}
	if context == "" {
		return subjectInstructions["english"]
	}
	return fmt.Sprintf("Use the word as it is used in this context: %q.", context)
}

func difficultyInstruction(difficulty string) string {
	if s, ok := difficultyInstructions[difficulty]; ok {
		return s
	}
	return difficultyInstructions["medium"]
}

func buildStudyModelPrompt(word string, settings models.PracticeSettings) string {
	translation := ""
	if settings.NativeLanguage != "" {
		translation = fmt.Sprintf("\n- translation: the word translated into %s.", settings.NativeLanguage)
	}

	return fmt.Sprintf(`You are a vocabulary teacher for secondary-school students.
%s
%s

Create a study card for the word %q with:
- definition: one clear sentence.
- examples: exactly 3 example sentences. Each must contain the exact word form %q.
- synonyms: exactly 3.
- antonyms: exactly 3 (use "none" if the word has no antonym).%s

Respond with JSON only.`,
		SubjectInstruction(settings), difficultyInstruction(settings.Difficulty), word, word, translation)
}

func buildQuizPrompt(cards []models.FrayerModel, settings models.PracticeSettings) string {
	var b strings.Builder
	for i, card := range cards {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, card.Word, card.Definition)
	}

	return fmt.Sprintf(`You are writing a vocabulary quiz for secondary-school students.
%s
%s

Write exactly one question per word below, in the same order.
Mix two types:
- "multiple-choice": exactly 4 options, one correct, correctIndex is its 0-based position.
- "writing": the student types the word itself; give a sentence with a blank or a definition. No options.

WORDS:
%s
Respond with JSON only.`,
		SubjectInstruction(settings), difficultyInstruction(settings.Difficulty), b.String())
}

func buildStoryPrompt(words []string, settings models.PracticeSettings) string {
	return fmt.Sprintf(`Write a short story (150 to 250 words) for a secondary-school student.
%s
%s

Use every one of these words at least once and mark each use in bold with **double asterisks**:
%s

Respond with JSON only: a title and the body.`,
		SubjectInstruction(settings), difficultyInstruction(settings.Difficulty), strings.Join(words, ", "))
}

func buildTermsPrompt(text string) string {
	return fmt.Sprintf(`Extract the key subject-specific vocabulary terms a student should learn from the text below.
Return single words or short phrases, lowercase, no duplicates, at most 60 terms.

TEXT:
%s

Respond with JSON only.`, text)
}

func buildSimplifyPrompt(q models.QuizQuestion) string {
	return fmt.Sprintf(`Rewrite this quiz question in simpler words for a student who struggles with reading.
Keep the same meaning and answer. Do not reveal the answer %q.

QUESTION:
%s

Respond with only the rewritten question.`, q.Word, q.Question)
}

func buildFeedbackPrompt(record models.SessionRecord) string {
	var b strings.Builder
	for _, r := range record.QuizResults {
		mark := "wrong"
		if r.Correct {
			mark = "correct"
		}
		fmt.Fprintf(&b, "- %s: %s\n", r.Word, mark)
	}
	for _, t := range record.TimingData {
		fmt.Fprintf(&b, "- time on %s: %.0fs\n", t.Word, t.Seconds)
	}

	return fmt.Sprintf(`You are a supportive teacher. Give feedback on this vocabulary practice session.
Score: %d out of %d.

RESULTS:
%s
Use exactly these section headers, each on its own line:
%s
%s
%s

Write two or three sentences per section.`,
		record.Score, len(record.QuizResults), b.String(),
		feedbackHeaders[0], feedbackHeaders[1], feedbackHeaders[2])
}

func buildWordListPrompt(settings models.PracticeSettings, count int) string {
	return fmt.Sprintf(`You are a vocabulary teacher for secondary-school students.
%s
%s

List %d single vocabulary words a student should learn for this topic.
Return them in the "terms" array, lowercase, with no duplicates.

Respond with JSON only.`,
		SubjectInstruction(settings), difficultyInstruction(settings.Difficulty), count)
}
