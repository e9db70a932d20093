package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"vocabtrainer/internal/models"
)

// StudyModel generates the study card of one word
func (c *Client) StudyModel(ctx context.Context, word string, settings models.PracticeSettings) (models.FrayerModel, error) {
	var card models.FrayerModel
	err := c.generateJSON(ctx, fmt.Sprintf("study model for %q", word), c.Model(settings.Quality),
		buildStudyModelPrompt(word, settings), studyModelSchema, &card,
		func() error {
			if strings.TrimSpace(card.Definition) == "" {
				return errors.New("study model has no definition")
			}
			return nil
		})
	if err != nil {
		return models.FrayerModel{}, err
	}

	// The card is always filed under the requested word.
	card.Word = word
	return card, nil
}

// Quiz generates one question per study card
func (c *Client) Quiz(ctx context.Context, cards []models.FrayerModel, settings models.PracticeSettings) ([]models.QuizQuestion, error) {
	var resp struct {
		Questions []models.QuizQuestion `json:"questions"`
	}
	err := c.generateJSON(ctx, "quiz generation", c.Model(settings.Quality),
		buildQuizPrompt(cards, settings), quizSchema, &resp,
		func() error { return validateQuestions(resp.Questions) })
	if err != nil {
		return nil, err
	}
	return resp.Questions, nil
}

func validateQuestions(questions []models.QuizQuestion) error {
	if len(questions) == 0 {
		return errors.New("quiz has no questions")
	}
	for i, q := range questions {
		switch q.Type {
		case models.QuestionMultipleChoice:
			if len(q.Options) != 4 {
				return fmt.Errorf("question %d has %d options", i+1, len(q.Options))
			}
			if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
				return fmt.Errorf("question %d has correct index %d out of range", i+1, q.CorrectIndex)
			}
		case models.QuestionWriting:
		default:
			return fmt.Errorf("question %d has unknown type %q", i+1, q.Type)
		}
		if strings.TrimSpace(q.Word) == "" || strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("question %d is incomplete", i+1)
		}
	}
	return nil
}

// Story writes a short story using the given words in bold
func (c *Client) Story(ctx context.Context, words []string, settings models.PracticeSettings) (models.Story, error) {
	var story models.Story
	err := c.generateJSON(ctx, "story generation", c.Model(settings.Quality),
		buildStoryPrompt(words, settings), storySchema, &story,
		func() error {
			if strings.TrimSpace(story.Body) == "" {
				return errors.New("story has no body")
			}
			return nil
		})
	if err != nil {
		return models.Story{}, err
	}
	return story, nil
}

// ExtractTerms returns the raw key terms of a text; callers normalise them
func (c *Client) ExtractTerms(ctx context.Context, text string) ([]string, error) {
	var resp struct {
		Terms []string `json:"terms"`
	}
	err := c.generateJSON(ctx, "term extraction", c.cfg.FastModel, buildTermsPrompt(text), termsSchema, &resp, nil)
	if err != nil {
		return nil, err
	}
	return resp.Terms, nil
}

// SimplifyQuestion rewrites a question in simpler words. It is a single
// attempt; callers refund the hint on failure.
func (c *Client) SimplifyQuestion(ctx context.Context, q models.QuizQuestion) (string, error) {
	text, err := c.generateText(ctx, c.cfg.FastModel, buildSimplifyPrompt(q), nil)
	if err != nil {
		return "", &Error{Op: "question simplification", Attempts: 1, Wrapped: err}
	}
	return text, nil
}

// Feedback writes evaluative feedback on a finished session
func (c *Client) Feedback(ctx context.Context, record models.SessionRecord) (models.Feedback, error) {
	var raw string
	err := c.retry.run(ctx, c.sleep, "feedback generation", func(ctx context.Context) error {
		text, err := c.generateText(ctx, c.Model(record.Settings.Quality), buildFeedbackPrompt(record), nil)
		if err != nil {
			return err
		}
		raw = text
		return nil
	})
	if err != nil {
		return models.Feedback{}, err
	}
	return ParseFeedback(raw), nil
}

// Speech synthesises text and returns raw 16-bit little-endian mono PCM
func (c *Client) Speech(ctx context.Context, text string) ([]byte, error) {
	cfg := &generationConfig{ResponseModalities: []string{"AUDIO"}, SpeechConfig: &speechConfig{}}
	cfg.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName = c.cfg.SpeechVoice

	var pcm []byte
	err := c.retry.run(ctx, c.sleep, "speech synthesis", func(ctx context.Context) error {
		parts, err := c.generate(ctx, c.cfg.SpeechModel, generateRequest{
			Contents:         []content{{Role: "user", Parts: []part{{Text: text}}}},
			GenerationConfig: cfg,
		})
		if err != nil {
			return err
		}
		for _, p := range parts {
			if p.InlineData == nil || p.InlineData.Data == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				return fmt.Errorf("failed to decode audio: %w", err)
			}
			pcm = data
			return nil
		}
		return errors.New("gemini returned no audio data")
	})
	if err != nil {
		return nil, err
	}
	return pcm, nil
}

// SuggestWords proposes a word list for a subject or curriculum track when
// the student did not bring their own words
func (c *Client) SuggestWords(ctx context.Context, settings models.PracticeSettings, count int) ([]string, error) {
	var resp struct {
		Terms []string `json:"terms"`
	}
	err := c.generateJSON(ctx, "word list generation", c.Model(settings.Quality),
		buildWordListPrompt(settings, count), termsSchema, &resp,
		func() error {
			if len(resp.Terms) == 0 {
				return errors.New("word list is empty")
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return resp.Terms, nil
}
