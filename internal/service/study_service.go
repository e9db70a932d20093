package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"vocabtrainer/internal/audio"
	"vocabtrainer/internal/models"
)

// StoryWriter writes a short story around a set of words
type StoryWriter interface {
	Story(ctx context.Context, words []string, settings models.PracticeSettings) (models.Story, error)
}

var boldPattern = regexp.MustCompile(`\*\*([^*]+)\*\*`)

// StoryCheck reports which session words the story marked in bold
type StoryCheck struct {
	Used    []string `json:"used"`
	Missing []string `json:"missing"`
}

// StudyService serves the extra study material: stories and speech
type StudyService struct {
	writer StoryWriter
	tts    *audio.TTSService
}

// NewStudyService creates a study service
func NewStudyService(writer StoryWriter, tts *audio.TTSService) *StudyService {
	return &StudyService{writer: writer, tts: tts}
}

// Story writes a story that uses words and checks which ones it used
func (s *StudyService) Story(ctx context.Context, words []string, settings models.PracticeSettings) (models.Story, StoryCheck, error) {
	if len(words) == 0 {
		return models.Story{}, StoryCheck{}, errors.New("at least one word is required")
	}
	story, err := s.writer.Story(ctx, words, settings)
	if err != nil {
		return models.Story{}, StoryCheck{}, err
	}
	return story, CheckStoryWords(story, words), nil
}

// CheckStoryWords matches bold-marked phrases of the story against words.
// A bold inflected form such as "cells" counts for "cell".
func CheckStoryWords(story models.Story, words []string) StoryCheck {
	var marked []string
	for _, m := range boldPattern.FindAllStringSubmatch(story.Body, -1) {
		marked = append(marked, strings.ToLower(strings.TrimSpace(m[1])))
	}

	check := StoryCheck{Used: []string{}, Missing: []string{}}
	for _, w := range words {
		target := strings.ToLower(strings.TrimSpace(w))
		found := false
		for _, m := range marked {
			if strings.Contains(m, target) {
				found = true
				break
			}
		}
		if found {
			check.Used = append(check.Used, w)
		} else {
			check.Missing = append(check.Missing, w)
		}
	}
	return check
}

// Speech returns the cached WAV file name for text, synthesising it first
// when needed
func (s *StudyService) Speech(ctx context.Context, text string) (string, error) {
	filename, err := s.tts.GenerateAudioFile(ctx, text)
	if err != nil {
		return "", err
	}
	return filename, nil
}

// AudioPath resolves a cached file name to its path on disk
func (s *StudyService) AudioPath(filename string) string {
	return s.tts.Path(filename)
}

// PrepareAudio synthesises every word of a session ahead of time
func (s *StudyService) PrepareAudio(ctx context.Context, words []string) (map[string]string, error) {
	files, err := s.tts.BatchGenerateAudio(ctx, words)
	if err != nil {
		return files, fmt.Errorf("failed to prepare audio: %w", err)
	}
	return files, nil
}

// ClearAudio removes every cached speech file
func (s *StudyService) ClearAudio() (int, error) {
	return s.tts.ClearCache()
}
