package audio

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"
)

// Synthesizer turns text into raw PCM speech
type Synthesizer interface {
	Speech(ctx context.Context, text string) ([]byte, error)
}

// TTSService caches synthesised speech as WAV files
type TTSService struct {
	audioDir string
	synth    Synthesizer
	mu       sync.Mutex
}

const maxNameLength = 40

// NewTTSService creates a new TTS service writing into audioDir
func NewTTSService(audioDir string, synth Synthesizer) *TTSService {
	return &TTSService{
		audioDir: audioDir,
		synth:    synth,
	}
}

// Filename returns the cache file name for text. Short words keep a
// readable name; anything else is hashed.
func Filename(text string) string {
	sanitized := strings.ToLower(strings.TrimSpace(text))
	sanitized = strings.ReplaceAll(sanitized, " ", "_")

	readable := sanitized != "" && len(sanitized) <= maxNameLength
	for _, r := range sanitized {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			readable = false
			break
		}
	}
	if readable {
		return fmt.Sprintf("word_%s.wav", sanitized)
	}

	h := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(text))))
	return fmt.Sprintf("speech_%s.wav", hex.EncodeToString(h[:12]))
}

// Path returns the full path of a cached file
func (s *TTSService) Path(filename string) string {
	return filepath.Join(s.audioDir, filepath.Base(filename))
}

// GenerateAudioFile converts text to speech and saves it as WAV.
// Returns the filename (not full path) on success.
func (s *TTSService) GenerateAudioFile(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("text is required")
	}

	filename := Filename(text)
	path := s.Path(filename)

	if _, err := os.Stat(path); err == nil {
		return filename, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another request may have written it while we waited
	if _, err := os.Stat(path); err == nil {
		return filename, nil
	}

	pcm, err := s.synth.Speech(ctx, text)
	if err != nil {
		return "", fmt.Errorf("failed to generate audio: %w", err)
	}

	wav, err := EncodeWAV(pcm, SampleRate, Channels)
	if err != nil {
		return "", fmt.Errorf("failed to encode audio: %w", err)
	}

	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, wav, 0o644); err != nil {
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}

	log.Printf("Generated audio %s (%.1fs)", filename, Duration(pcm, SampleRate, Channels))
	return filename, nil
}

// BatchGenerateAudio generates audio files for multiple words
func (s *TTSService) BatchGenerateAudio(ctx context.Context, words []string) (map[string]string, error) {
	results := make(map[string]string)

	for _, word := range words {
		filename, err := s.GenerateAudioFile(ctx, word)
		if err != nil {
			return results, fmt.Errorf("failed to generate audio for '%s': %w", word, err)
		}
		results[word] = filename
	}

	return results, nil
}

// DeleteAudioFile removes an audio file
func (s *TTSService) DeleteAudioFile(filename string) error {
	path := s.Path(filename)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil // Already deleted
	}

	return os.Remove(path)
}

// GetAllAudioFiles returns a list of all WAV files in the audio directory
func (s *TTSService) GetAllAudioFiles() ([]string, error) {
	files, err := os.ReadDir(s.audioDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read audio directory: %w", err)
	}

	audioFiles := []string{}
	for _, file := range files {
		if !file.IsDir() && filepath.Ext(file.Name()) == ".wav" {
			audioFiles = append(audioFiles, file.Name())
		}
	}

	return audioFiles, nil
}

// ClearCache deletes every cached audio file and returns how many were removed
func (s *TTSService) ClearCache() (int, error) {
	files, err := s.GetAllAudioFiles()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, f := range files {
		if err := s.DeleteAudioFile(f); err != nil {
			return removed, fmt.Errorf("failed to delete %s: %w", f, err)
		}
		removed++
	}
	return removed, nil
}
