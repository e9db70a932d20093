package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"vocabtrainer/internal/customlist"
	"vocabtrainer/internal/extract"
	"vocabtrainer/internal/models"
	"vocabtrainer/internal/profile"
	"vocabtrainer/internal/progress"
)

// PastedTextListID files pasted text that has no name of its own
const PastedTextListID = "pasted text"

// WordSource is the AI surface of the list pipeline
type WordSource interface {
	ExtractTerms(ctx context.Context, text string) ([]string, error)
	SuggestWords(ctx context.Context, settings models.PracticeSettings, count int) ([]string, error)
}

// WordFilter drops words that must never be shown to students
type WordFilter interface {
	FilterWords(ctx context.Context, words []string) (allowed, blocked []string, err error)
}

// ListResult is a word list and the words picked from it for one session
type ListResult struct {
	ListID   string   `json:"listId"`
	Terms    []string `json:"terms"`
	Selected []string `json:"selected"`
	Fresh    int      `json:"freshCount"`
	Blocked  int      `json:"blockedCount"`
}

// ListService builds word lists from uploads, pasted text and subjects
type ListService struct {
	words  WordSource
	filter WordFilter
	store  *profile.Store

	mu  sync.Mutex
	rng *rand.Rand
}

// NewListService creates a list service. filter may be nil.
func NewListService(words WordSource, filter WordFilter, store *profile.Store) *ListService {
	return &ListService{
		words:  words,
		filter: filter,
		store:  store,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ExtractFromFile runs the custom-list pipeline on an uploaded document
func (s *ListService) ExtractFromFile(ctx context.Context, user, filename, contentType string, data []byte, length int) (ListResult, error) {
	text, err := extract.Text(filename, contentType, data)
	if err != nil {
		return ListResult{}, err
	}
	return s.extract(ctx, user, filename, text, length)
}

// ExtractFromText runs the custom-list pipeline on pasted text
func (s *ListService) ExtractFromText(ctx context.Context, user, name, text string, length int) (ListResult, error) {
	listID := strings.TrimSpace(name)
	if listID == "" {
		listID = PastedTextListID
	}
	return s.extract(ctx, user, listID, text, length)
}

func (s *ListService) extract(ctx context.Context, user, listID, text string, length int) (ListResult, error) {
	prepared, err := customlist.PrepareText(text)
	if err != nil {
		return ListResult{}, err
	}

	raw, err := s.words.ExtractTerms(ctx, prepared)
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to extract terms: %w", err)
	}
	return s.finish(ctx, user, listID, raw, length)
}

// Suggest asks the AI for a subject or curriculum word list and picks a
// session from it, preferring words the student has not practiced
func (s *ListService) Suggest(ctx context.Context, user string, settings models.PracticeSettings) (ListResult, error) {
	if settings.WordCount <= 0 {
		return ListResult{}, errors.New("word count must be positive")
	}
	// Ask for extra words so practiced ones can be skipped
	raw, err := s.words.SuggestWords(ctx, settings, settings.WordCount*2)
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to suggest words: %w", err)
	}
	return s.finish(ctx, user, progress.ListID(settings), raw, settings.WordCount)
}

func (s *ListService) finish(ctx context.Context, user, listID string, raw []string, length int) (ListResult, error) {
	terms, err := customlist.NormalizeTerms(raw)
	if err != nil {
		return ListResult{}, err
	}

	blocked := 0
	if s.filter != nil {
		allowed, dropped, err := s.filter.FilterWords(ctx, terms)
		if err != nil {
			// Unfiltered terms are still usable
			log.Printf("Warning: failed to filter terms: %v", err)
		} else {
			terms, blocked = allowed, len(dropped)
			if len(terms) == 0 {
				return ListResult{}, customlist.ErrNoTermsFound
			}
		}
	}

	updated, err := s.store.Update(ctx, user, func(p models.UserProfile) (models.UserProfile, error) {
		return progress.RecordListWords(p, listID, terms), nil
	})
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to save word list: %w", err)
	}

	practiced := progress.PracticedSet(updated, listID)
	fresh, _ := customlist.Partition(terms, practiced)

	s.mu.Lock()
	selected := customlist.Select(terms, practiced, length, s.rng)
	s.mu.Unlock()

	return ListResult{
		ListID:   listID,
		Terms:    terms,
		Selected: selected,
		Fresh:    len(fresh),
		Blocked:  blocked,
	}, nil
}
