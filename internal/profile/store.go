// Package profile holds every student's cumulative profile in memory and
// persists the whole set as one JSON blob under a fixed key.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"vocabtrainer/internal/models"
	"vocabtrainer/internal/progress"
)

// StorageKey is the single key the profile blob is stored under
const StorageKey = "vocab_all_users"

var ErrProfileNotFound = errors.New("profile not found")

// KV is the persisted key-value storage behind the store
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Reducer derives the next profile from the current one
type Reducer func(models.UserProfile) (models.UserProfile, error)

// Store is the state container for AllUsersData. All mutation goes through
// Update, which applies one reducer at a time and writes the blob back.
type Store struct {
	kv   KV
	mu   sync.RWMutex
	data models.AllUsersData
}

// NewStore creates an empty store; call Load to read persisted data
func NewStore(kv KV) *Store {
	return &Store{
		kv:   kv,
		data: models.AllUsersData{},
	}
}

// Key normalizes a display name into the profile map key
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Load replaces the in-memory data with the persisted blob
func (s *Store) Load(ctx context.Context) error {
	raw, found, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return fmt.Errorf("failed to read profiles: %w", err)
	}

	data := models.AllUsersData{}
	if found && len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("failed to decode profiles: %w", err)
		}
	}
	for name, p := range data {
		data[name] = fillDefaults(p)
	}

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// Get returns a copy of the named profile
func (s *Store) Get(name string) (models.UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.data[Key(name)]
	if !ok {
		return models.UserProfile{}, false
	}
	return progress.Clone(p), true
}

// GetOrDefault returns the named profile or the default profile
func (s *Store) GetOrDefault(name string) models.UserProfile {
	if p, ok := s.Get(name); ok {
		return p
	}
	return progress.DefaultProfile()
}

// Names lists every stored profile key in order
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a deep copy of all profiles
func (s *Store) Snapshot() models.AllUsersData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(models.AllUsersData, len(s.data))
	for name, p := range s.data {
		out[name] = progress.Clone(p)
	}
	return out
}

// Update applies reducer to the named profile, creating a default profile
// when none exists, and persists the result. A reducer error leaves the
// store unchanged.
func (s *Store) Update(ctx context.Context, name string, reducer Reducer) (models.UserProfile, error) {
	key := Key(name)
	if key == "" {
		return models.UserProfile{}, errors.New("user name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.data[key]
	if !ok {
		current = progress.DefaultProfile()
	}

	next, err := reducer(progress.Clone(current))
	if err != nil {
		return current, err
	}

	previous, existed := s.data[key]
	s.data[key] = next
	if err := s.persistLocked(ctx); err != nil {
		if existed {
			s.data[key] = previous
		} else {
			delete(s.data, key)
		}
		return current, err
	}

	return progress.Clone(next), nil
}

// Delete removes a profile entirely
func (s *Store) Delete(ctx context.Context, name string) error {
	key := Key(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, ok := s.data[key]
	if !ok {
		return ErrProfileNotFound
	}
	delete(s.data, key)
	if err := s.persistLocked(ctx); err != nil {
		s.data[key] = previous
		return err
	}
	return nil
}

// Replace swaps in a complete data set and persists it
func (s *Store) Replace(ctx context.Context, data models.AllUsersData) error {
	normalized := make(models.AllUsersData, len(data))
	for name, p := range data {
		normalized[Key(name)] = fillDefaults(p)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.data
	s.data = normalized
	if err := s.persistLocked(ctx); err != nil {
		s.data = previous
		return err
	}
	return nil
}

func (s *Store) persistLocked(ctx context.Context) error {
	raw, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("failed to encode profiles: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	return nil
}

// fillDefaults repairs nil maps and slices left by older blobs
func fillDefaults(p models.UserProfile) models.UserProfile {
	if p.LearnedWords == nil {
		p.LearnedWords = map[string]models.LearnedWord{}
	}
	if p.WordListProgress == nil {
		p.WordListProgress = map[string]models.WordListProgress{}
	}
	if p.SessionHistory == nil {
		p.SessionHistory = []models.SessionRecord{}
	}
	if p.AvatarID == "" {
		p.AvatarID = models.DefaultAvatarID
	}
	return p
}
