package service

import (
	"context"

	"vocabtrainer/internal/models"
	"vocabtrainer/internal/profile"
	"vocabtrainer/internal/progress"
	"vocabtrainer/internal/security"
)

// ProfileService exposes the student profiles and the teacher actions on them
type ProfileService struct {
	store *profile.Store
	gate  *security.PasswordGate
}

// NewProfileService creates a profile service
func NewProfileService(store *profile.Store, gate *security.PasswordGate) *ProfileService {
	return &ProfileService{store: store, gate: gate}
}

// Get returns a profile, or the default profile for a new student
func (s *ProfileService) Get(user string) models.UserProfile {
	return s.store.GetOrDefault(user)
}

// Summaries lists every student for the teacher dashboard. Protected by
// the teacher password.
func (s *ProfileService) Summaries(password string) ([]models.ProfileSummary, error) {
	if err := s.gate.Check(password); err != nil {
		return nil, err
	}
	data := s.store.Snapshot()
	out := make([]models.ProfileSummary, 0, len(data))
	for _, name := range s.store.Names() {
		if p, ok := data[name]; ok {
			out = append(out, progress.Summarize(name, p))
		}
	}
	return out, nil
}

// Detail returns one full profile for the teacher dashboard
func (s *ProfileService) Detail(password, user string) (models.UserProfile, error) {
	if err := s.gate.Check(password); err != nil {
		return models.UserProfile{}, err
	}
	p, ok := s.store.Get(user)
	if !ok {
		return models.UserProfile{}, profile.ErrProfileNotFound
	}
	return p, nil
}

// DeleteSession removes one history record. Protected by the teacher password.
func (s *ProfileService) DeleteSession(ctx context.Context, password, user, sessionID string) (models.UserProfile, error) {
	if err := s.gate.Check(password); err != nil {
		return models.UserProfile{}, err
	}
	if _, ok := s.store.Get(user); !ok {
		return models.UserProfile{}, profile.ErrProfileNotFound
	}
	return s.store.Update(ctx, user, func(p models.UserProfile) (models.UserProfile, error) {
		next, found := progress.DeleteSession(p, sessionID)
		if !found {
			return p, ErrRecordNotFound
		}
		return next, nil
	})
}

// DeleteProfile removes a student entirely. Protected by the teacher password.
func (s *ProfileService) DeleteProfile(ctx context.Context, password, user string) error {
	if err := s.gate.Check(password); err != nil {
		return err
	}
	return s.store.Delete(ctx, user)
}

// Avatars lists the avatar catalog
func (s *ProfileService) Avatars() []progress.Avatar {
	return progress.Avatars()
}

// PurchaseAvatar spends points on an avatar
func (s *ProfileService) PurchaseAvatar(ctx context.Context, user, avatarID string) (models.UserProfile, error) {
	return s.store.Update(ctx, user, func(p models.UserProfile) (models.UserProfile, error) {
		return progress.PurchaseAvatar(p, avatarID)
	})
}

// EquipAvatar wears an unlocked avatar
func (s *ProfileService) EquipAvatar(ctx context.Context, user, avatarID string) (models.UserProfile, error) {
	return s.store.Update(ctx, user, func(p models.UserProfile) (models.UserProfile, error) {
		return progress.EquipAvatar(p, avatarID)
	})
}
