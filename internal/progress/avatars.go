package progress

import (
	"errors"
	"sort"

	"vocabtrainer/internal/models"
)

var (
	ErrUnknownAvatar      = errors.New("unknown avatar")
	ErrAlreadyUnlocked    = errors.New("avatar already unlocked")
	ErrInsufficientPoints = errors.New("not enough points")
	ErrAvatarLocked       = errors.New("avatar not unlocked")
)

// Avatar is a cosmetic profile picture that can be bought with points
type Avatar struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Cost int    `json:"cost"`
}

var avatarCatalog = map[string]Avatar{
	models.DefaultAvatarID: {ID: models.DefaultAvatarID, Name: "Owl", Cost: 0},
	"fox":                  {ID: "fox", Name: "Fox", Cost: 10},
	"panda":                {ID: "panda", Name: "Panda", Cost: 25},
	"robot":                {ID: "robot", Name: "Robot", Cost: 50},
	"astronaut":            {ID: "astronaut", Name: "Astronaut", Cost: 100},
	"dragon":               {ID: "dragon", Name: "Dragon", Cost: 250},
}

// Avatars lists the catalog ordered by cost
func Avatars() []Avatar {
	out := make([]Avatar, 0, len(avatarCatalog))
	for _, a := range avatarCatalog {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cost == out[j].Cost {
			return out[i].ID < out[j].ID
		}
		return out[i].Cost < out[j].Cost
	})
	return out
}

// HasAvatar reports whether the profile may wear the avatar
func HasAvatar(p models.UserProfile, avatarID string) bool {
	if a, ok := avatarCatalog[avatarID]; ok && a.Cost == 0 {
		return true
	}
	for _, id := range p.UnlockedAvatars {
		if id == avatarID {
			return true
		}
	}
	return false
}

// PurchaseAvatar spends points on an avatar and equips it
func PurchaseAvatar(p models.UserProfile, avatarID string) (models.UserProfile, error) {
	avatar, ok := avatarCatalog[avatarID]
	if !ok {
		return p, ErrUnknownAvatar
	}
	if HasAvatar(p, avatarID) {
		return p, ErrAlreadyUnlocked
	}
	if p.Points < avatar.Cost {
		return p, ErrInsufficientPoints
	}

	next := Clone(p)
	next.Points -= avatar.Cost
	next.UnlockedAvatars = append(next.UnlockedAvatars, avatarID)
	next.AvatarID = avatarID
	return next, nil
}

// EquipAvatar switches to an avatar the profile already owns
func EquipAvatar(p models.UserProfile, avatarID string) (models.UserProfile, error) {
	if _, ok := avatarCatalog[avatarID]; !ok {
		return p, ErrUnknownAvatar
	}
	if !HasAvatar(p, avatarID) {
		return p, ErrAvatarLocked
	}
	next := Clone(p)
	next.AvatarID = avatarID
	return next, nil
}
