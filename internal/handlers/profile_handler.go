package handlers

import (
	"net/http"

	"vocabtrainer/internal/models"
	"vocabtrainer/internal/service"
)

// ProfileHandler serves a student's own profile and the avatar shop
type ProfileHandler struct {
	profileService *service.ProfileService
	syncService    *service.SyncService
}

// NewProfileHandler creates a new profile handler. syncService may be nil.
func NewProfileHandler(profileService *service.ProfileService, syncService *service.SyncService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		syncService:    syncService,
	}
}

type avatarRequest struct {
	AvatarID string `json:"avatarId" validate:"required,max=40"`
}

// GetProfile returns the student's profile, or a fresh one for a new name
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := profileName(r)
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	respondJSON(w, http.StatusOK, h.profileService.Get(user))
}

// ListAvatars returns the avatar catalog
func (h *ProfileHandler) ListAvatars(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.profileService.Avatars())
}

// PurchaseAvatar spends points on an avatar and equips it
func (h *ProfileHandler) PurchaseAvatar(w http.ResponseWriter, r *http.Request) {
	user, err := profileName(r)
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	var req avatarRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	p, err := h.profileService.PurchaseAvatar(r.Context(), user, req.AvatarID)
	if err != nil {
		respondWithServiceError(w, "Error purchasing avatar", err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// EquipAvatar wears an avatar the student already owns
func (h *ProfileHandler) EquipAvatar(w http.ResponseWriter, r *http.Request) {
	user, err := profileName(r)
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	var req avatarRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	p, err := h.profileService.EquipAvatar(r.Context(), user, req.AvatarID)
	if err != nil {
		respondWithServiceError(w, "Error equipping avatar", err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

type historyResponse struct {
	Sessions []models.PracticeSessionRow `json:"sessions"`
	Words    []models.WordProgressRow    `json:"words"`
}

// History returns the signed-in user's remotely recorded sessions and
// per-word practice counts
func (h *ProfileHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.syncService == nil {
		respondWithError(w, http.StatusServiceUnavailable, "History is not available", "", nil)
		return
	}
	id := userID(r)

	sessions, err := h.syncService.History(r.Context(), id, 50)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load history", "Error loading session history", err)
		return
	}
	words, err := h.syncService.WordCounts(r.Context(), id)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load history", "Error loading word progress", err)
		return
	}
	respondJSON(w, http.StatusOK, historyResponse{Sessions: sessions, Words: words})
}
