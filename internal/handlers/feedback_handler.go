package handlers

import (
	"net/http"
	"strconv"

	"vocabtrainer/internal/models"
	"vocabtrainer/internal/service"
)

// FeedbackHandler accepts feedback messages for the teachers
type FeedbackHandler struct {
	feedbackService *service.FeedbackService
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

type feedbackRequest struct {
	Name    string `json:"name" validate:"max=100"`
	Email   string `json:"email" validate:"omitempty,email,max=255"`
	Message string `json:"message" validate:"required,max=5000"`
}

// SubmitFeedback stores a message and notifies the teachers
func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	row := models.FeedbackRow{Name: req.Name, Email: req.Email, Message: req.Message}
	if user := GetUserFromContext(r.Context()); user != nil {
		row.UserID = user.ID
		if row.Email == "" {
			row.Email = user.Email
		}
		if row.Name == "" {
			row.Name = user.Name
		}
	}

	saved, err := h.feedbackService.Submit(r.Context(), row)
	if err != nil {
		respondWithServiceError(w, "Error submitting feedback", err)
		return
	}
	respondJSON(w, http.StatusCreated, saved)
}

// ListFeedback returns the newest messages for teachers
func (h *FeedbackHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			respondWithError(w, http.StatusBadRequest, "limit must be between 1 and 500", "", nil)
			return
		}
		limit = n
	}

	rows, err := h.feedbackService.Recent(r.Context(), limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load feedback", "Error loading feedback", err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}
