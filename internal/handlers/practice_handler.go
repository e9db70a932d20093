package handlers

import (
	"net/http"

	"vocabtrainer/internal/models"
	"vocabtrainer/internal/practice"
	"vocabtrainer/internal/service"
	"vocabtrainer/internal/validation"
)

// PracticeHandler handles practice session HTTP requests
type PracticeHandler struct {
	practiceService *service.PracticeService
}

// NewPracticeHandler creates a new practice handler
func NewPracticeHandler(practiceService *service.PracticeService) *PracticeHandler {
	return &PracticeHandler{practiceService: practiceService}
}

type startPracticeRequest struct {
	Words    []string                `json:"words" validate:"required,min=1,max=50,dive,required,max=100"`
	Settings models.PracticeSettings `json:"settings"`
}

type studyModeRequest struct {
	Mode models.StudyMode `json:"mode" validate:"required,oneof=frayer flashcards"`
}

type viewWordRequest struct {
	Index int `json:"index" validate:"min=0"`
}

type answerRequest struct {
	Option *int    `json:"option,omitempty" validate:"omitempty,min=0,max=3"`
	Text   *string `json:"text,omitempty" validate:"omitempty,max=200"`
}

type answerResponse struct {
	Correct bool          `json:"correct"`
	Session practice.View `json:"session"`
}

type acknowledgeResponse struct {
	Session practice.View       `json:"session"`
	Profile *models.UserProfile `json:"profile,omitempty"`
}

// StartPractice creates a session; its study material loads in the background
func (h *PracticeHandler) StartPractice(w http.ResponseWriter, r *http.Request) {
	user, err := profileName(r)
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	var req startPracticeRequest
	if err := readJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	if req.Settings.WordCount == 0 {
		req.Settings.WordCount = len(req.Words)
	}
	if err := validation.Struct(&req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	view, err := h.practiceService.Start(user, userID(r), req.Words, req.Settings)
	if err != nil {
		respondWithServiceError(w, "Error starting practice session", err)
		return
	}
	respondJSON(w, http.StatusAccepted, view)
}

// GetPractice returns the current state of a session; clients poll it
// while the session is loading
func (h *PracticeHandler) GetPractice(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(id, user string) (practice.View, error) {
		return h.practiceService.View(id, user)
	})
}

// RetryPractice reloads a session that failed to load
func (h *PracticeHandler) RetryPractice(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(id, user string) (practice.View, error) {
		return h.practiceService.Retry(id, user)
	})
}

// ChooseStudyMode selects flashcards or the Frayer model
func (h *PracticeHandler) ChooseStudyMode(w http.ResponseWriter, r *http.Request) {
	var req studyModeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	h.act(w, r, func(id, user string) (practice.View, error) {
		return h.practiceService.ChooseStudyMode(id, user, req.Mode)
	})
}

// ViewWord moves to another study card
func (h *PracticeHandler) ViewWord(w http.ResponseWriter, r *http.Request) {
	var req viewWordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	h.act(w, r, func(id, user string) (practice.View, error) {
		return h.practiceService.ViewWord(id, user, req.Index)
	})
}

// StartQuiz ends studying
func (h *PracticeHandler) StartQuiz(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(id, user string) (practice.View, error) {
		return h.practiceService.StartQuiz(id, user)
	})
}

// SubmitAnswer answers the current question with an option index or typed text
func (h *PracticeHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	user, err := profileName(r)
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	if (req.Option == nil) == (req.Text == nil) {
		respondWithError(w, http.StatusBadRequest, "Send either an option or a text answer", "", nil)
		return
	}

	id := r.PathValue("id")
	var correct bool
	var view practice.View
	if req.Option != nil {
		correct, view, err = h.practiceService.AnswerChoice(id, user, *req.Option)
	} else {
		correct, view, err = h.practiceService.AnswerText(id, user, *req.Text)
	}
	if err != nil {
		respondWithServiceError(w, "Error submitting answer", err)
		return
	}
	respondJSON(w, http.StatusOK, answerResponse{Correct: correct, Session: view})
}

// EliminateOptions spends a hint on removing two wrong options
func (h *PracticeHandler) EliminateOptions(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(id, user string) (practice.View, error) {
		return h.practiceService.EliminateOptions(id, user)
	})
}

// SimplifyQuestion spends a hint on simpler wording
func (h *PracticeHandler) SimplifyQuestion(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(id, user string) (practice.View, error) {
		return h.practiceService.Simplify(r.Context(), id, user)
	})
}

// Acknowledge moves past an answered question. The response carries the
// updated profile once the session completes.
func (h *PracticeHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	user, err := profileName(r)
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	view, updated, err := h.practiceService.Acknowledge(r.Context(), r.PathValue("id"), user)
	if err != nil {
		respondWithServiceError(w, "Error finishing question", err)
		return
	}
	respondJSON(w, http.StatusOK, acknowledgeResponse{Session: view, Profile: updated})
}

// ExitPractice abandons a session
func (h *PracticeHandler) ExitPractice(w http.ResponseWriter, r *http.Request) {
	user, err := profileName(r)
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	if err := h.practiceService.Discard(r.PathValue("id"), user); err != nil {
		respondWithServiceError(w, "Error exiting practice", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PracticeHandler) act(w http.ResponseWriter, r *http.Request, fn func(id, user string) (practice.View, error)) {
	user, err := profileName(r)
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	view, err := fn(r.PathValue("id"), user)
	if err != nil {
		respondWithServiceError(w, "Error updating practice session", err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}
