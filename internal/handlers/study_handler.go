package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"vocabtrainer/internal/models"
	"vocabtrainer/internal/service"
	"vocabtrainer/internal/validation"
)

// StudyHandler serves stories, speech and AI feedback on past sessions
type StudyHandler struct {
	studyService    *service.StudyService
	feedbackService *service.FeedbackService
}

// NewStudyHandler creates a new study handler
func NewStudyHandler(studyService *service.StudyService, feedbackService *service.FeedbackService) *StudyHandler {
	return &StudyHandler{
		studyService:    studyService,
		feedbackService: feedbackService,
	}
}

type storyRequest struct {
	Words    []string                `json:"words" validate:"required,min=1,max=50,dive,required,max=100"`
	Settings models.PracticeSettings `json:"settings"`
}

type storyResponse struct {
	Story models.Story       `json:"story"`
	Check service.StoryCheck `json:"check"`
}

type speechRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}

type prepareSpeechRequest struct {
	Words []string `json:"words" validate:"required,min=1,max=50,dive,required,max=100"`
}

type speechResponse struct {
	File string `json:"file"`
	URL  string `json:"url"`
}

// Story writes a short story using the session words
func (h *StudyHandler) Story(w http.ResponseWriter, r *http.Request) {
	var req storyRequest
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

	story, check, err := h.studyService.Story(r.Context(), req.Words, req.Settings)
	if err != nil {
		respondWithServiceError(w, "Error generating story", err)
		return
	}
	respondJSON(w, http.StatusOK, storyResponse{Story: story, Check: check})
}

// Speech synthesises text and returns where the WAV file can be fetched
func (h *StudyHandler) Speech(w http.ResponseWriter, r *http.Request) {
	var req speechRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	filename, err := h.studyService.Speech(r.Context(), req.Text)
	if err != nil {
		respondWithServiceError(w, "Error generating speech", err)
		return
	}
	respondJSON(w, http.StatusOK, speechResponse{File: filename, URL: "/api/audio/" + filename})
}

// PrepareSpeech synthesises every word of a session up front and maps each
// word to its audio URL
func (h *StudyHandler) PrepareSpeech(w http.ResponseWriter, r *http.Request) {
	var req prepareSpeechRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	files, err := h.studyService.PrepareAudio(r.Context(), req.Words)
	if err != nil {
		respondWithServiceError(w, "Error preparing speech", err)
		return
	}
	urls := make(map[string]string, len(files))
	for word, file := range files {
		urls[word] = "/api/audio/" + file
	}
	respondJSON(w, http.StatusOK, urls)
}

// ServeAudio streams a cached WAV file
func (h *StudyHandler) ServeAudio(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("file")
	if filename == "" || filepath.Base(filename) != filename || filepath.Ext(filename) != ".wav" {
		respondWithError(w, http.StatusBadRequest, "Invalid audio file name", "", nil)
		return
	}

	path := h.studyService.AudioPath(filename)
	if _, err := os.Stat(path); err != nil {
		respondWithError(w, http.StatusNotFound, "Audio not found", "", nil)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, path)
}

// SessionFeedback asks the AI to review one record of the student's history
func (h *StudyHandler) SessionFeedback(w http.ResponseWriter, r *http.Request) {
	user, err := profileName(r)
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	feedback, err := h.feedbackService.ReviewSession(r.Context(), user, r.PathValue("sessionId"))
	if err != nil {
		respondWithServiceError(w, "Error generating session feedback", err)
		return
	}
	respondJSON(w, http.StatusOK, feedback)
}
