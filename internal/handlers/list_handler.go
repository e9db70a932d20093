package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"vocabtrainer/internal/extract"
	"vocabtrainer/internal/models"
	"vocabtrainer/internal/service"
)

const defaultListLength = 10

// ListHandler handles word list HTTP requests
type ListHandler struct {
	listService   *service.ListService
	uploadMaxSize int64
}

// NewListHandler creates a new list handler
func NewListHandler(listService *service.ListService, uploadMaxSize int64) *ListHandler {
	return &ListHandler{
		listService:   listService,
		uploadMaxSize: uploadMaxSize,
	}
}

type textListRequest struct {
	Name   string `json:"name" validate:"max=255"`
	Text   string `json:"text" validate:"required"`
	Length int    `json:"length" validate:"omitempty,min=1,max=50"`
}

type suggestListRequest struct {
	Settings models.PracticeSettings `json:"settings"`
}

// UploadList extracts a word list from an uploaded PDF, DOCX or XLSX file
func (h *ListHandler) UploadList(w http.ResponseWriter, r *http.Request) {
	user, err := profileName(r)
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.uploadMaxSize+1<<20)
	if err := r.ParseMultipartForm(h.uploadMaxSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondWithServiceError(w, "", extract.ErrFileTooLarge)
			return
		}
		respondWithError(w, http.StatusBadRequest, "Failed to parse form", "", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Please select a file", "", nil)
		return
	}
	defer file.Close()

	if header.Size > h.uploadMaxSize {
		respondWithServiceError(w, "", extract.ErrFileTooLarge)
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to read file", "Error reading upload", err)
		return
	}

	length := defaultListLength
	if v := r.FormValue("length"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 50 {
			respondWithError(w, http.StatusBadRequest, "length must be between 1 and 50", "", nil)
			return
		}
		length = n
	}

	result, err := h.listService.ExtractFromFile(r.Context(), user, header.Filename, header.Header.Get("Content-Type"), data, length)
	if err != nil {
		respondWithServiceError(w, "Error extracting word list", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// TextList extracts a word list from pasted text
func (h *ListHandler) TextList(w http.ResponseWriter, r *http.Request) {
	user, err := profileName(r)
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	var req textListRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	if req.Length == 0 {
		req.Length = defaultListLength
	}

	result, err := h.listService.ExtractFromText(r.Context(), user, req.Name, req.Text, req.Length)
	if err != nil {
		respondWithServiceError(w, "Error extracting word list", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// SuggestList asks for a word list on a subject or course
func (h *ListHandler) SuggestList(w http.ResponseWriter, r *http.Request) {
	user, err := profileName(r)
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	var req suggestListRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	result, err := h.listService.Suggest(r.Context(), user, req.Settings)
	if err != nil {
		respondWithServiceError(w, "Error suggesting word list", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
