package handlers

import (
	"errors"
	"log"
	"net/http"

	"vocabtrainer/internal/ai"
	"vocabtrainer/internal/customlist"
	"vocabtrainer/internal/errclass"
	"vocabtrainer/internal/extract"
	"vocabtrainer/internal/practice"
	"vocabtrainer/internal/profile"
	"vocabtrainer/internal/progress"
	"vocabtrainer/internal/quiz"
	"vocabtrainer/internal/security"
	"vocabtrainer/internal/service"
	"vocabtrainer/internal/validation"
)

type errorResponse struct {
	Error  errclass.Info          `json:"error"`
	Fields validation.FieldErrors `json:"fields,omitempty"`
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondJSON(w, status, errorResponse{Error: errclass.Info{
		Category: errclass.Unknown,
		Message:  userMsg,
	}})
}

// respondWithServiceError maps known failures to a status and a readable
// message. Anything unrecognised came from the AI service or the network
// and is classified by its text.
func respondWithServiceError(w http.ResponseWriter, logMsg string, err error) {
	var fields validation.FieldErrors
	switch {
	case errors.As(err, &fields):
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Error:  errclass.Info{Category: errclass.Unknown, Message: fields.Error()},
			Fields: fields,
		})
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrRecordNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, profile.ErrProfileNotFound):
		respondWithError(w, http.StatusNotFound, err.Error(), "", nil)
	case errors.Is(err, service.ErrNotOwner):
		respondWithError(w, http.StatusForbidden, err.Error(), "", nil)
	case errors.Is(err, security.ErrWrongPassword), errors.Is(err, security.ErrInvalidToken):
		respondWithError(w, http.StatusUnauthorized, err.Error(), "", nil)
	case errors.Is(err, security.ErrGateNotConfigured), errors.Is(err, ai.ErrNotConfigured):
		respondWithError(w, http.StatusServiceUnavailable, err.Error(), "", nil)
	case errors.Is(err, practice.ErrWrongPhase),
		errors.Is(err, practice.ErrAlreadyLoading),
		errors.Is(err, practice.ErrNotAllWordsViewed),
		errors.Is(err, quiz.ErrAlreadyAnswered),
		errors.Is(err, quiz.ErrNotAnswered),
		errors.Is(err, quiz.ErrFinished),
		errors.Is(err, quiz.ErrNoHints),
		errors.Is(err, quiz.ErrAlreadyEliminated),
		errors.Is(err, quiz.ErrSimplifyInProgress),
		errors.Is(err, quiz.ErrNoSimplifyReserved),
		errors.Is(err, progress.ErrAlreadyUnlocked),
		errors.Is(err, progress.ErrInsufficientPoints),
		errors.Is(err, progress.ErrAvatarLocked),
		errors.Is(err, service.ErrEmailTaken):
		respondWithError(w, http.StatusConflict, err.Error(), "", nil)
	case errors.Is(err, practice.ErrNoWords),
		errors.Is(err, practice.ErrInvalidStudyMode),
		errors.Is(err, practice.ErrWordOutOfRange),
		errors.Is(err, quiz.ErrWrongQuestionType),
		errors.Is(err, quiz.ErrNotMultipleChoice),
		errors.Is(err, quiz.ErrInvalidOption),
		errors.Is(err, progress.ErrUnknownAvatar),
		errors.Is(err, service.ErrEmptyFeedback),
		errors.Is(err, service.ErrInvalidRole):
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
	case errors.Is(err, customlist.ErrNoReadableText),
		errors.Is(err, customlist.ErrNoTermsFound),
		errors.Is(err, extract.ErrUnsupportedFormat),
		errors.Is(err, extract.ErrFileTooLarge):
		info := errclass.For(errclass.File)
		info.Message = err.Error()
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: info})
	default:
		log.Printf("%s: %v", logMsg, err)
		info := errclass.Classify(err)
		status := http.StatusBadGateway
		if info.Category == errclass.RateLimit {
			status = http.StatusTooManyRequests
		}
		respondJSON(w, status, errorResponse{Error: info})
	}
}
