package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"vocabtrainer/internal/models"
	"vocabtrainer/internal/service"
)

// teacherPasswordHeader carries the teacher password. The gate only keeps
// students out of the dashboard UI; it is not access control.
const teacherPasswordHeader = "X-Teacher-Password"

// DashboardHandler serves the teacher dashboard and account administration
type DashboardHandler struct {
	profileService *service.ProfileService
	backupService  *service.BackupService
	studyService   *service.StudyService
	authService    *service.AuthService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(profileService *service.ProfileService, backupService *service.BackupService, studyService *service.StudyService, authService *service.AuthService) *DashboardHandler {
	return &DashboardHandler{
		profileService: profileService,
		backupService:  backupService,
		studyService:   studyService,
		authService:    authService,
	}
}

type roleRequest struct {
	Role string `json:"role" validate:"required,oneof=student teacher"`
}

func teacherPassword(r *http.Request) string {
	return r.Header.Get(teacherPasswordHeader)
}

// ShowDashboard lists every student profile
func (h *DashboardHandler) ShowDashboard(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.profileService.Summaries(teacherPassword(r))
	if err != nil {
		respondWithServiceError(w, "Error loading dashboard", err)
		return
	}
	respondJSON(w, http.StatusOK, summaries)
}

// ShowStudent returns one student's full profile
func (h *DashboardHandler) ShowStudent(w http.ResponseWriter, r *http.Request) {
	p, err := h.profileService.Detail(teacherPassword(r), r.PathValue("name"))
	if err != nil {
		respondWithServiceError(w, "Error loading student", err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// DeleteSession removes one record from a student's history
func (h *DashboardHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	p, err := h.profileService.DeleteSession(r.Context(), teacherPassword(r), r.PathValue("name"), r.PathValue("sessionId"))
	if err != nil {
		respondWithServiceError(w, "Error deleting session", err)
		return
	}
	log.Printf("Session %s deleted from profile %s", r.PathValue("sessionId"), r.PathValue("name"))
	respondJSON(w, http.StatusOK, p)
}

// DeleteStudent removes a student profile
func (h *DashboardHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	if err := h.profileService.DeleteProfile(r.Context(), teacherPassword(r), r.PathValue("name")); err != nil {
		respondWithServiceError(w, "Error deleting student", err)
		return
	}
	log.Printf("Profile %s deleted", r.PathValue("name"))
	w.WriteHeader(http.StatusNoContent)
}

// ExportBackup downloads every profile as a JSON backup
func (h *DashboardHandler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	// Checked up front so a wrong password does not start the download
	if _, err := h.profileService.Summaries(teacherPassword(r)); err != nil {
		respondWithServiceError(w, "Error exporting backup", err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("vocabtrainer_backup_%s.json", timestamp)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	if err := h.backupService.ExportToWriter(w); err != nil {
		log.Printf("Error exporting backup: %v", err)
		return
	}
	log.Println("Profiles exported from the dashboard")
}

// ImportBackup restores profiles from an uploaded backup file. With
// replace=true every profile not in the backup is removed.
func (h *DashboardHandler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	if _, err := h.profileService.Summaries(teacherPassword(r)); err != nil {
		respondWithServiceError(w, "Error importing backup", err)
		return
	}

	// Parse multipart form (10MB max)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to parse form", "", nil)
		return
	}

	file, _, err := r.FormFile("backup_file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Please select a backup file", "", nil)
		return
	}
	defer file.Close()

	replace := r.FormValue("replace") == "true"
	if err := h.backupService.ImportFromReader(r.Context(), file, replace); err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to import backup", "Error importing backup", err)
		return
	}

	log.Printf("Backup imported from the dashboard (replace=%v)", replace)
	h.ShowDashboard(w, r)
}

// ClearAudio deletes the cached speech files
func (h *DashboardHandler) ClearAudio(w http.ResponseWriter, r *http.Request) {
	if _, err := h.profileService.Summaries(teacherPassword(r)); err != nil {
		respondWithServiceError(w, "Error clearing audio", err)
		return
	}
	removed, err := h.studyService.ClearAudio()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to clear audio cache", "Error clearing audio cache", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// ListUsers lists the signed-in accounts
func (h *DashboardHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.Users(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load users", "Error loading users", err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	respondJSON(w, http.StatusOK, users)
}

// UpdateUserRole promotes or demotes an account
func (h *DashboardHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	target := r.PathValue("id")
	if current := GetUserFromContext(r.Context()); current != nil && current.ID == target && req.Role != models.RoleTeacher {
		respondWithError(w, http.StatusBadRequest, "You cannot remove your own teacher role", "", nil)
		return
	}

	if err := h.authService.SetRole(r.Context(), target, req.Role); err != nil {
		respondWithServiceError(w, "Error updating role", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser removes an account
func (h *DashboardHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	target := r.PathValue("id")
	if current := GetUserFromContext(r.Context()); current != nil && current.ID == target {
		respondWithError(w, http.StatusBadRequest, "You cannot delete your own account", "", nil)
		return
	}

	if err := h.authService.DeleteUser(r.Context(), target); err != nil {
		respondWithServiceError(w, "Error deleting user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
