package handlers

import (
	"net/http"
	"sort"

	"vocabtrainer/internal/service"
)

// AuthHandler handles sign-in related HTTP requests
type AuthHandler struct {
	authService          *service.AuthService
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
	appBaseURL           string
}

// NewAuthHandler creates a new auth handler. Signed-in users are sent back
// to appBaseURL with their token in the URL fragment.
func NewAuthHandler(authService *service.AuthService, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL, appBaseURL string) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
		appBaseURL:           appBaseURL,
	}
}

// ListProviders returns the configured sign-in providers
func (h *AuthHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	views := h.oauthProviderViews()
	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })
	respondJSON(w, http.StatusOK, views)
}

// Me returns the signed-in user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, GetUserFromContext(r.Context()))
}
