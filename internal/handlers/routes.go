package handlers

import (
	"net/http"
)

// Routes groups the handlers served by the API
type Routes struct {
	Middleware *Middleware
	Auth       *AuthHandler
	Profile    *ProfileHandler
	Practice   *PracticeHandler
	Lists      *ListHandler
	Study      *StudyHandler
	Feedback   *FeedbackHandler
	Dashboard  *DashboardHandler
}

// Handler registers every route and wraps the mux in the request logging
// and token middleware
func (rt Routes) Handler() http.Handler {
	m := rt.Middleware
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Sign-in
	mux.HandleFunc("GET /auth/providers", rt.Auth.ListProviders)
	mux.HandleFunc("GET /auth/{provider}/start", rt.Auth.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", rt.Auth.OAuthCallback)
	mux.HandleFunc("GET /api/me", m.RequireAuth(rt.Auth.Me))
	mux.HandleFunc("GET /api/history", m.RequireAuth(rt.Profile.History))

	// Profile and avatars
	mux.HandleFunc("GET /api/profile", rt.Profile.GetProfile)
	mux.HandleFunc("GET /api/avatars", rt.Profile.ListAvatars)
	mux.HandleFunc("POST /api/profile/avatars/purchase", rt.Profile.PurchaseAvatar)
	mux.HandleFunc("POST /api/profile/avatars/equip", rt.Profile.EquipAvatar)
	mux.HandleFunc("POST /api/profile/sessions/{sessionId}/feedback", m.RateLimit(rt.Study.SessionFeedback))

	// Practice sessions
	mux.HandleFunc("POST /api/practice", m.RateLimit(rt.Practice.StartPractice))
	mux.HandleFunc("GET /api/practice/{id}", rt.Practice.GetPractice)
	mux.HandleFunc("DELETE /api/practice/{id}", rt.Practice.ExitPractice)
	mux.HandleFunc("POST /api/practice/{id}/retry", m.RateLimit(rt.Practice.RetryPractice))
	mux.HandleFunc("POST /api/practice/{id}/mode", rt.Practice.ChooseStudyMode)
	mux.HandleFunc("POST /api/practice/{id}/word", rt.Practice.ViewWord)
	mux.HandleFunc("POST /api/practice/{id}/quiz", rt.Practice.StartQuiz)
	mux.HandleFunc("POST /api/practice/{id}/answer", rt.Practice.SubmitAnswer)
	mux.HandleFunc("POST /api/practice/{id}/hints/eliminate", rt.Practice.EliminateOptions)
	mux.HandleFunc("POST /api/practice/{id}/hints/simplify", m.RateLimit(rt.Practice.SimplifyQuestion))
	mux.HandleFunc("POST /api/practice/{id}/acknowledge", rt.Practice.Acknowledge)

	// Word lists
	mux.HandleFunc("POST /api/lists/upload", m.RateLimit(rt.Lists.UploadList))
	mux.HandleFunc("POST /api/lists/text", m.RateLimit(rt.Lists.TextList))
	mux.HandleFunc("POST /api/lists/suggest", m.RateLimit(rt.Lists.SuggestList))

	// Stories and speech
	mux.HandleFunc("POST /api/story", m.RateLimit(rt.Study.Story))
	mux.HandleFunc("POST /api/speech", m.RateLimit(rt.Study.Speech))
	mux.HandleFunc("POST /api/speech/words", m.RateLimit(rt.Study.PrepareSpeech))
	mux.HandleFunc("GET /api/audio/{file}", rt.Study.ServeAudio)

	// Feedback
	mux.HandleFunc("POST /api/feedback", m.RateLimit(rt.Feedback.SubmitFeedback))
	mux.HandleFunc("GET /api/feedback", m.RequireTeacher(rt.Feedback.ListFeedback))

	// Teacher dashboard (password gated)
	mux.HandleFunc("GET /api/dashboard", rt.Dashboard.ShowDashboard)
	mux.HandleFunc("GET /api/dashboard/students/{name}", rt.Dashboard.ShowStudent)
	mux.HandleFunc("DELETE /api/dashboard/students/{name}", rt.Dashboard.DeleteStudent)
	mux.HandleFunc("DELETE /api/dashboard/students/{name}/sessions/{sessionId}", rt.Dashboard.DeleteSession)
	mux.HandleFunc("GET /api/dashboard/backup", rt.Dashboard.ExportBackup)
	mux.HandleFunc("POST /api/dashboard/backup", rt.Dashboard.ImportBackup)
	mux.HandleFunc("DELETE /api/dashboard/audio", rt.Dashboard.ClearAudio)

	// Account administration
	mux.HandleFunc("GET /api/users", m.RequireTeacher(rt.Dashboard.ListUsers))
	mux.HandleFunc("PUT /api/users/{id}/role", m.RequireTeacher(rt.Dashboard.UpdateUserRole))
	mux.HandleFunc("DELETE /api/users/{id}", m.RequireTeacher(rt.Dashboard.DeleteUser))

	return Logging(m.OptionalAuth(mux))
}
