package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"vocabtrainer/internal/audio"
	"vocabtrainer/internal/database"
	"vocabtrainer/internal/errclass"
	"vocabtrainer/internal/models"
	"vocabtrainer/internal/practice"
	"vocabtrainer/internal/profile"
	"vocabtrainer/internal/repository"
	"vocabtrainer/internal/security"
	"vocabtrainer/internal/service"
)

const testPassword = "letmein"

type fakeAI struct{}

func (fakeAI) StudyModel(ctx context.Context, word string, settings models.PracticeSettings) (models.FrayerModel, error) {
	if word == "offline" {
		return models.FrayerModel{}, errors.New("dial tcp: connection refused")
	}
	return models.FrayerModel{Word: word, Definition: "meaning of " + word}, nil
}

func (fakeAI) Quiz(ctx context.Context, cards []models.FrayerModel, settings models.PracticeSettings) ([]models.QuizQuestion, error) {
	var questions []models.QuizQuestion
	for _, c := range cards {
		questions = append(questions, models.QuizQuestion{
			Word:     c.Word,
			Type:     models.QuestionMultipleChoice,
			Question: c.Definition,
			Options:  []string{c.Word, "a", "b", "c"},
		})
	}
	return questions, nil
}

func (fakeAI) SimplifyQuestion(ctx context.Context, q models.QuizQuestion) (string, error) {
	return "easier: " + q.Question, nil
}

func (fakeAI) ExtractTerms(ctx context.Context, text string) ([]string, error) {
	return []string{"Photosynthesis", "cell"}, nil
}

func (fakeAI) SuggestWords(ctx context.Context, settings models.PracticeSettings, count int) ([]string, error) {
	return nil, errors.New("gemini returned status 503: unavailable")
}

func (fakeAI) Feedback(ctx context.Context, record models.SessionRecord) (models.Feedback, error) {
	return models.Feedback{Raw: "well done"}, nil
}

func (fakeAI) Story(ctx context.Context, words []string, settings models.PracticeSettings) (models.Story, error) {
	return models.Story{Title: "A day", Body: "The **" + words[0] + "** grew."}, nil
}

func (fakeAI) Speech(ctx context.Context, text string) ([]byte, error) {
	return make([]byte, 480), nil
}

type testServer struct {
	handler  http.Handler
	practice *service.PracticeService
	auth     *service.AuthService
	store    *profile.Store
	audioDir string
}

func newTestServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()
	log.SetOutput(io.Discard)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ai := fakeAI{}
	store := profile.NewStore(repository.NewKVRepository(db))
	syncService := service.NewSyncService(
		repository.NewSessionRepository(db),
		repository.NewWordProgressRepository(db),
		repository.NewFeedbackRepository(db),
	)
	gate, err := security.NewPasswordGate(testPassword)
	require.NoError(t, err)

	audioDir := t.TempDir()
	authService := service.NewAuthService(repository.NewUserRepository(db), security.NewTokenIssuer("test-secret", time.Hour))
	practiceService := service.NewPracticeService(ai, store, syncService)
	profileService := service.NewProfileService(store, gate)
	studyService := service.NewStudyService(ai, audio.NewTTSService(audioDir, ai))
	feedbackService := service.NewFeedbackService(ai, store, syncService, nil)

	providers := map[string]OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     "client",
				ClientSecret: "secret",
				Endpoint:     oauth2.Endpoint{AuthURL: "https://accounts.example.com/auth", TokenURL: "https://accounts.example.com/token"},
			},
		},
	}

	routes := Routes{
		Middleware: NewMiddleware(authService, security.NewRateLimiter(rateLimit, time.Minute)),
		Auth:       NewAuthHandler(authService, providers, "http://api.example.com", "http://app.example.com"),
		Profile:    NewProfileHandler(profileService, syncService),
		Practice:   NewPracticeHandler(practiceService),
		Lists:      NewListHandler(service.NewListService(ai, db, store), 1<<20),
		Study:      NewStudyHandler(studyService, feedbackService),
		Feedback:   NewFeedbackHandler(feedbackService),
		Dashboard:  NewDashboardHandler(profileService, service.NewBackupService(store), studyService, authService),
	}

	return &testServer{
		handler:  routes.Handler(),
		practice: practiceService,
		auth:     authService,
		store:    store,
		audioDir: audioDir,
	}
}

type request struct {
	method  string
	path    string
	body    interface{}
	user    string
	headers map[string]string
}

func (s *testServer) do(t *testing.T, req request) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	r := httptest.NewRequest(req.method, req.path, body)
	if req.body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if req.user != "" {
		r.Header.Set("X-Profile", req.user)
	}
	for k, v := range req.headers {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestPracticeFlow(t *testing.T) {
	s := newTestServer(t, 0)

	w := s.do(t, request{method: "POST", path: "/api/practice", user: "Alice", body: map[string]interface{}{
		"words":    []string{"cell", "atom"},
		"settings": map[string]interface{}{"context": "biology"},
	}})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	view := decode[practice.View](t, w)
	assert.Equal(t, practice.PhaseLoading, view.Phase)
	assert.Equal(t, 2, view.Settings.WordCount)

	s.practice.Wait()
	base := "/api/practice/" + view.ID

	w = s.do(t, request{method: "GET", path: base, user: "alice"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, practice.PhaseStudyModeSelection, decode[practice.View](t, w).Phase)

	w = s.do(t, request{method: "POST", path: base + "/mode", user: "alice", body: map[string]string{"mode": "flashcards"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, request{method: "POST", path: base + "/quiz", user: "alice"})
	assert.Equal(t, http.StatusConflict, w.Code, "quiz is locked until every word was viewed")

	w = s.do(t, request{method: "POST", path: base + "/word", user: "alice", body: map[string]int{"index": 1}})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, request{method: "POST", path: base + "/quiz", user: "alice"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, request{method: "POST", path: base + "/hints/simplify", user: "alice"})
	require.Equal(t, http.StatusOK, w.Code)
	simplified := decode[practice.View](t, w)
	require.NotNil(t, simplified.Question)
	assert.Equal(t, "easier: meaning of cell", simplified.Question.Simplified)
	assert.Equal(t, 2, simplified.HintsLeft)

	w = s.do(t, request{method: "POST", path: base + "/answer", user: "alice", body: map[string]int{"option": 0}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[answerResponse](t, w).Correct)

	w = s.do(t, request{method: "POST", path: base + "/acknowledge", user: "alice"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[acknowledgeResponse](t, w).Profile)

	w = s.do(t, request{method: "POST", path: base + "/answer", user: "alice", body: map[string]int{"option": 2}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[answerResponse](t, w).Correct)

	w = s.do(t, request{method: "POST", path: base + "/acknowledge", user: "alice"})
	require.Equal(t, http.StatusOK, w.Code)
	done := decode[acknowledgeResponse](t, w)
	assert.Equal(t, practice.PhaseComplete, done.Session.Phase)
	require.NotNil(t, done.Profile)
	assert.Equal(t, 1, done.Profile.Points)

	w = s.do(t, request{method: "GET", path: "/api/profile", user: "ALICE"})
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[models.UserProfile](t, w)
	assert.Len(t, p.SessionHistory, 1)
	assert.Equal(t, []string{"atom", "cell"}, p.WordListProgress["biology"].PracticedWords)
}

func TestPracticeRequestErrors(t *testing.T) {
	s := newTestServer(t, 0)

	w := s.do(t, request{method: "POST", path: "/api/practice", body: map[string]interface{}{"words": []string{"cell"}}})
	assert.Equal(t, http.StatusBadRequest, w.Code, "profile name is required")

	w = s.do(t, request{method: "POST", path: "/api/practice", user: "alice", body: map[string]interface{}{"words": []string{}}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[errorResponse](t, w).Fields, "words")

	w = s.do(t, request{method: "POST", path: "/api/practice", user: "alice", body: map[string]interface{}{"words": []string{"cell"}, "unknown": 1}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, request{method: "POST", path: "/api/practice", user: "alice", body: map[string]interface{}{"words": []string{"cell"}}})
	require.Equal(t, http.StatusAccepted, w.Code)
	id := decode[practice.View](t, w).ID
	s.practice.Wait()

	w = s.do(t, request{method: "GET", path: "/api/practice/" + id, user: "mallory"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, request{method: "GET", path: "/api/practice/missing", user: "alice"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, request{method: "POST", path: "/api/practice/" + id + "/answer", user: "alice", body: map[string]interface{}{"option": 0, "text": "cell"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, request{method: "DELETE", path: "/api/practice/" + id, user: "alice"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, request{method: "GET", path: "/api/practice/" + id, user: "alice"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPracticeLoadFailureIsClassified(t *testing.T) {
	s := newTestServer(t, 0)

	w := s.do(t, request{method: "POST", path: "/api/practice", user: "alice", body: map[string]interface{}{"words": []string{"offline"}}})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	id := decode[practice.View](t, w).ID
	s.practice.Wait()

	w = s.do(t, request{method: "GET", path: "/api/practice/" + id, user: "alice"})
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[practice.View](t, w)
	assert.Equal(t, practice.PhaseError, view.Phase)
	require.NotNil(t, view.Error)
	assert.Equal(t, errclass.Network, view.Error.Category)
	assert.True(t, view.Error.CanRetry)
	assert.NotEmpty(t, view.Error.Suggestion)
	assert.NotContains(t, w.Body.String(), "dial tcp")

	w = s.do(t, request{method: "POST", path: "/api/practice/" + id + "/retry", user: "alice"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	s.practice.Wait()
	w = s.do(t, request{method: "GET", path: "/api/practice/" + id, user: "alice"})
	assert.Equal(t, practice.PhaseError, decode[practice.View](t, w).Phase)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, 2)

	for i := 0; i < 2; i++ {
		w := s.do(t, request{method: "POST", path: "/api/story", body: map[string]interface{}{"words": []string{"cell"}}})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	w := s.do(t, request{method: "POST", path: "/api/story", body: map[string]interface{}{"words": []string{"cell"}}})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	// Endpoints without AI calls are not throttled
	w = s.do(t, request{method: "GET", path: "/api/avatars"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStoryAndSpeech(t *testing.T) {
	s := newTestServer(t, 0)

	w := s.do(t, request{method: "POST", path: "/api/story", body: map[string]interface{}{"words": []string{"cell", "atom"}}})
	require.Equal(t, http.StatusOK, w.Code)
	story := decode[storyResponse](t, w)
	assert.Equal(t, []string{"cell"}, story.Check.Used)
	assert.Equal(t, []string{"atom"}, story.Check.Missing)

	w = s.do(t, request{method: "POST", path: "/api/speech", body: map[string]string{"text": "cell"}})
	require.Equal(t, http.StatusOK, w.Code)
	speech := decode[speechResponse](t, w)
	assert.True(t, strings.HasSuffix(speech.File, ".wav"))

	w = s.do(t, request{method: "GET", path: speech.URL})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "audio/wav", w.Header().Get("Content-Type"))
	assert.Equal(t, "RIFF", w.Body.String()[:4])

	w = s.do(t, request{method: "POST", path: "/api/speech/words", body: map[string][]string{"words": {"cell", "atom"}}})
	require.Equal(t, http.StatusOK, w.Code)
	urls := decode[map[string]string](t, w)
	assert.Equal(t, speech.URL, urls["cell"])
	assert.Equal(t, "/api/audio/word_atom.wav", urls["atom"])

	w = s.do(t, request{method: "GET", path: "/api/audio/secret.txt"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, request{method: "GET", path: "/api/audio/missing.wav"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, request{method: "DELETE", path: "/api/dashboard/audio", headers: map[string]string{teacherPasswordHeader: testPassword}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[map[string]int](t, w)["removed"])
}

func TestListEndpoints(t *testing.T) {
	s := newTestServer(t, 0)

	w := s.do(t, request{method: "POST", path: "/api/lists/text", user: "alice", body: map[string]interface{}{
		"name": "science notes",
		"text": "Plants turn light into food through photosynthesis in every cell.",
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode[service.ListResult](t, w)
	assert.Equal(t, "science notes", result.ListID)
	assert.Equal(t, []string{"cell", "photosynthesis"}, result.Terms)

	w = s.do(t, request{method: "POST", path: "/api/lists/text", user: "alice", body: map[string]interface{}{"text": "short"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(t, request{method: "POST", path: "/api/lists/suggest", user: "alice", body: map[string]interface{}{
		"settings": map[string]interface{}{"wordCount": 5, "subject": "economics"},
	}})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.True(t, decode[errorResponse](t, w).Error.CanRetry)
}

func TestUploadList(t *testing.T) {
	s := newTestServer(t, 0)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "notes.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("not a document"))
	require.NoError(t, mw.Close())

	r := httptest.NewRequest("POST", "/api/lists/upload", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r.Header.Set("X-Profile", "alice")
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, decode[errorResponse](t, w).Error.CanRetry)
}

func TestDashboardPasswordGate(t *testing.T) {
	s := newTestServer(t, 0)
	_, err := s.store.Update(context.Background(), "alice", func(p models.UserProfile) (models.UserProfile, error) {
		p.SessionHistory = []models.SessionRecord{{ID: "s1"}}
		return p, nil
	})
	require.NoError(t, err)

	w := s.do(t, request{method: "GET", path: "/api/dashboard"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	teacher := map[string]string{teacherPasswordHeader: testPassword}
	w = s.do(t, request{method: "GET", path: "/api/dashboard", headers: teacher})
	require.Equal(t, http.StatusOK, w.Code)
	summaries := decode[[]models.ProfileSummary](t, w)
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].SessionCount)

	w = s.do(t, request{method: "GET", path: "/api/dashboard/backup", headers: teacher})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "vocabtrainer_backup_")
	assert.Contains(t, w.Body.String(), `"alice"`)

	w = s.do(t, request{method: "DELETE", path: "/api/dashboard/students/alice/sessions/s1", headers: teacher})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[models.UserProfile](t, w).SessionHistory)

	w = s.do(t, request{method: "DELETE", path: "/api/dashboard/students/alice/sessions/s1", headers: teacher})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, request{method: "DELETE", path: "/api/dashboard/students/alice", headers: teacher})
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, request{method: "GET", path: "/api/dashboard/students/alice", headers: teacher})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t, 0)
	ctx := context.Background()

	teacher, err := s.auth.OAuthLogin(ctx, "google", "sub-1", "teacher@example.com", "Teacher")
	require.NoError(t, err)
	student, err := s.auth.OAuthLogin(ctx, "google", "sub-2", "student@example.com", "Student")
	require.NoError(t, err)

	w := s.do(t, request{method: "GET", path: "/api/me"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, request{method: "GET", path: "/api/me", headers: map[string]string{"Authorization": "Bearer garbage"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, request{method: "GET", path: "/api/me", headers: map[string]string{"Authorization": "Bearer " + student.Token}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, student.User.ID, decode[models.User](t, w).ID)

	w = s.do(t, request{method: "GET", path: "/api/users", headers: map[string]string{"Authorization": "Bearer " + student.Token}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	asTeacher := map[string]string{"Authorization": "Bearer " + teacher.Token}
	w = s.do(t, request{method: "GET", path: "/api/users", headers: asTeacher})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.User](t, w), 2)

	w = s.do(t, request{method: "PUT", path: "/api/users/" + teacher.User.ID + "/role", headers: asTeacher, body: map[string]string{"role": "student"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, request{method: "PUT", path: "/api/users/" + student.User.ID + "/role", headers: asTeacher, body: map[string]string{"role": "teacher"}})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, request{method: "GET", path: "/api/history", headers: asTeacher})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestFeedbackEndpoints(t *testing.T) {
	s := newTestServer(t, 0)

	w := s.do(t, request{method: "POST", path: "/api/feedback", body: map[string]string{"name": "Alice", "message": "More words please"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Positive(t, decode[models.FeedbackRow](t, w).ID)

	w = s.do(t, request{method: "POST", path: "/api/feedback", body: map[string]string{"email": "not-an-email", "message": "hi"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[errorResponse](t, w).Fields, "email")

	w = s.do(t, request{method: "GET", path: "/api/feedback"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOAuthFlow(t *testing.T) {
	s := newTestServer(t, 0)

	w := s.do(t, request{method: "GET", path: "/auth/providers"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]OAuthProviderView](t, w), 1)

	w = s.do(t, request{method: "GET", path: "/auth/google/start"})
	require.Equal(t, http.StatusFound, w.Code)
	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.example.com", location.Host)
	assert.Equal(t, "http://api.example.com/auth/google/callback", location.Query().Get("redirect_uri"))

	var state string
	for _, c := range w.Result().Cookies() {
		if c.Name == "oauth_state" {
			state = c.Value
		}
	}
	require.NotEmpty(t, state)
	assert.Equal(t, state, location.Query().Get("state"))

	w = s.do(t, request{method: "GET", path: "/auth/google/callback?code=abc&state=forged"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, request{method: "GET", path: "/auth/apple/start"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionFeedback(t *testing.T) {
	s := newTestServer(t, 0)
	_, err := s.store.Update(context.Background(), "alice", func(p models.UserProfile) (models.UserProfile, error) {
		p.SessionHistory = []models.SessionRecord{{ID: "s1", Score: 3}}
		return p, nil
	})
	require.NoError(t, err)

	w := s.do(t, request{method: "POST", path: "/api/profile/sessions/s1/feedback", user: "alice"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "well done", decode[models.Feedback](t, w).Raw)

	w = s.do(t, request{method: "POST", path: "/api/profile/sessions/s2/feedback", user: "alice"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAvatarShop(t *testing.T) {
	s := newTestServer(t, 0)

	w := s.do(t, request{method: "POST", path: "/api/profile/avatars/purchase", user: "alice", body: map[string]string{"avatarId": "fox"}})
	assert.Equal(t, http.StatusConflict, w.Code, "no points yet")

	w = s.do(t, request{method: "POST", path: "/api/profile/avatars/equip", user: "alice", body: map[string]string{"avatarId": "unicorn"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, request{method: "POST", path: "/api/profile/avatars/equip", user: "alice", body: map[string]string{"avatarId": models.DefaultAvatarID}})
	assert.Equal(t, http.StatusOK, w.Code)
}
