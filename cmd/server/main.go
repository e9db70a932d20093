package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"vocabtrainer/internal/ai"
	"vocabtrainer/internal/audio"
	"vocabtrainer/internal/config"
	"vocabtrainer/internal/database"
	"vocabtrainer/internal/handlers"
	"vocabtrainer/internal/profile"
	"vocabtrainer/internal/repository"
	"vocabtrainer/internal/security"
	"vocabtrainer/internal/service"
)

// Live practice sessions are dropped after this long
const sessionMaxAge = 6 * time.Hour

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Seed bad words filter
	badWordsURL := cfg.BadWordsURL
	if badWordsURL == "" {
		badWordsURL = database.DefaultBadWordsURL
	}
	if err := db.SeedBadWords(ctx, badWordsURL); err != nil {
		log.Printf("Warning: Failed to seed bad words filter: %v", err)
	}

	// Profiles live in one key-value blob
	store := profile.NewStore(repository.NewKVRepository(db))
	if err := store.Load(ctx); err != nil {
		log.Fatalf("Failed to load profiles: %v", err)
	}
	log.Printf("Loaded %d profiles", len(store.Names()))

	if cfg.GeminiAPIKey == "" {
		log.Println("Warning: GEMINI_API_KEY is not set; AI features will be unavailable")
	}
	aiClient := ai.NewClient(ai.Config{
		APIKey:        cfg.GeminiAPIKey,
		BaseURL:       cfg.GeminiBaseURL,
		FastModel:     cfg.GeminiFastModel,
		AdvancedModel: cfg.GeminiAdvancedModel,
		SpeechModel:   cfg.GeminiSpeechModel,
		SpeechVoice:   cfg.GeminiSpeechVoice,
	})
	ttsService := audio.NewTTSService(cfg.AudioDir, aiClient)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	syncService := service.NewSyncService(
		repository.NewSessionRepository(db),
		repository.NewWordProgressRepository(db),
		repository.NewFeedbackRepository(db),
	)

	emailService, err := service.NewEmailService(ctx, cfg.SESRegion, cfg.SESFromAddress, cfg.FeedbackNotifyTo)
	if err != nil {
		log.Printf("Warning: Failed to initialize email service: %v", err)
		emailService = nil
	}

	gate, err := security.NewPasswordGate(cfg.TeacherPassword)
	if err != nil {
		log.Fatalf("Failed to set up teacher password: %v", err)
	}
	if cfg.TeacherPassword == "" {
		log.Println("Warning: TEACHER_PASSWORD is not set; the teacher dashboard is disabled")
	}

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		jwtSecret = randomSecret()
		log.Println("Warning: JWT_SECRET is not set; sign-ins will not survive a restart")
	}
	tokens := security.NewTokenIssuer(jwtSecret, cfg.TokenDuration)

	// Initialize services
	authService := service.NewAuthService(userRepo, tokens)
	practiceService := service.NewPracticeService(aiClient, store, syncService)
	listService := service.NewListService(aiClient, db, store)
	studyService := service.NewStudyService(aiClient, ttsService)
	feedbackService := service.NewFeedbackService(aiClient, store, syncService, emailService)
	profileService := service.NewProfileService(store, gate)
	backupService := service.NewBackupService(store)

	oauthProviders := map[string]handlers.OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
	}

	limiter := security.NewRateLimiter(cfg.AIRateLimit, time.Minute)
	go limiter.RunCleanup(ctx, 5*time.Minute)

	// Initialize handlers
	routes := handlers.Routes{
		Middleware: handlers.NewMiddleware(authService, limiter),
		Auth:       handlers.NewAuthHandler(authService, oauthProviders, cfg.AppBaseURL, cfg.FrontendURL),
		Profile:    handlers.NewProfileHandler(profileService, syncService),
		Practice:   handlers.NewPracticeHandler(practiceService),
		Lists:      handlers.NewListHandler(listService, cfg.UploadMaxSize),
		Study:      handlers.NewStudyHandler(studyService, feedbackService),
		Feedback:   handlers.NewFeedbackHandler(feedbackService),
		Dashboard:  handlers.NewDashboardHandler(profileService, backupService, studyService, authService),
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Profile", "X-Teacher-Password"},
		ExposedHeaders:   []string{"Retry-After", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           600,
	})

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:        addr,
		Handler:     corsHandler.Handler(routes.Handler()),
		ReadTimeout: 15 * time.Second,
		// Study material and speech can take a while to generate
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background session cleanup
	go pruneSessions(ctx, practiceService)

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	practiceService.Wait()
	log.Println("Server stopped")
}

// pruneSessions periodically drops abandoned practice sessions
func pruneSessions(ctx context.Context, practiceService *service.PracticeService) {
	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := practiceService.PruneSessions(sessionMaxAge); n > 0 {
				log.Printf("Pruned %d abandoned practice sessions", n)
			}
		}
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("Failed to generate JWT secret: %v", err)
	}
	return hex.EncodeToString(b)
}
