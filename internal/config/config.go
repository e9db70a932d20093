package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	ShutdownTimeout time.Duration
	UploadMaxSize   int64
	AllowedOrigins  []string

	// Database
	DatabaseType string
	DatabasePath string
	DatabaseURL  string
	BadWordsURL  string

	// Generative-language service
	GeminiAPIKey        string
	GeminiBaseURL       string
	GeminiFastModel     string
	GeminiAdvancedModel string
	GeminiSpeechModel   string
	GeminiSpeechVoice   string
	AudioDir            string

	// Teacher password gate; UI friction, not authorization
	TeacherPassword string

	// Authentication
	JWTSecret          string
	TokenDuration      time.Duration
	AppBaseURL         string
	FrontendURL        string
	GoogleClientID     string
	GoogleClientSecret string

	// Email notifications
	SESRegion        string
	SESFromAddress   string
	FeedbackNotifyTo string

	// Requests per minute allowed on AI-backed endpoints, per client
	AIRateLimit int
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first if present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	allowedOrigins := getList("ALLOWED_ORIGINS", "http://localhost:5173")

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		UploadMaxSize:   int64(getInt("UPLOAD_MAX_SIZE", 10*1024*1024)), // 10MB
		AllowedOrigins:  allowedOrigins,

		DatabaseType: getEnv("DB_TYPE", "sqlite"),
		DatabasePath: getEnv("DB_PATH", "./vocabtrainer.db"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		BadWordsURL:  getEnv("BAD_WORDS_URL", ""),

		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiBaseURL:       getEnv("GEMINI_BASE_URL", ""),
		GeminiFastModel:     getEnv("GEMINI_FAST_MODEL", "gemini-2.5-flash"),
		GeminiAdvancedModel: getEnv("GEMINI_ADVANCED_MODEL", "gemini-2.5-pro"),
		GeminiSpeechModel:   getEnv("GEMINI_SPEECH_MODEL", "gemini-2.5-flash-preview-tts"),
		GeminiSpeechVoice:   getEnv("GEMINI_SPEECH_VOICE", "Kore"),
		AudioDir:            getEnv("AUDIO_DIR", "./audio"),

		TeacherPassword: getEnv("TEACHER_PASSWORD", ""),

		JWTSecret:          getEnv("JWT_SECRET", ""),
		TokenDuration:      getDuration("TOKEN_DURATION", 7*24*time.Hour),
		AppBaseURL:         getEnv("APP_BASE_URL", "http://localhost:8080"),
		FrontendURL:        getEnv("FRONTEND_URL", firstOr(allowedOrigins, "http://localhost:5173")),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),

		SESRegion:        getEnv("AWS_SES_REGION", getEnv("AWS_REGION", "")),
		SESFromAddress:   getEnv("SES_FROM_ADDRESS", ""),
		FeedbackNotifyTo: getEnv("FEEDBACK_NOTIFY_TO", ""),

		AIRateLimit: getInt("AI_RATE_LIMIT", 20),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: %s=%q is not a number, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: %s=%q is not a valid duration, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

// getList splits a comma-separated variable
func getList(key, defaultValue string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, defaultValue), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstOr(values []string, fallback string) string {
	if len(values) > 0 {
		return values[0]
	}
	return fallback
}
