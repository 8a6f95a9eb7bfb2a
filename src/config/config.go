package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port               string
	LogLevel           string
	MaxUploadSizeBytes int64
	AllowedOrigin      string
	TopItemsLimit      int

	// AI recommendation settings. The endpoint is OpenAI-compatible;
	// Groq's free tier is the default provider.
	AIAPIKey         string
	AIBaseURL        string
	AIModel          string
	AIRequestTimeout time.Duration
	AIMaxTokens      int

	AnalysisCacheTTL     time.Duration
	AnalysisCacheCleanup time.Duration
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	maxUploadSizeBytesStr := getEnv("MAX_UPLOAD_SIZE_BYTES", "10485760")
	maxUploadSizeBytes, err := strconv.ParseInt(maxUploadSizeBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_UPLOAD_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxUploadSizeBytesStr, err)
		maxUploadSizeBytes = 10 * 1024 * 1024
	}

	aiAPIKey := getEnv("GROQ_API_KEY", "")
	if aiAPIKey == "" {
		log.Println("WARNING: GROQ_API_KEY is not set. Metrics will be computed but AI recommendations will be unavailable.")
	}

	topItemsLimit := getEnvAsInt("TOP_ITEMS_LIMIT", 5)
	if topItemsLimit <= 0 {
		log.Printf("WARNING: TOP_ITEMS_LIMIT must be positive, got %d. Using default 5.", topItemsLimit)
		topItemsLimit = 5
	}

	Cfg = &AppConfig{
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		MaxUploadSizeBytes: maxUploadSizeBytes,
		AllowedOrigin:      getEnv("ALLOWED_ORIGIN", "*"),
		TopItemsLimit:      topItemsLimit,

		AIAPIKey:         aiAPIKey,
		AIBaseURL:        getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		AIModel:          getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		AIRequestTimeout: getEnvAsDuration("AI_REQUEST_TIMEOUT", 15*time.Second),
		AIMaxTokens:      getEnvAsInt("AI_MAX_TOKENS", 600),

		AnalysisCacheTTL:     getEnvAsDuration("ANALYSIS_CACHE_TTL", 15*time.Minute),
		AnalysisCacheCleanup: getEnvAsDuration("ANALYSIS_CACHE_CLEANUP", 30*time.Minute),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, AIModel=%s, AIEnabled=%t",
		Cfg.Port, Cfg.LogLevel, Cfg.AIModel, Cfg.AIAPIKey != "")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Integer value for %s not set or empty, using default: %d", key, fallback)
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Duration value for %s not set or empty, using default: %s", key, fallback.String())
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
