package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Messenger MessengerConfig
	Keys      APIKeys
	Ai        AIConfig
	Agent     AgentConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
}

type DatabaseConfig struct {
	Connection string
}

// MessengerConfig covers the webhook ingress and the Send API client.
type MessengerConfig struct {
	VerifyToken string
	PageToken   string
	SendAPIBase string
}

type APIKeys struct {
	GoogleGemini   string
	Jina           string
	Tavily         string
	ReservationAPI string
	QdrantAPIKey   string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama" or "gemini"
	LLMModel          string
	QdrantURL         string
	MemoryCollection  string
}

// AgentConfig carries the turn pipeline bounds. Every retry loop in the
// agent is capped by one of these values.
type AgentConfig struct {
	InactivityWindow      time.Duration
	ImageAnalysisTimeout  time.Duration
	MaxRewrites           int
	MaxSearchAttempts     int
	MaxRegenerations      int
	GroundednessThreshold float64
	RetrievalTopK         int
	RetrievalThreshold    float64
	SummaryAfterMessages  int
	ReservationAPIBase    string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Messenger: MessengerConfig{
			VerifyToken: getEnv("MESSENGER_VERIFY_TOKEN", ""),
			PageToken:   getEnv("MESSENGER_PAGE_TOKEN", ""),
			SendAPIBase: getEnv("MESSENGER_SEND_API_BASE", "https://graph.facebook.com/v19.0"),
		},
		Keys: APIKeys{
			GoogleGemini:   getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Jina:           getEnv("JINA_API_KEY", ""),
			Tavily:         getEnv("TAVILY_API_KEY", ""),
			ReservationAPI: getEnv("RESERVATION_API_KEY", ""),
			QdrantAPIKey:   getEnv("QDRANT_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:          getEnv("LLM_MODEL", "gemini-2.0-flash"),
			QdrantURL:         getEnv("QDRANT_URL", "http://localhost:6334"),
			MemoryCollection:  getEnv("QDRANT_MEMORY_COLLECTION", "user_memory"),
		},
		Agent: AgentConfig{
			InactivityWindow:      getEnvAsDuration("INACTIVITY_WINDOW", 5*time.Second),
			ImageAnalysisTimeout:  getEnvAsDuration("IMAGE_ANALYSIS_TIMEOUT", 20*time.Second),
			MaxRewrites:           getEnvAsInt("MAX_REWRITES", 2),
			MaxSearchAttempts:     getEnvAsInt("MAX_SEARCH_ATTEMPTS", 2),
			MaxRegenerations:      getEnvAsInt("MAX_REGENERATIONS", 1),
			GroundednessThreshold: getEnvAsFloat("GROUNDEDNESS_THRESHOLD", 0.5),
			RetrievalTopK:         getEnvAsInt("RETRIEVAL_TOP_K", 5),
			RetrievalThreshold:    getEnvAsFloat("RETRIEVAL_THRESHOLD", 0.3),
			SummaryAfterMessages:  getEnvAsInt("SUMMARY_AFTER_MESSAGES", 8),
			ReservationAPIBase:    getEnv("RESERVATION_API_BASE", "http://localhost:2108"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
