package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Session SessionConfig
	Search  SearchConfig
	Ai      AIConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	TopicDataPath      string
}

type SessionConfig struct {
	// Store selects the session backend: "redis" or "memory".
	Store      string
	TTLSeconds int
}

type SearchConfig struct {
	TavilyAPIKey  string
	TavilyBaseURL string
	MaxResults    int
	// Mock returns canned search results so the flow runs without an API key.
	Mock bool
}

type AIConfig struct {
	LLMProvider   string // "ollama" or "openai"
	LLMModel      string // e.g. "llama3", "gpt-4o-mini"
	OllamaBaseURL string
	OpenAIAPIKey  string
	ValidateTopic bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/healthbot.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
			TopicDataPath:      getEnv("TOPIC_DATA_PATH", "data/medical_topics.txt"),
		},
		Session: SessionConfig{
			Store:      getEnv("SESSION_STORE", "redis"),
			TTLSeconds: getEnvAsInt("SESSION_TTL_SECONDS", 900),
		},
		Search: SearchConfig{
			TavilyAPIKey:  getEnv("TAVILY_API_KEY", ""),
			TavilyBaseURL: getEnv("TAVILY_BASE_URL", ""),
			MaxResults:    getEnvAsInt("TAVILY_MAX_RESULTS", 4),
			Mock:          getEnvAsBool("TAVILY_MOCK", false),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:      getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
			ValidateTopic: getEnvAsBool("VALIDATE_TOPIC", false),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
