package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Keys      APIKeys
	Ai        AIConfig
	Retrieval RetrievalConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	TelemetryEnabled   bool
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	Jina            string
	Upstage         string
	JWTSecret       string
	IndexPaperTopic string // Paper ingest topic
}

type AIConfig struct {
	EmbeddingProvider string // "jina" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama" or "upstage"
	LLMModel          string // e.g. "llama3", "solar-pro"
	MaxOutputTokens   int
}

type RetrievalConfig struct {
	TopK          int
	RerankEnabled bool
	RerankModel   string
	ChunkSize     int
	ChunkOverlap  int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			TelemetryEnabled:   getEnv("TELEMETRY_ENABLED", "false") == "true",
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			Jina:            getEnv("JINA_API_KEY", ""),
			Upstage:         getEnv("UPSTAGE_API_KEY", ""),
			JWTSecret:       getEnv("JWT_SECRET", ""),
			IndexPaperTopic: getEnv("INDEX_PAPER_TOPIC_NAME", "INDEX_PAPER_CONTENT"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "jina"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			MaxOutputTokens:   getEnvAsInt("LLM_MAX_OUTPUT_TOKENS", 1024),
		},
		Retrieval: RetrievalConfig{
			TopK:          getEnvAsInt("RETRIEVAL_TOP_K", 10),
			RerankEnabled: getEnv("RERANK_ENABLED", "true") == "true",
			RerankModel:   getEnv("RERANK_MODEL", "jina-reranker-v2-base-multilingual"),
			ChunkSize:     getEnvAsInt("CHUNK_SIZE", 1000),
			ChunkOverlap:  getEnvAsInt("CHUNK_OVERLAP", 100),
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
