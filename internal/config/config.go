package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Rag      RagConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	UploadTmpDir       string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	EmbeddingDim      int
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama", etc
	LLMModel          string // e.g. "llama3", "qwen2.5"
	ExtractionBaseURL string // docling-style document conversion service
}

// RagConfig holds the retrieval tuning knobs. Defaults mirror the values the
// pipeline was calibrated with; override per deployment via env.
type RagConfig struct {
	RecentTurnWindow       int     // always include last N turns
	OlderTurnRetrieval     int     // retrieve N older relevant turns
	ChatHistoryThreshold   float64 // inclusive similarity floor for older turns
	KBChunkThreshold       float64
	MaxKBChunksPerKB       int
	AttachmentChunkLimit   int
	AttachmentThreshold    float64
	ChunkSize              int // characters per chunk window
	ChunkOverlap           int
	RetrievalBranchTimeout int // seconds, per retrieval branch
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
			UploadTmpDir:       getEnv("UPLOAD_TMP_DIR", os.TempDir()),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			EmbeddingDim:      getEnvAsInt("EMBEDDING_DIM", 768),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			ExtractionBaseURL: getEnv("EXTRACTION_BASE_URL", "http://localhost:5001"),
		},
		Rag: RagConfig{
			RecentTurnWindow:       getEnvAsInt("RECENT_TURN_WINDOW", 10),
			OlderTurnRetrieval:     getEnvAsInt("OLDER_TURN_RETRIEVAL", 3),
			ChatHistoryThreshold:   getEnvAsFloat("CHAT_HISTORY_THRESHOLD", 0.75),
			KBChunkThreshold:       getEnvAsFloat("KB_CHUNK_THRESHOLD", 0.70),
			MaxKBChunksPerKB:       getEnvAsInt("MAX_KB_CHUNKS_PER_KB", 3),
			AttachmentChunkLimit:   getEnvAsInt("ATTACHMENT_CHUNK_LIMIT", 5),
			AttachmentThreshold:    getEnvAsFloat("ATTACHMENT_THRESHOLD", 0.70),
			ChunkSize:              getEnvAsInt("KB_CHUNK_SIZE", 800),
			ChunkOverlap:           getEnvAsInt("KB_CHUNK_OVERLAP", 100),
			RetrievalBranchTimeout: getEnvAsInt("RETRIEVAL_BRANCH_TIMEOUT_SECONDS", 10),
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
