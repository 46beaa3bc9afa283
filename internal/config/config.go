// Package config loads configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds runtime settings.
type Config struct {
	// DatabaseURL selects the PostgreSQL store; empty falls back to the
	// SQLite save file at SavePath.
	DatabaseURL string
	SavePath    string

	// GoogleAPIKey enables the embedding backend; empty selects the
	// keyword-overlap similarity fallback.
	GoogleAPIKey   string
	EmbeddingModel string

	// LLMAPIKey and friends configure the narrative generation service.
	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string

	TopK                int
	SimilarityThreshold float64
	HistoryLimit        int
	MinChapterGap       int

	CharacterID   string
	CharacterName string
}

// Load reads env vars, applies defaults, and validates required fields.
func Load() Config {
	cfg := Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SavePath:       os.Getenv("SAVE_PATH"),
		GoogleAPIKey:   os.Getenv("GOOGLE_API_KEY"),
		EmbeddingModel: os.Getenv("EMBEDDING_MODEL"),
		LLMAPIKey:      os.Getenv("LLM_API_KEY"),
		LLMBaseURL:     os.Getenv("LLM_BASE_URL"),
		LLMModel:       os.Getenv("LLM_MODEL"),
		CharacterID:    os.Getenv("CHARACTER_ID"),
		CharacterName:  os.Getenv("CHARACTER_NAME"),
	}

	cfg.TopK = getEnvInt("TOP_K", 5)
	cfg.SimilarityThreshold = getEnvFloat("SIMILARITY_THRESHOLD", 0.7)
	cfg.HistoryLimit = getEnvInt("HISTORY_LIMIT", 10)
	cfg.MinChapterGap = getEnvInt("MIN_CHAPTER_GAP", 5)

	if cfg.SavePath == "" {
		cfg.SavePath = "saves/journey.db"
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "gemini-embedding-001"
	}
	if cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = "https://api.x.ai/v1"
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = "grok-4-fast"
	}
	if cfg.CharacterID == "" {
		cfg.CharacterID = "wanderer-1"
	}
	if cfg.CharacterName == "" {
		cfg.CharacterName = "Li Wuyan"
	}

	if cfg.LLMAPIKey == "" {
		log.Fatal("LLM_API_KEY environment variable is required")
	}

	return cfg
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}
