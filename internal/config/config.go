// ABOUTME: Centralized configuration for the sous recipe agent
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the recipe agent
type Config struct {
	// Storage settings
	DBPath          string
	VectorDimension int

	// OpenAI settings
	OpenAIKey         string
	OpenAIBaseURL     string
	ChatModel         string
	EmbeddingModel    string
	Timeout           time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
	RequestsPerSecond float64

	// Agent settings
	MaxIterations     int
	ParallelToolCalls bool

	// Retrieval settings. The tool-mediated search is deliberately more
	// permissive than direct user search.
	ToolSearchLimit     int
	ToolMinSimilarity   float64
	SearchLimit         int
	SearchMinSimilarity float64
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:              os.Getenv("SOUS_DB_PATH"),
		VectorDimension:     getEnvInt("VECTOR_DIMENSION", 1536),
		OpenAIKey:           os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:       os.Getenv("OPENAI_BASE_URL"),
		ChatModel:           getEnv("SOUS_CHAT_MODEL", "gpt-4o-mini"),
		EmbeddingModel:      getEnv("SOUS_EMBEDDING_MODEL", "text-embedding-3-small"),
		Timeout:             getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:          getEnvInt("OPENAI_MAX_RETRIES", 2),
		RetryDelay:          getEnvDuration("OPENAI_RETRY_DELAY", time.Second),
		RequestsPerSecond:   getEnvFloat("OPENAI_RPS", 5),
		MaxIterations:       getEnvInt("SOUS_MAX_ITERATIONS", 5),
		ParallelToolCalls:   getEnvBool("SOUS_PARALLEL_TOOLS", false),
		ToolSearchLimit:     getEnvInt("SOUS_TOOL_SEARCH_LIMIT", 5),
		ToolMinSimilarity:   getEnvFloat("SOUS_TOOL_MIN_SIMILARITY", 0.3),
		SearchLimit:         getEnvInt("SOUS_SEARCH_LIMIT", 3),
		SearchMinSimilarity: getEnvFloat("SOUS_SEARCH_MIN_SIMILARITY", 0.6),
	}

	return cfg, cfg.Validate()
}

// Validate checks ranges on numeric settings
func (c *Config) Validate() error {
	if c.ToolMinSimilarity < -1 || c.ToolMinSimilarity > 1 {
		return fmt.Errorf("SOUS_TOOL_MIN_SIMILARITY must be -1..1, got %f", c.ToolMinSimilarity)
	}
	if c.SearchMinSimilarity < -1 || c.SearchMinSimilarity > 1 {
		return fmt.Errorf("SOUS_SEARCH_MIN_SIMILARITY must be -1..1, got %f", c.SearchMinSimilarity)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("SOUS_MAX_ITERATIONS must be at least 1, got %d", c.MaxIterations)
	}
	if c.ToolSearchLimit < 1 {
		return fmt.Errorf("SOUS_TOOL_SEARCH_LIMIT must be at least 1, got %d", c.ToolSearchLimit)
	}
	if c.SearchLimit < 1 {
		return fmt.Errorf("SOUS_SEARCH_LIMIT must be at least 1, got %d", c.SearchLimit)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.VectorDimension < 0 {
		return fmt.Errorf("VECTOR_DIMENSION must not be negative, got %d", c.VectorDimension)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
