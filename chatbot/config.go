package chatbot

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the chatbot configuration.
type Config struct {
	// LLM configuration
	OpenAIKey   string
	Model       string
	Temperature float64

	// Corpus and persistence locations
	DocumentsDir string
	IndexDir     string
	GraphPath    string

	// Chunking and retrieval configuration
	ChunkSize    int
	ChunkOverlap int
	TopK         int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Model:        "gpt-4o-mini",
		Temperature:  0.7,
		DocumentsDir: "docs",
		IndexDir:     ".docchat_index",
		GraphPath:    "knowledge_graph.json",
		ChunkSize:    1000,
		ChunkOverlap: 200,
		TopK:         4,
	}
}

// LoadConfig loads configuration from environment variables, falling back to
// the defaults. The OpenAI credential has no default; a missing credential is
// reported by Validate.
func LoadConfig() Config {
	cfg := DefaultConfig()

	cfg.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	cfg.Model = getEnv("OPENAI_MODEL", cfg.Model)
	cfg.DocumentsDir = getEnv("DOCUMENTS_DIR", cfg.DocumentsDir)
	cfg.IndexDir = getEnv("INDEX_DIR", cfg.IndexDir)
	cfg.GraphPath = getEnv("KNOWLEDGE_GRAPH_PATH", cfg.GraphPath)
	cfg.ChunkSize = getEnvInt("CHUNK_SIZE", cfg.ChunkSize)
	cfg.ChunkOverlap = getEnvInt("CHUNK_OVERLAP", cfg.ChunkOverlap)
	cfg.TopK = getEnvInt("TOP_K", cfg.TopK)

	return cfg
}

// Validate checks that the required configuration is present.
func (c Config) Validate() error {
	if c.OpenAIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required: set it in the environment or in a .env file")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk overlap must be non-negative and smaller than the chunk size")
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top-k must be positive")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default
// value. Unparseable values fall back to the default.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
