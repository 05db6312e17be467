package chatbot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, "docs", cfg.DocumentsDir)
	assert.Equal(t, ".docchat_index", cfg.IndexDir)
	assert.Equal(t, "knowledge_graph.json", cfg.GraphPath)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, 4, cfg.TopK)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("DOCUMENTS_DIR", "/tmp/corpus")
	t.Setenv("CHUNK_SIZE", "500")
	t.Setenv("TOP_K", "8")

	cfg := LoadConfig()

	assert.Equal(t, "sk-test", cfg.OpenAIKey)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, "/tmp/corpus", cfg.DocumentsDir)
	assert.Equal(t, 500, cfg.ChunkSize)
	assert.Equal(t, 8, cfg.TopK)
	// untouched values keep their defaults
	assert.Equal(t, 200, cfg.ChunkOverlap)
}

func TestLoadConfigIgnoresInvalidInts(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CHUNK_SIZE", "not-a-number")

	cfg := LoadConfig()
	assert.Equal(t, 1000, cfg.ChunkSize)
}

func TestConfigValidate(t *testing.T) {
	valid := DefaultConfig()
	valid.OpenAIKey = "sk-test"
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing api key", func(c *Config) { c.OpenAIKey = "" }},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }},
		{"overlap not below chunk size", func(c *Config) { c.ChunkOverlap = c.ChunkSize }},
		{"zero top k", func(c *Config) { c.TopK = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
