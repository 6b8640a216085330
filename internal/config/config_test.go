package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
llm:
  provider: ollama
  ollama:
    base_url: http://ollama:11434
    model: llama3.1
  embedding_model: nomic-embed-text
database:
  dsn: postgres://localhost:5432/faq
rag:
  top_k: 5
  history_limit: 10
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "nomic-embed-text", cfg.LLM.EmbeddingModel)
	assert.Equal(t, 5, cfg.RAG.TopK)
	assert.Equal(t, 10, cfg.RAG.HistoryLimit)
	assert.Equal(t, "postgres://localhost:5432/faq", cfg.Database.DSN)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "{}"))
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.OpenAI.Model)
	assert.Equal(t, "text-embedding-3-small", cfg.LLM.EmbeddingModel)
	assert.Equal(t, "./data/chroma", cfg.Vector.PersistDir)
	assert.Equal(t, "faq_documents", cfg.Vector.Collection)
	assert.Equal(t, 3, cfg.RAG.TopK)
	assert.Equal(t, 5, cfg.RAG.HistoryLimit)
	assert.Equal(t, "./data/faq", cfg.Data.FAQDir)
}

func TestLoadConfigEnvOverridesAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")

	cfg, err := LoadConfig(writeConfig(t, `
llm:
  openai:
    api_key: file-key
`))
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.LLM.OpenAI.APIKey)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
