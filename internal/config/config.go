package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type OllamaConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// LLMConfig selects the provider backend and its models. Provider is either
// "openai" (any OpenAI-compatible endpoint) or "ollama".
type LLMConfig struct {
	Provider       string       `yaml:"provider"`
	OpenAI         OpenAIConfig `yaml:"openai"`
	Ollama         OllamaConfig `yaml:"ollama"`
	EmbeddingModel string       `yaml:"embedding_model"`
}

type VectorConfig struct {
	PersistDir string `yaml:"persist_dir"`
	Collection string `yaml:"collection"`
}

type DatabaseConfig struct {
	DSN   string `yaml:"dsn"`
	Debug bool   `yaml:"debug"`
}

type RAGConfig struct {
	TopK         int `yaml:"top_k"`
	HistoryLimit int `yaml:"history_limit"`
}

type DataConfig struct {
	FAQDir   string `yaml:"faq_dir"`
	ImageDir string `yaml:"image_dir"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	LLM      LLMConfig      `yaml:"llm"`
	Vector   VectorConfig   `yaml:"vector"`
	Database DatabaseConfig `yaml:"database"`
	RAG      RAGConfig      `yaml:"rag"`
	Data     DataConfig     `yaml:"data"`
}

// LoadConfig reads a YAML config file and fills in defaults. The OpenAI API
// key may also come from the OPENAI_API_KEY environment variable, which takes
// precedence over the file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.LLM.OpenAI.APIKey = key
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.OpenAI.BaseURL == "" {
		c.LLM.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if c.LLM.OpenAI.Model == "" {
		c.LLM.OpenAI.Model = "gpt-4o"
	}
	if c.LLM.Ollama.BaseURL == "" {
		c.LLM.Ollama.BaseURL = "http://localhost:11434"
	}
	if c.LLM.EmbeddingModel == "" {
		c.LLM.EmbeddingModel = "text-embedding-3-small"
	}
	if c.Vector.PersistDir == "" {
		c.Vector.PersistDir = "./data/chroma"
	}
	if c.Vector.Collection == "" {
		c.Vector.Collection = "faq_documents"
	}
	if c.RAG.TopK == 0 {
		c.RAG.TopK = 3
	}
	if c.RAG.HistoryLimit == 0 {
		c.RAG.HistoryLimit = 5
	}
	if c.Data.FAQDir == "" {
		c.Data.FAQDir = "./data/faq"
	}
	if c.Data.ImageDir == "" {
		c.Data.ImageDir = "./data/images"
	}
}
