package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"faq-chatbot/internal/config"
)

// ollamaClient runs against a local ollama server. Chat and embeddings use
// separate model handles since ollama binds one model per handle.
type ollamaClient struct {
	llm      *ollama.LLM
	embedder *embeddings.EmbedderImpl
	model    string
}

func newOllamaClient(cfg *config.LLMConfig) (*ollamaClient, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(cfg.Ollama.BaseURL),
		ollama.WithModel(cfg.Ollama.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ollama client: %w", err)
	}
	embedLLM, err := ollama.New(
		ollama.WithServerURL(cfg.Ollama.BaseURL),
		ollama.WithModel(cfg.EmbeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ollama embedding client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(embedLLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return &ollamaClient{llm: llm, embedder: embedder, model: cfg.Ollama.Model}, nil
}

func (c *ollamaClient) ChatCompletion(ctx context.Context, messages []Message) (*Response, error) {
	resp, err := c.llm.GenerateContent(ctx, toContentMessages(messages))
	if err != nil {
		return nil, fmt.Errorf("failed to generate completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("completion returned no choices")
	}
	return &Response{Content: resp.Choices[0].Content, Model: c.model}, nil
}

func (c *ollamaClient) Embed(ctx context.Context, text string) ([]float32, error) {
	return c.embedder.EmbedQuery(ctx, text)
}

func (c *ollamaClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return c.embedder.EmbedDocuments(ctx, texts)
}

func (c *ollamaClient) DescribeImage(ctx context.Context, imagePath string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	resp, err := c.llm.GenerateContent(ctx, []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(describeImagePrompt),
				llms.BinaryPart(imageMIMEType(imagePath), data),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to describe image: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("image description returned no choices")
	}
	return resp.Choices[0].Content, nil
}
