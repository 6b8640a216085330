package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"faq-chatbot/internal/config"
)

// openAIClient talks to OpenAI or any OpenAI-compatible endpoint (Groq etc.)
// via langchaingo. One underlying LLM handle serves both chat completion and
// embeddings; the embedding model is configured separately.
type openAIClient struct {
	llm      *openai.LLM
	embedder *embeddings.EmbedderImpl
	model    string
}

func newOpenAIClient(cfg *config.LLMConfig) (*openAIClient, error) {
	llm, err := openai.New(
		openai.WithBaseURL(cfg.OpenAI.BaseURL),
		openai.WithToken(strings.TrimPrefix(cfg.OpenAI.APIKey, "Bearer ")),
		openai.WithModel(cfg.OpenAI.Model),
		openai.WithEmbeddingModel(cfg.EmbeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize openai client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return &openAIClient{llm: llm, embedder: embedder, model: cfg.OpenAI.Model}, nil
}

func (c *openAIClient) ChatCompletion(ctx context.Context, messages []Message) (*Response, error) {
	resp, err := c.llm.GenerateContent(ctx, toContentMessages(messages))
	if err != nil {
		return nil, fmt.Errorf("failed to generate completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("completion returned no choices")
	}
	return &Response{Content: resp.Choices[0].Content, Model: c.model}, nil
}

func (c *openAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	return c.embedder.EmbedQuery(ctx, text)
}

func (c *openAIClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return c.embedder.EmbedDocuments(ctx, texts)
}

func (c *openAIClient) DescribeImage(ctx context.Context, imagePath string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", imageMIMEType(imagePath), base64.StdEncoding.EncodeToString(data))

	resp, err := c.llm.GenerateContent(ctx, []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(describeImagePrompt),
				llms.ImageURLPart(dataURL),
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
