// Package llm wraps the generation and embedding backends behind one
// provider-neutral client interface. The backend is chosen once at startup
// from config; callers never see provider-specific types.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"faq-chatbot/internal/config"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one prompt entry in OpenAI-style role/content form.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response is a provider-neutral completion result.
type Response struct {
	Content string
	Model   string
}

// Client is the capability surface the rest of the system depends on:
// chat completion, embeddings, and image description.
type Client interface {
	ChatCompletion(ctx context.Context, messages []Message) (*Response, error)
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	DescribeImage(ctx context.Context, imagePath string) (string, error)
}

// New selects the provider backend from config. An unknown provider is a
// startup error, not a per-request condition.
func New(cfg *config.LLMConfig) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return newOpenAIClient(cfg)
	case "ollama":
		return newOllamaClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %q (supported: openai, ollama)", cfg.Provider)
	}
}

const describeImagePrompt = "この画像の内容を詳しく説明してください。"

func toContentMessages(messages []Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		out = append(out, llms.MessageContent{
			Role:  chatMessageType(m.Role),
			Parts: []llms.ContentPart{llms.TextPart(m.Content)},
		})
	}
	return out
}

func chatMessageType(role string) llms.ChatMessageType {
	switch role {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}

func imageMIMEType(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return "image/jpeg"
	default:
		return "image/png"
	}
}
