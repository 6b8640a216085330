package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"faq-chatbot/internal/config"
)

func TestNewUnsupportedProvider(t *testing.T) {
	_, err := New(&config.LLMConfig{Provider: "vertexai"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported llm provider")
}

func TestNewOpenAI(t *testing.T) {
	client, err := New(&config.LLMConfig{
		Provider: "openai",
		OpenAI: config.OpenAIConfig{
			APIKey:  "test-key",
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o",
		},
		EmbeddingModel: "text-embedding-3-small",
	})
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestChatMessageType(t *testing.T) {
	assert.Equal(t, llms.ChatMessageTypeSystem, chatMessageType(RoleSystem))
	assert.Equal(t, llms.ChatMessageTypeAI, chatMessageType(RoleAssistant))
	assert.Equal(t, llms.ChatMessageTypeHuman, chatMessageType(RoleUser))
	assert.Equal(t, llms.ChatMessageTypeHuman, chatMessageType("unknown"))
}

func TestToContentMessages(t *testing.T) {
	messages := toContentMessages([]Message{
		{Role: RoleSystem, Content: "指示"},
		{Role: RoleUser, Content: "質問"},
		{Role: RoleAssistant, Content: "回答"},
	})

	require.Len(t, messages, 3)
	assert.Equal(t, llms.ChatMessageTypeSystem, messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, messages[1].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, messages[2].Role)

	part, ok := messages[1].Parts[0].(llms.TextContent)
	require.True(t, ok)
	assert.Equal(t, "質問", part.Text)
}

func TestImageMIMEType(t *testing.T) {
	assert.Equal(t, "image/png", imageMIMEType("diagram.png"))
	assert.Equal(t, "image/jpeg", imageMIMEType("photo.jpg"))
	assert.Equal(t, "image/jpeg", imageMIMEType("photo.JPEG"))
	assert.Equal(t, "image/png", imageMIMEType("unknown.bin"))
}
