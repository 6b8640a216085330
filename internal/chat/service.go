// Package chat orchestrates the RAG answer pipeline: vector search, session
// history recall, prompt assembly, completion, and history persistence.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"faq-chatbot/internal/config"
	"faq-chatbot/internal/llm"
	"faq-chatbot/internal/models"
)

// systemPrompt pins the model to the supplied FAQ context. Editing this
// changes the answer tone and constraints.
const systemPrompt = "あなたはFAQチャットボットです。" +
	"提供されたFAQコンテキストに基づいてのみ回答してください。" +
	"コンテキストに含まれない情報については「該当する情報が見つかりませんでした」と回答してください。" +
	"回答は簡潔かつ正確に、日本語で行ってください。"

const (
	emptyStoreAnswer = "ナレッジベースが未構築です。先にデータの取り込みを実行してください。"
	failureAnswer    = "回答の生成に失敗しました。しばらくしてから再度お試しください。"
)

// VectorSearcher is the slice of the vector store the pipeline needs.
type VectorSearcher interface {
	Search(ctx context.Context, queryText string, topK int) ([]models.SearchResult, error)
	IsEmpty() bool
}

// HistoryStore is the slice of the session store the pipeline needs.
type HistoryStore interface {
	GetRecentHistory(ctx context.Context, sessionID string, n int) ([]models.ChatMessage, error)
	AddMessage(ctx context.Context, sessionID, question, answer string, sources []models.SourceInfo) error
}

// Service is the RAG answer pipeline. It borrows the two stores through
// their contracts and owns only the transient values of one answer call.
type Service struct {
	llm          llm.Client
	store        VectorSearcher
	sessions     HistoryStore
	topK         int
	historyLimit int
}

func NewService(client llm.Client, store VectorSearcher, sessions HistoryStore, cfg *config.RAGConfig) *Service {
	return &Service{
		llm:          client,
		store:        store,
		sessions:     sessions,
		topK:         cfg.TopK,
		historyLimit: cfg.HistoryLimit,
	}
}

// Answer runs the full pipeline for one question in one session. It always
// returns a well-formed response: failures in retrieval, generation, or
// persistence degrade to a fixed answer text instead of propagating.
func (s *Service) Answer(ctx context.Context, question, sessionID string) models.ChatResponse {
	if s.store.IsEmpty() {
		return models.ChatResponse{
			Answer:    emptyStoreAnswer,
			Sources:   []models.SourceInfo{},
			SessionID: sessionID,
		}
	}

	searchResults, err := s.store.Search(ctx, question, s.topK)
	if err != nil {
		return s.fail(sessionID, "vector search failed", err)
	}

	history, err := s.sessions.GetRecentHistory(ctx, sessionID, s.historyLimit)
	if err != nil {
		return s.fail(sessionID, "history recall failed", err)
	}

	messages := buildPrompt(question, searchResults, history)

	resp, err := s.llm.ChatCompletion(ctx, messages)
	if err != nil {
		return s.fail(sessionID, "completion failed", err)
	}

	sources := buildSources(searchResults)

	if err := s.sessions.AddMessage(ctx, sessionID, question, resp.Content, sources); err != nil {
		return s.fail(sessionID, "history append failed", err)
	}

	return models.ChatResponse{
		Answer:    resp.Content,
		Sources:   sources,
		SessionID: sessionID,
	}
}

func (s *Service) fail(sessionID, msg string, err error) models.ChatResponse {
	log.Error().Err(err).Str("session_id", sessionID).Msg(msg)
	return models.ChatResponse{
		Answer:    failureAnswer,
		Sources:   []models.SourceInfo{},
		SessionID: sessionID,
	}
}

// buildPrompt assembles the message sequence in the fixed order the model
// must see: instruction, FAQ context, prior turns, current question.
func buildPrompt(question string, context []models.SearchResult, history []models.ChatMessage) []llm.Message {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
	}

	if len(context) > 0 {
		parts := make([]string, 0, len(context))
		for i, result := range context {
			parts = append(parts, fmt.Sprintf("[%d] %s", i+1, result.Content))
		}
		messages = append(messages, llm.Message{
			Role:    llm.RoleSystem,
			Content: "以下はFAQコンテキストです:\n\n" + strings.Join(parts, "\n\n"),
		})
	}

	for _, msg := range history {
		messages = append(messages,
			llm.Message{Role: llm.RoleUser, Content: msg.Question},
			llm.Message{Role: llm.RoleAssistant, Content: msg.Answer},
		)
	}

	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: question})
	return messages
}

// buildSources derives citations from search results, preserving retrieval
// order. ImagePath is copied only for image results.
func buildSources(searchResults []models.SearchResult) []models.SourceInfo {
	sources := make([]models.SourceInfo, 0, len(searchResults))
	for _, r := range searchResults {
		source := models.SourceInfo{
			Content:     r.Content,
			SourceFile:  r.Metadata["source_file"],
			ContentType: r.ContentType,
			Score:       r.Score,
		}
		if r.ContentType == models.ContentTypeImage {
			source.ImagePath = r.Metadata["image_path"]
		}
		sources = append(sources, source)
	}
	return sources
}
