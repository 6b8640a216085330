// Package server exposes the REST API over gin. Handlers only translate
// between HTTP and the service contracts; all pipeline logic lives in the
// chat, session, and etl packages.
package server

import (
	"context"

	"github.com/gin-gonic/gin"

	"faq-chatbot/internal/config"
	"faq-chatbot/internal/models"
)

// Answerer is the RAG pipeline as seen from the HTTP layer. It never fails:
// degraded answers come back as regular responses.
type Answerer interface {
	Answer(ctx context.Context, question, sessionID string) models.ChatResponse
}

// SessionStore covers the session operations the API serves directly.
type SessionStore interface {
	CreateSession(ctx context.Context) (string, error)
	Exists(ctx context.Context, sessionID string) (bool, error)
	GetFullHistory(ctx context.Context, sessionID string) ([]models.ChatMessage, error)
	GetAllSessions(ctx context.Context) ([]models.SessionSummary, error)
	DeleteSession(ctx context.Context, sessionID string) (bool, error)
}

// Ingestor runs the ETL on demand.
type Ingestor interface {
	IngestAll(ctx context.Context) models.IngestResult
	IngestExcel(ctx context.Context, filePath string) models.IngestResult
	IngestImages(ctx context.Context, directory string) models.IngestResult
}

// Server wires the service dependencies into the gin router. Dependencies
// are injected explicitly; there is no package-level state.
type Server struct {
	chat     Answerer
	sessions SessionStore
	etl      Ingestor
	cfg      *config.Config
}

func New(chat Answerer, sessions SessionStore, etl Ingestor, cfg *config.Config) *Server {
	return &Server{chat: chat, sessions: sessions, etl: etl, cfg: cfg}
}

// Router builds the gin engine with all API routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		api.POST("/chat", s.handleChat)
		api.POST("/session", s.handleCreateSession)
		api.GET("/sessions", s.handleListSessions)
		api.GET("/sessions/:id", s.handleSessionHistory)
		api.DELETE("/sessions/:id", s.handleDeleteSession)
		api.POST("/ingest", s.handleIngest)
		api.POST("/upload", s.handleUpload)
		api.GET("/health", s.handleHealth)
	}
	return router
}
