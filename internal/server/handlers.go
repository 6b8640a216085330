package server

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"faq-chatbot/internal/helper"
	"faq-chatbot/internal/models"
)

const sessionNotFoundMessage = "セッションが見つかりません"

// handleChat answers one question within one session. Validation failures
// are 422; everything past validation is always a 200 with a well-formed
// ChatResponse (the pipeline degrades internally instead of erroring).
func (s *Server) handleChat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	resp := s.chat.Answer(c.Request.Context(), req.Question, req.SessionID)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCreateSession(c *gin.Context) {
	sessionID, err := s.sessions.CreateSession(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to create session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": sessionID})
}

func (s *Server) handleListSessions(c *gin.Context) {
	sessions, err := s.sessions.GetAllSessions(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list sessions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sessions"})
		return
	}
	if sessions == nil {
		sessions = []models.SessionSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// handleSessionHistory returns the full message log of one session. The
// store cannot distinguish absent from empty by history alone, so absence is
// checked explicitly for the 404.
func (s *Server) handleSessionHistory(c *gin.Context) {
	sessionID := c.Param("id")

	exists, err := s.sessions.Exists(c.Request.Context(), sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to check session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load session"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": sessionNotFoundMessage})
		return
	}

	messages, err := s.sessions.GetFullHistory(c.Request.Context(), sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to load history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"messages":   messages,
	})
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	sessionID := c.Param("id")

	deleted, err := s.sessions.DeleteSession(c.Request.Context(), sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to delete session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete session"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": sessionNotFoundMessage})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "セッションを削除しました",
	})
}

func (s *Server) handleIngest(c *gin.Context) {
	result := s.etl.IngestAll(c.Request.Context())
	c.JSON(http.StatusOK, result)
}

// handleUpload saves an uploaded file into the matching data directory and
// ingests it immediately.
func (s *Server) handleUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file: " + err.Error()})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	var fileType, destDir string
	switch ext {
	case ".xlsx":
		fileType = "excel"
		destDir = s.cfg.Data.FAQDir
	case ".png", ".jpg", ".jpeg":
		fileType = "image"
		destDir = s.cfg.Data.ImageDir
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "サポートされていないファイル形式です: " + ext + "。対応形式: .xlsx, .png, .jpg, .jpeg",
		})
		return
	}

	if err := helper.CreateFolder(destDir); err != nil {
		log.Error().Err(err).Str("dir", destDir).Msg("failed to create data dir")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}
	destPath := filepath.Join(destDir, filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, destPath); err != nil {
		log.Error().Err(err).Str("path", destPath).Msg("failed to save upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}

	var result models.IngestResult
	if fileType == "excel" {
		result = s.etl.IngestExcel(c.Request.Context(), destPath)
	} else {
		result = s.etl.IngestImages(c.Request.Context(), destDir)
	}

	c.JSON(http.StatusOK, gin.H{
		"filename":      filepath.Base(file.Filename),
		"file_type":     fileType,
		"ingest_result": result,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "FAQ Chatbot is running",
	})
}
