package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faq-chatbot/internal/config"
	"faq-chatbot/internal/models"
)

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Data: config.DataConfig{
			FAQDir:   t.TempDir(),
			ImageDir: t.TempDir(),
		},
	}
	ingestor := &fakeIngestor{
		result: models.IngestResult{TotalProcessed: 1, Details: "FAQ_IT.xlsx: 1件のチャンクを取り込み"},
	}
	router := New(&fakeAnswerer{}, &fakeSessionStore{}, ingestor, cfg).Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "FAQ_IT.xlsx", []byte("binary")))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Filename     string              `json:"filename"`
		FileType     string              `json:"file_type"`
		IngestResult models.IngestResult `json:"ingest_result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "FAQ_IT.xlsx", resp.Filename)
	assert.Equal(t, "excel", resp.FileType)
	assert.Equal(t, 1, resp.IngestResult.TotalProcessed)

	// The file landed in the FAQ data dir.
	_, err := os.Stat(filepath.Join(cfg.Data.FAQDir, "FAQ_IT.xlsx"))
	assert.NoError(t, err)
}

func TestUploadEndpointImage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Data: config.DataConfig{
			FAQDir:   t.TempDir(),
			ImageDir: t.TempDir(),
		},
	}
	router := New(&fakeAnswerer{}, &fakeSessionStore{}, &fakeIngestor{}, cfg).Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "diagram.png", []byte("png-bytes")))

	require.Equal(t, http.StatusOK, w.Code)
	_, err := os.Stat(filepath.Join(cfg.Data.ImageDir, "diagram.png"))
	assert.NoError(t, err)
}

func TestUploadEndpointUnsupportedType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Data: config.DataConfig{
			FAQDir:   t.TempDir(),
			ImageDir: t.TempDir(),
		},
	}
	router := New(&fakeAnswerer{}, &fakeSessionStore{}, &fakeIngestor{}, cfg).Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "notes.txt", []byte("text")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
