package models

import "time"

// ContentType marks whether a stored document came from FAQ text or an image.
type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeImage ContentType = "image"
)

// FAQEntry is one row read from a FAQ Excel sheet. Only rows whose status is
// 公開 are chunked and indexed.
type FAQEntry struct {
	No             int
	Status         string
	ParentCategory string
	ChildCategory  string
	Title          string
	Body           string
	SourceFile     string
	SheetName      string
	RowNumber      int
}

// ChunkMetadata travels with a chunk into the vector store and comes back as
// source info on search hits.
type ChunkMetadata struct {
	SourceFile     string
	SheetName      string
	RowNumber      int
	ParentCategory string
	ChildCategory  string
	Title          string
	ContentType    ContentType
}

// Chunk is one indexable unit of FAQ text: title + newline + body, plus
// provenance metadata. The ID is a UUID v4 assigned at parse time.
type Chunk struct {
	ChunkID  string
	Text     string
	Metadata ChunkMetadata
}

// ImageMetadata keeps the path so the frontend can render the image when it
// shows up as a source.
type ImageMetadata struct {
	ImagePath   string
	SourceFile  string
	ContentType ContentType
}

// ImageDocument stores an LLM-generated description of an image. Search runs
// against the description text; the image itself stays on disk.
type ImageDocument struct {
	DocID       string
	Description string
	Metadata    ImageMetadata
}

// SearchResult is one vector similarity hit. Score is cosine similarity in
// [0,1], higher is closer.
type SearchResult struct {
	Content     string
	Score       float32
	Metadata    map[string]string
	ContentType ContentType
}

// SourceInfo is the citation form of a SearchResult returned to API callers.
// ImagePath is set only for image sources.
type SourceInfo struct {
	Content     string      `json:"content"`
	SourceFile  string      `json:"source_file"`
	ContentType ContentType `json:"content_type"`
	Score       float32     `json:"score"`
	ImagePath   string      `json:"image_path,omitempty"`
}

// ChatMessage is one question/answer turn in a session's history.
type ChatMessage struct {
	Question  string       `json:"question"`
	Answer    string       `json:"answer"`
	Sources   []SourceInfo `json:"sources"`
	Timestamp time.Time    `json:"timestamp"`
}

// SessionSummary is one row of the session list, newest first.
type SessionSummary struct {
	SessionID    string    `json:"session_id"`
	CreatedAt    time.Time `json:"created_at"`
	MessageCount int       `json:"message_count"`
	LastMessage  string    `json:"last_message"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Question  string `json:"question" binding:"required,min=1"`
	SessionID string `json:"session_id" binding:"required,min=1"`
}

// ChatResponse is the answer returned by the RAG pipeline. It is always
// well-formed: pipeline failures surface as a fixed answer text, never as an
// error.
type ChatResponse struct {
	Answer    string       `json:"answer"`
	Sources   []SourceInfo `json:"sources"`
	SessionID string       `json:"session_id"`
}

// IngestResult summarizes one ETL run.
type IngestResult struct {
	TotalProcessed int    `json:"total_processed"`
	ErrorCount     int    `json:"error_count"`
	Details        string `json:"details"`
}
