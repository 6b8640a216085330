// Package vectorstore persists FAQ chunks and image documents in a
// chromem-go collection and answers cosine-similarity queries over them.
// Embedding generation is the store's job: the collection carries an
// embedding function and embeds both documents and queries with it.
package vectorstore

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"

	"faq-chatbot/internal/models"
)

// Store wraps a chromem-go collection. Re-adding an existing document id
// overwrites the stored document (chromem de-duplicates by id); deletion is
// only possible via Reset.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	name       string
	embed      chromem.EmbeddingFunc
}

// New opens a file-backed store under persistDir.
func New(persistDir, collectionName string, embed chromem.EmbeddingFunc) (*Store, error) {
	db, err := chromem.NewPersistentDB(persistDir, false)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}
	return open(db, collectionName, embed)
}

// NewInMemory creates a store that lives only for the process lifetime.
func NewInMemory(collectionName string, embed chromem.EmbeddingFunc) (*Store, error) {
	return open(chromem.NewDB(), collectionName, embed)
}

func open(db *chromem.DB, collectionName string, embed chromem.EmbeddingFunc) (*Store, error) {
	c, err := db.GetOrCreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}
	return &Store{db: db, collection: c, name: collectionName, embed: embed}, nil
}

// AddChunks stores FAQ text chunks. No-op on empty input.
func (s *Store) AddChunks(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	docs := make([]chromem.Document, 0, len(chunks))
	for _, c := range chunks {
		docs = append(docs, chromem.Document{
			ID:      c.ChunkID,
			Content: c.Text,
			Metadata: map[string]string{
				"source_file":     c.Metadata.SourceFile,
				"sheet_name":      c.Metadata.SheetName,
				"row_number":      strconv.Itoa(c.Metadata.RowNumber),
				"parent_category": c.Metadata.ParentCategory,
				"child_category":  c.Metadata.ChildCategory,
				"title":           c.Metadata.Title,
				"content_type":    string(models.ContentTypeText),
			},
		})
	}
	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

// AddImageDocuments stores image descriptions. The description text is what
// gets embedded; image_path metadata lets callers surface the image itself.
func (s *Store) AddImageDocuments(ctx context.Context, imageDocs []models.ImageDocument) error {
	if len(imageDocs) == 0 {
		return nil
	}
	docs := make([]chromem.Document, 0, len(imageDocs))
	for _, d := range imageDocs {
		docs = append(docs, chromem.Document{
			ID:      d.DocID,
			Content: d.Description,
			Metadata: map[string]string{
				"image_path":   d.Metadata.ImagePath,
				"source_file":  d.Metadata.SourceFile,
				"description":  d.Description,
				"content_type": string(models.ContentTypeImage),
			},
		})
	}
	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

// Search embeds the query with the collection's embedding function and
// returns up to min(topK, Count()) nearest documents, nearest first. The
// score is the cosine similarity reported by the index, i.e. exactly
// 1 - cosine distance for the normalized vectors chromem stores.
func (s *Store) Search(ctx context.Context, queryText string, topK int) ([]models.SearchResult, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}

	effectiveK := topK
	if count < effectiveK {
		effectiveK = count
	}

	results, err := s.collection.Query(ctx, queryText, effectiveK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	searchResults := make([]models.SearchResult, 0, len(results))
	for _, r := range results {
		contentType := models.ContentTypeText
		if ct, ok := r.Metadata["content_type"]; ok && ct != "" {
			contentType = models.ContentType(ct)
		}
		searchResults = append(searchResults, models.SearchResult{
			Content:     r.Content,
			Score:       r.Similarity,
			Metadata:    r.Metadata,
			ContentType: contentType,
		})
	}
	return searchResults, nil
}

// IsEmpty reports whether the store holds no documents.
func (s *Store) IsEmpty() bool {
	return s.collection.Count() == 0
}

// Count returns the number of stored documents.
func (s *Store) Count() int {
	return s.collection.Count()
}

// Reset drops and recreates the collection. This is the only deletion path;
// there is no per-document delete.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.db.DeleteCollection(s.name); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	c, err := s.db.GetOrCreateCollection(s.name, nil, s.embed)
	if err != nil {
		return fmt.Errorf("failed to recreate collection: %w", err)
	}
	s.collection = c
	return nil
}
