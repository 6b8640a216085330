// Package session keeps the per-session chat history: an append-only log of
// question/answer/source triples in Postgres, keyed by a UUID session id.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"faq-chatbot/internal/helper"
	"faq-chatbot/internal/models"
)

// ErrSessionNotFound is returned by AddMessage when the target session does
// not exist. Sessions must be created before use.
var ErrSessionNotFound = errors.New("session not found")

// emptySessionPreview is shown in the session list for sessions without
// messages.
const emptySessionPreview = "新しいチャット"

const previewLimit = 50

type sessionRecord struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`
	SessionID     string    `bun:"session_id,pk"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
}

type messageRecord struct {
	bun.BaseModel `bun:"table:chat_messages,alias:m"`
	ID            int64               `bun:"id,pk,autoincrement"`
	SessionID     string              `bun:"session_id,notnull"`
	Question      string              `bun:"question,notnull"`
	Answer        string              `bun:"answer,notnull"`
	Sources       []models.SourceInfo `bun:"sources,type:jsonb"`
	Timestamp     time.Time           `bun:"timestamp,notnull"`
}

// Store provides session CRUD and history lookups over bun. Message order is
// insertion order (autoincrement id), so history reads are reproducible.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// Connect opens a Postgres connection for the session store.
func Connect(dsn string, debug bool) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return NewDB(sqldb, debug)
}

// NewDB wraps an sql.DB with bun. Debug enables query logging.
func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// Init creates the session tables if they do not exist.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*sessionRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	if _, err := s.db.NewCreateTable().Model((*messageRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create chat_messages table: %w", err)
	}
	return nil
}

// CreateSession persists a fresh empty session and returns its id.
func (s *Store) CreateSession(ctx context.Context) (string, error) {
	sessionID, err := helper.GenerateUUID()
	if err != nil {
		return "", err
	}
	rec := &sessionRecord{
		SessionID: sessionID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.db.NewInsert().Model(rec).Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return sessionID, nil
}

// Exists reports whether a session record exists, distinguishing an absent
// session from one that merely has no messages yet.
func (s *Store) Exists(ctx context.Context, sessionID string) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*sessionRecord)(nil)).
		Where("session_id = ?", sessionID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	return exists, nil
}

// AddMessage appends one question/answer turn with a server-assigned
// timestamp. Session existence is a checked precondition: appending to a
// missing session returns ErrSessionNotFound instead of silently writing
// nothing.
func (s *Store) AddMessage(ctx context.Context, sessionID, question, answer string, sources []models.SourceInfo) error {
	exists, err := s.Exists(ctx, sessionID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if sources == nil {
		sources = []models.SourceInfo{}
	}
	rec := &messageRecord{
		SessionID: sessionID,
		Question:  question,
		Answer:    answer,
		Sources:   sources,
		Timestamp: time.Now().UTC(),
	}
	if _, err := s.db.NewInsert().Model(rec).Exec(ctx); err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// GetRecentHistory returns the last min(n, count) messages oldest-first.
// A missing session yields an empty slice, not an error.
func (s *Store) GetRecentHistory(ctx context.Context, sessionID string, n int) ([]models.ChatMessage, error) {
	var recs []messageRecord
	err := s.db.NewSelect().
		Model(&recs).
		Where("session_id = ?", sessionID).
		OrderExpr("id DESC").
		Limit(n).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	// Reverse the newest-first page back into insertion order.
	messages := make([]models.ChatMessage, 0, len(recs))
	for i := len(recs) - 1; i >= 0; i-- {
		messages = append(messages, recordToMessage(recs[i]))
	}
	return messages, nil
}

// GetFullHistory returns every message of a session oldest-first, or an
// empty slice if the session does not exist.
func (s *Store) GetFullHistory(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	var recs []messageRecord
	err := s.db.NewSelect().
		Model(&recs).
		Where("session_id = ?", sessionID).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	messages := make([]models.ChatMessage, 0, len(recs))
	for _, rec := range recs {
		messages = append(messages, recordToMessage(rec))
	}
	return messages, nil
}

// GetAllSessions lists every session newest-first with a message count and a
// preview of the last question, truncated to 50 runes.
func (s *Store) GetAllSessions(ctx context.Context) ([]models.SessionSummary, error) {
	var sessions []sessionRecord
	err := s.db.NewSelect().
		Model(&sessions).
		OrderExpr("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	summaries := make([]models.SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		count, err := s.db.NewSelect().
			Model((*messageRecord)(nil)).
			Where("session_id = ?", sess.SessionID).
			Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count messages: %w", err)
		}

		lastMessage := emptySessionPreview
		if count > 0 {
			var last messageRecord
			err := s.db.NewSelect().
				Model(&last).
				Column("question").
				Where("session_id = ?", sess.SessionID).
				OrderExpr("id DESC").
				Limit(1).
				Scan(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to load last message: %w", err)
			}
			lastMessage = truncatePreview(last.Question)
		}

		summaries = append(summaries, models.SessionSummary{
			SessionID:    sess.SessionID,
			CreatedAt:    sess.CreatedAt,
			MessageCount: count,
			LastMessage:  lastMessage,
		})
	}
	return summaries, nil
}

// DeleteSession removes a session and all its messages. It reports whether a
// session record was actually deleted.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) (bool, error) {
	if _, err := s.db.NewDelete().
		Model((*messageRecord)(nil)).
		Where("session_id = ?", sessionID).
		Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to delete messages: %w", err)
	}

	res, err := s.db.NewDelete().
		Model((*sessionRecord)(nil)).
		Where("session_id = ?", sessionID).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func recordToMessage(rec messageRecord) models.ChatMessage {
	sources := rec.Sources
	if sources == nil {
		sources = []models.SourceInfo{}
	}
	return models.ChatMessage{
		Question:  rec.Question,
		Answer:    rec.Answer,
		Sources:   sources,
		Timestamp: rec.Timestamp,
	}
}

func truncatePreview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLimit {
		return text
	}
	return string(runes[:previewLimit]) + "..."
}
