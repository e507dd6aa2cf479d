package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"sitebot/internal/domain"

	_ "modernc.org/sqlite"
)

// SQLite persists processed messages with their classification.
type SQLite struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLite(dbPath string, logger *slog.Logger) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Single connection for SQLite
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLite{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		sender         TEXT NOT NULL,
		type           TEXT NOT NULL,
		body           TEXT NOT NULL,
		category       TEXT NOT NULL,
		confidence     TEXT NOT NULL,
		classified_ok  INTEGER NOT NULL DEFAULT 0,
		model          TEXT,
		raw_response   TEXT,
		error          TEXT,
		created_at     DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_messages_category ON messages(category, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLite) SaveMessage(ctx context.Context, msg domain.ParsedMessage, classification domain.ClassificationResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (sender, type, body, category, confidence, classified_ok, model, raw_response, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.From, string(msg.Type), msg.Body,
		string(classification.Category), string(classification.Confidence),
		classification.Success, classification.ModelUsed, classification.RawResponse, classification.Error,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// Count reports how many messages have been stored.
func (s *SQLite) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&n)
	return n, err
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
