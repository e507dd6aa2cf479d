package store

import (
	"context"
	"log/slog"

	"sitebot/internal/domain"
)

// Log is the stub message store: it records each processed message in the
// log and nothing else.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (s *Log) SaveMessage(_ context.Context, msg domain.ParsedMessage, classification domain.ClassificationResult) error {
	s.logger.Info("message stored",
		"from", msg.From,
		"type", msg.Type,
		"message", msg.Body,
		"category", classification.Category,
	)
	return nil
}

func (s *Log) Close() error { return nil }
