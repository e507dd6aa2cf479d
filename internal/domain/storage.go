package domain

import "context"

// MessageStore persists each processed message with its classification.
type MessageStore interface {
	SaveMessage(ctx context.Context, msg ParsedMessage, classification ClassificationResult) error
	Close() error
}
