package store

import (
	"context"
	"time"
)

// Message represents a persisted chat message. Exactly one of Text/ImageURL is
// expected to be set by well-behaved clients; empty string means absent.
type Message struct {
	ID        int64
	Text      string
	ImageURL  string
	Sender    string
	CreatedAt time.Time
}

// MessageStore handles message persistence.
//
// Implementations must serialize concurrent Append calls for id assignment: ids
// are contiguous, strictly increasing, and never reused, and reading messages
// in id order is the same as reading them in creation order.
type MessageStore interface {
	// Append persists a new message, assigns its id and creation time, and
	// returns the full persisted record.
	Append(ctx context.Context, text, imageURL, sender string) (*Message, error)

	// Recent returns at most limit of the most recently created messages,
	// ordered ascending by id (oldest of the window first).
	Recent(ctx context.Context, limit int) ([]*Message, error)

	// Close closes the underlying database connection.
	Close() error
}
