package core

import "github.com/shfq/lovechat-server/internal/store"

// EventKind is a notification the relay emits to clients.
type EventKind int

const (
	// EventHistory delivers the recent-message backfill to a newly connected client.
	EventHistory EventKind = iota
	// EventMessage notifies clients about a newly persisted chat message.
	EventMessage
	// EventError notifies the originating client about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind    EventKind
	Message *store.Message
	History []*store.Message // For EventHistory
	Error   *CoreError       // For EventError
}
