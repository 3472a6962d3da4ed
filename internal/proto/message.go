package proto

import (
	"encoding/json"
	"time"

	"github.com/shfq/lovechat-server/internal/store"
)

// Inbound is the envelope for frames coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeMsg = "msg"

	OutboundTypeHistory = "history"
	OutboundTypeMessage = "message"
	OutboundTypeError   = "error"
)

// MsgData is a chat message event from the client. One of Text/ImageURL is
// expected to be set.
type MsgData struct {
	Text     *string `json:"text,omitempty"`
	ImageURL *string `json:"imageUrl,omitempty"`
	Sender   string  `json:"sender"`
}

// Outbound is the envelope for frames sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// MessageRecord is the wire shape of a persisted message. Absent text or
// imageUrl renders as JSON null.
type MessageRecord struct {
	ID        int64     `json:"id"`
	Text      *string   `json:"text"`
	ImageURL  *string   `json:"imageUrl"`
	Sender    string    `json:"sender"`
	CreatedAt time.Time `json:"createdAt"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// RecordFromMessage maps a stored message to its wire shape.
func RecordFromMessage(msg *store.Message) MessageRecord {
	return MessageRecord{
		ID:        msg.ID,
		Text:      optional(msg.Text),
		ImageURL:  optional(msg.ImageURL),
		Sender:    msg.Sender,
		CreatedAt: msg.CreatedAt.UTC(),
	}
}

// RecordsFromMessages maps a history window to its wire shape, preserving order.
func RecordsFromMessages(msgs []*store.Message) []MessageRecord {
	records := make([]MessageRecord, 0, len(msgs))
	for _, msg := range msgs {
		records = append(records, RecordFromMessage(msg))
	}
	return records
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
