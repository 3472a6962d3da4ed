package core

// Client is one connected chat participant as seen by the relay. The transport
// layer drains Events and writes them to the wire; the relay fills them.
//
// The closed flag and the Events channel are mutated only on the relay
// goroutine; transports must go through Relay methods instead of touching a
// client directly.
type Client struct {
	ID     string
	Events chan *Event

	closed bool
}

// NewClient constructs a client with a buffered event channel. The buffer is
// what keeps one slow consumer from stalling a broadcast: sends never block,
// and a client whose buffer is full is treated as undeliverable.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = 64
	}
	return &Client{
		ID:     id,
		Events: make(chan *Event, buffer),
	}
}

// trySend queues an event without blocking. Returns false when the client has
// been closed or its buffer is full.
func (c *Client) trySend(ev *Event) bool {
	if c.closed {
		return false
	}
	select {
	case c.Events <- ev:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.Events)
}
