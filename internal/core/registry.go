package core

// Registry tracks the currently connected clients eligible for broadcast.
//
// Registry is not safe for concurrent use on its own: the relay goroutine owns
// it and serializes every register, unregister, and broadcast. That single
// ownership is what gives each broadcast a consistent snapshot of the
// connection set.
type Registry struct {
	clients map[string]*Client
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]*Client),
	}
}

// Register adds a client. A second registration with the same id replaces the
// previous handle and closes it, so a reconnecting transport never leaves a
// ghost entry behind.
func (r *Registry) Register(c *Client) {
	if old, ok := r.clients[c.ID]; ok && old != c {
		old.close()
	}
	r.clients[c.ID] = c
}

// Unregister removes a client by id and closes its event channel. Calling it
// again for the same id is a no-op; it reports whether a client was removed.
func (r *Registry) Unregister(id string) bool {
	c, ok := r.clients[id]
	if !ok {
		return false
	}
	delete(r.clients, id)
	c.close()
	return true
}

// Len returns the number of registered clients.
func (r *Registry) Len() int {
	return len(r.clients)
}

// Broadcast delivers an event to every registered client. A client that cannot
// accept the event (closed transport or full buffer) never aborts delivery to
// the rest; such clients are returned so the caller can drop them.
func (r *Registry) Broadcast(ev *Event) []*Client {
	var failed []*Client
	for _, c := range r.clients {
		if !c.trySend(ev) {
			failed = append(failed, c)
		}
	}
	return failed
}
