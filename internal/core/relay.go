package core

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/shfq/lovechat-server/internal/store"
)

// inboundMessage is one chat message event submitted by a transport on behalf
// of a connected client.
type inboundMessage struct {
	client   *Client
	text     string
	imageURL string
	sender   string
}

// Relay turns inbound chat events into persisted, ordered, broadcast messages.
//
// All state transitions run on the single Run goroutine: it owns the registry
// and performs persist-then-broadcast for one message at a time, so the order
// in which the store assigns ids is exactly the order every client observes.
type Relay struct {
	store        store.MessageStore
	registry     *Registry
	log          *zerolog.Logger
	historyLimit int

	register   chan *Client
	unregister chan *Client
	inbound    chan inboundMessage
	done       chan struct{}
}

// NewRelay constructs a relay. The registry is injected so tests can observe
// and prepopulate the connection set.
func NewRelay(st store.MessageStore, registry *Registry, logger *zerolog.Logger, historyLimit int) *Relay {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &Relay{
		store:        st,
		registry:     registry,
		log:          logger,
		historyLimit: historyLimit,
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		inbound:      make(chan inboundMessage, 64),
		done:         make(chan struct{}),
	}
}

// Run processes relay traffic until the context is cancelled. On shutdown all
// remaining clients are unregistered and their event channels closed.
func (r *Relay) Run(ctx context.Context) {
	defer close(r.done)

	for {
		select {
		case c := <-r.register:
			r.handleConnect(ctx, c)

		case c := <-r.unregister:
			if r.registry.Unregister(c.ID) {
				r.log.Info().Str("client_id", c.ID).Int("connected", r.registry.Len()).Msg("client disconnected")
			}

		case in := <-r.inbound:
			r.handleInbound(ctx, in)

		case <-ctx.Done():
			for id := range r.registry.clients {
				r.registry.Unregister(id)
			}
			return
		}
	}
}

// Connect transitions a new connection to active: the relay pushes recent
// history to it and registers it for broadcasts.
func (r *Relay) Connect(c *Client) {
	select {
	case r.register <- c:
	case <-r.done:
	}
}

// Disconnect removes a connection from the registry. Safe to call more than
// once for the same client.
func (r *Relay) Disconnect(c *Client) {
	select {
	case r.unregister <- c:
	case <-r.done:
	}
}

// Send submits an inbound message event from the given client. The relay
// persists it and, on success, broadcasts the stored record to every
// registered client, the sender included.
func (r *Relay) Send(c *Client, text, imageURL, sender string) {
	select {
	case r.inbound <- inboundMessage{client: c, text: text, imageURL: imageURL, sender: sender}:
	case <-r.done:
	}
}

func (r *Relay) handleConnect(ctx context.Context, c *Client) {
	history, err := r.store.Recent(ctx, r.historyLimit)
	if err != nil {
		// Degrade gracefully: the client still joins, just without backfill.
		r.log.Error().Err(err).Str("client_id", c.ID).Msg("failed to load history")
		history = nil
	}

	if !c.trySend(&Event{Kind: EventHistory, History: history}) {
		r.log.Warn().Str("client_id", c.ID).Msg("failed to deliver history")
	}

	r.registry.Register(c)
	r.log.Info().Str("client_id", c.ID).Int("connected", r.registry.Len()).Msg("client connected")
}

func (r *Relay) handleInbound(ctx context.Context, in inboundMessage) {
	if in.sender == "" {
		r.sendError(in.client, coreError(ErrCodeBadRequest, "sender is required"))
		return
	}
	if in.text == "" && in.imageURL == "" {
		r.sendError(in.client, coreError(ErrCodeEmptyMessage, "message needs text or an image"))
		return
	}

	msg, err := r.store.Append(ctx, in.text, in.imageURL, in.sender)
	if err != nil {
		// Persistence failures stay between the relay and the sender; nothing
		// unsaved is ever broadcast.
		r.log.Error().Err(err).Str("client_id", in.client.ID).Str("sender", in.sender).Msg("failed to persist message")
		r.sendError(in.client, coreError(ErrCodePersistenceFailed, "message could not be saved"))
		return
	}

	ev := &Event{Kind: EventMessage, Message: msg}
	for _, stale := range r.registry.Broadcast(ev) {
		r.log.Warn().Str("client_id", stale.ID).Int64("message_id", msg.ID).Msg("dropping undeliverable client")
		r.registry.Unregister(stale.ID)
	}

	r.log.Debug().Int64("message_id", msg.ID).Str("sender", msg.Sender).Msg("message broadcast")
}

func (r *Relay) sendError(c *Client, cerr *CoreError) {
	if !c.trySend(&Event{Kind: EventError, Error: cerr}) {
		r.log.Warn().Str("client_id", c.ID).Str("code", cerr.Code).Msg("failed to deliver error event")
	}
}
