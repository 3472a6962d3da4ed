package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/shfq/lovechat-server/internal/proto"
	"github.com/shfq/lovechat-server/internal/store"
)

const maxHistoryLimit = 200

// MessageHandlers provides REST access to the message history. The window and
// order match the websocket history event.
type MessageHandlers struct {
	store        store.MessageStore
	defaultLimit int
	log          *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(st store.MessageStore, defaultLimit int, logger *zerolog.Logger) *MessageHandlers {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	return &MessageHandlers{
		store:        st,
		defaultLimit: defaultLimit,
		log:          logger,
	}
}

// List returns the most recent messages, oldest first.
// GET /api/messages?limit=N
func (h *MessageHandlers) List(c *gin.Context) {
	limit := h.defaultLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = parsed
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	messages, err := h.store.Recent(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, proto.RecordsFromMessages(messages))
}
