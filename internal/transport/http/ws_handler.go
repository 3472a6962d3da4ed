package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/shfq/lovechat-server/internal/config"
	"github.com/shfq/lovechat-server/internal/core"
	"github.com/shfq/lovechat-server/internal/proto"
)

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	relay         *core.Relay
	log           *zerolog.Logger
	bufferSize    int
	ratePerMinute int
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(relay *core.Relay, cfg config.Config, logger *zerolog.Logger) stdhttp.Handler {
	ratePerMinute := cfg.MessageRatePerMinute
	if ratePerMinute <= 0 {
		ratePerMinute = 60
	}
	return &WSHandler{
		relay:         relay,
		log:           logger,
		bufferSize:    cfg.ClientBufferSize,
		ratePerMinute: ratePerMinute,
	}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	client := core.NewClient(uuid.NewString(), h.bufferSize)
	h.relay.Connect(client)
	defer h.relay.Disconnect(client)

	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(h.ratePerMinute)), h.ratePerMinute)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client, limiter)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, limiter *rate.Limiter) error {
	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return err
		}

		if inbound.Type != proto.InboundTypeMsg {
			h.log.Debug().Str("client_id", client.ID).Str("frame_type", inbound.Type).Msg("unknown inbound frame")
			if err := writeProtocolError(ctx, conn, core.ErrCodeBadRequest, "unknown frame type"); err != nil {
				return err
			}
			continue
		}

		if !limiter.Allow() {
			h.log.Warn().Str("client_id", client.ID).Msg("inbound message rate limited")
			if err := writeProtocolError(ctx, conn, core.ErrCodeRateLimited, "too many messages, slow down"); err != nil {
				return err
			}
			continue
		}

		var data proto.MsgData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			h.log.Debug().Err(err).Str("client_id", client.ID).Msg("malformed msg frame")
			if err := writeProtocolError(ctx, conn, core.ErrCodeBadRequest, "malformed msg data"); err != nil {
				return err
			}
			continue
		}

		h.relay.Send(client, deref(data.Text), deref(data.ImageURL), data.Sender)
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("client_id", client.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func writeProtocolError(ctx context.Context, conn *websocket.Conn, code, msg string) error {
	return wsjson.Write(ctx, conn, proto.Outbound{
		Type:  proto.OutboundTypeError,
		Error: &proto.Error{Code: code, Msg: msg},
	})
}
