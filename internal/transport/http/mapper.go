package http

import (
	"github.com/shfq/lovechat-server/internal/core"
	"github.com/shfq/lovechat-server/internal/proto"
)

// outboundFromEvent maps a relay event to its wire envelope.
func outboundFromEvent(ev *core.Event) proto.Outbound {
	switch ev.Kind {
	case core.EventHistory:
		return proto.Outbound{
			Type: proto.OutboundTypeHistory,
			Data: proto.RecordsFromMessages(ev.History),
		}
	case core.EventMessage:
		return proto.Outbound{
			Type: proto.OutboundTypeMessage,
			Data: proto.RecordFromMessage(ev.Message),
		}
	case core.EventError:
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: ev.Error.Code, Msg: ev.Error.Message},
		}
	}
	return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: core.ErrCodeBadRequest, Msg: "unknown event"}}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
