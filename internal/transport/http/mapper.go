package http

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/vovakirdan/roomrelay/internal/core"
	"github.com/vovakirdan/roomrelay/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (core.Command, error) {
	switch inbound.Event {
	case proto.EventJoin:
		room, err := proto.DecodeJoin(inbound.Data)
		if err != nil {
			return core.Command{}, err
		}
		return core.Command{
			Kind: core.CommandJoinRoom,
			Room: room,
		}, nil
	case proto.EventMessage:
		room, text, err := proto.DecodeMessage(inbound.Data)
		if err != nil {
			return core.Command{}, err
		}
		return core.Command{
			Kind: core.CommandSendRoomMessage,
			Room: room,
			Text: text,
		}, nil
	default:
		return core.Command{}, fmt.Errorf("%w: %q", proto.ErrUnknownEvent, inbound.Event)
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventRoomMessage:
		return proto.Outbound{
			Event: proto.EventMessage,
			Data:  toProtoMessage(event.Message),
		}
	case core.EventHistory:
		return proto.Outbound{
			Event: proto.EventMessages,
			Data: proto.Messages{
				Messages: lo.Map(event.Messages, func(m core.Message, _ int) proto.Message {
					return toProtoMessage(m)
				}),
			},
		}
	default:
		return proto.Outbound{}
	}
}

func toProtoMessage(m core.Message) proto.Message {
	return proto.Message{
		Text: m.Text,
		User: m.User,
		Date: m.Date.UTC(),
	}
}
