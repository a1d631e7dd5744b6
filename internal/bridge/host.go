// Package bridge adapts the connector to the internal message bus: a
// bus-backed host for inbound messages, a Kafka leg for production runs and
// an echo responder for local development.
package bridge

import (
	"context"
	"log/slog"

	"github.com/botbridge/botbridge/internal/bus"
	"github.com/botbridge/botbridge/internal/connector"
)

// BusHost publishes normalized inbound messages on the message bus.
type BusHost struct {
	bus *bus.MessageBus
}

func NewBusHost(b *bus.MessageBus) *BusHost {
	return &BusHost{bus: b}
}

func (h *BusHost) OnMessage(_ context.Context, msg *connector.Message) {
	h.bus.PublishInbound(&bus.InboundMessage{
		ID:         msg.ID,
		Channel:    msg.Channel,
		SenderID:   msg.From.ID,
		SenderName: msg.From.Name,
		ChatID:     conversationID(msg),
		ActivityID: activityID(msg),
		Content:    msg.Body,
	})
}

func (h *BusHost) OnConnect() {
	slog.Info("host connected")
}

func (h *BusHost) OnDisconnect() {
	slog.Info("host disconnected")
}

func conversationID(msg *connector.Message) string {
	if msg.Conversation == nil {
		return ""
	}
	return msg.Conversation.ConversationID()
}

func activityID(msg *connector.Message) string {
	if msg.Conversation == nil {
		return ""
	}
	return msg.Conversation.ActivityID
}
