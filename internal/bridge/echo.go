package bridge

import (
	"context"

	"github.com/botbridge/botbridge/internal/bus"
)

// Echo replies to every inbound message with its own body. Development aid
// for emulator-mode runs without a Kafka deployment.
type Echo struct {
	bus *bus.MessageBus
}

func NewEcho(b *bus.MessageBus) *Echo {
	return &Echo{bus: b}
}

func (e *Echo) Run(ctx context.Context) error {
	for {
		msg, err := e.bus.ConsumeInbound(ctx)
		if err != nil {
			return err
		}
		e.bus.PublishOutbound(&bus.OutboundMessage{
			Channel: msg.Channel,
			UserID:  msg.SenderID,
			Content: msg.Content,
		})
	}
}
