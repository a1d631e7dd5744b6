package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/botbridge/botbridge/internal/bus"
)

func TestEchoRepliesWithInboundBody(t *testing.T) {
	b := bus.NewMessageBus()
	out := make(chan *bus.OutboundMessage, 1)
	b.Subscribe("msteams", func(msg *bus.OutboundMessage) { out <- msg })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.DispatchOutbound(ctx)
	go NewEcho(b).Run(ctx)

	b.PublishInbound(&bus.InboundMessage{Channel: "msteams", SenderID: "u1", Content: "hello"})

	select {
	case msg := <-out:
		if msg.UserID != "u1" || msg.Content != "hello" {
			t.Fatalf("echo = %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("echo never produced an outbound message")
	}
}

func TestEchoStopsOnCancel(t *testing.T) {
	b := bus.NewMessageBus()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewEcho(b).Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected context error")
		}
	case <-time.After(time.Second):
		t.Fatal("echo did not stop on cancel")
	}
}
