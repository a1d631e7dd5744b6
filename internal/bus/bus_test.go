package bus

import (
	"context"
	"testing"
	"time"
)

func TestPublishConsumeInbound(t *testing.T) {
	b := NewMessageBus()
	b.PublishInbound(&InboundMessage{Channel: "msteams", SenderID: "u1", Content: "hello"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msg, err := b.ConsumeInbound(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Channel != "msteams" || msg.Content != "hello" {
		t.Fatalf("message = %+v", msg)
	}
	if msg.Timestamp.IsZero() {
		t.Fatal("expected publish to stamp the message")
	}
}

func TestConsumeInboundHonorsContext(t *testing.T) {
	b := NewMessageBus()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := b.ConsumeInbound(ctx); err == nil {
		t.Fatal("expected error on cancelled context")
	}
}

func TestDispatchOutboundRoutesBySubscription(t *testing.T) {
	b := NewMessageBus()
	teams := make(chan *OutboundMessage, 1)
	all := make(chan *OutboundMessage, 2)
	b.Subscribe("msteams", func(msg *OutboundMessage) { teams <- msg })
	b.Subscribe("", func(msg *OutboundMessage) { all <- msg })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.DispatchOutbound(ctx)

	b.PublishOutbound(&OutboundMessage{Channel: "msteams", UserID: "u1", Content: "hi"})
	b.PublishOutbound(&OutboundMessage{Channel: "slack", UserID: "u2", Content: "yo"})

	select {
	case msg := <-teams:
		if msg.UserID != "u1" {
			t.Fatalf("msteams subscriber got %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("msteams subscriber never called")
	}

	for i := 0; i < 2; i++ {
		select {
		case <-all:
		case <-time.After(time.Second):
			t.Fatalf("wildcard subscriber saw %d messages, want 2", i)
		}
	}
}
