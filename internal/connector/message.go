package connector

import "context"

// Message is the normalized representation exchanged with the host. The
// connector only fills From/To/Conversation and the body; routing, persistence
// and command dispatch belong to the host.
type Message struct {
	ID           string
	Channel      string
	Body         string
	From         Identity
	To           Identity
	Conversation *ConversationRef
}

// Host receives normalized inbound messages and lifecycle notifications from
// the connector.
type Host interface {
	OnMessage(ctx context.Context, msg *Message)
	OnConnect()
	OnDisconnect()
}
