// Package connector implements the Bot Framework Connector half of the
// bridge: inbound webhook parsing, per-channel conversation state, the OAuth
// token lifecycle and outbound activity delivery.
package connector

// Activity types the inbound handler distinguishes. Anything else is dropped.
const (
	ActivityMessage               = "message"
	ActivityTyping                = "typing"
	ActivityConversationUpdate    = "conversationUpdate"
	ActivityContactRelationUpdate = "contactRelationUpdate"
)

// ChannelAccount is the wire form of a user or bot on an activity.
type ChannelAccount struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ConversationAccount is the conversation descriptor on an activity envelope.
type ConversationAccount struct {
	ID      string `json:"id"`
	IsGroup bool   `json:"isGroup,omitempty"`
}

// Activity is the inbound webhook envelope. Only the fields the bridge
// consumes are declared.
type Activity struct {
	Type         string               `json:"type"`
	ID           string               `json:"id"`
	ChannelID    string               `json:"channelId"`
	ServiceURL   string               `json:"serviceUrl"`
	From         *ChannelAccount      `json:"from"`
	Recipient    *ChannelAccount      `json:"recipient"`
	Conversation *ConversationAccount `json:"conversation"`
	Text         string               `json:"text,omitempty"`
}

// ActivityPayload is the outbound wire shape shared by replies, proactive
// sends and typing feedback. Field order is fixed so repeated builds of the
// same message marshal to identical bytes.
type ActivityPayload struct {
	Type         string              `json:"type"`
	Conversation ConversationAccount `json:"conversation"`
	From         ChannelAccount      `json:"from"`
	Recipient    *ChannelAccount     `json:"recipient,omitempty"`
	ReplyToID    string              `json:"replyToId"`
	Text         string              `json:"text,omitempty"`
}

// OutboundActivity pairs a payload with the connector URL it is POSTed to.
type OutboundActivity struct {
	URL     string
	Payload ActivityPayload
}
