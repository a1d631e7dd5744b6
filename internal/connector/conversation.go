package connector

import (
	"fmt"
	"net/url"
	"strings"
)

// ConversationRef captures the addressing of one conversation: everything
// needed to derive the endpoints replies and proactive sends are POSTed to.
// Constructed once per inbound activity or provisioned conversation, never
// mutated afterwards.
type ConversationRef struct {
	ServiceURL   string              `json:"serviceUrl"`
	Conversation ConversationAccount `json:"conversation"`
	ActivityID   string              `json:"id"`
	From         ChannelAccount      `json:"from"`
}

// NewConversationRef validates the envelope fields required for outbound
// addressing and wraps them.
func NewConversationRef(act *Activity) (*ConversationRef, error) {
	switch {
	case act.Conversation == nil || act.Conversation.ID == "":
		return nil, &MalformedActivityError{Field: "conversation.id"}
	case act.ID == "":
		return nil, &MalformedActivityError{Field: "id"}
	case act.ServiceURL == "":
		return nil, &MalformedActivityError{Field: "serviceUrl"}
	case act.From == nil:
		return nil, &MalformedActivityError{Field: "from"}
	}
	return &ConversationRef{
		ServiceURL:   act.ServiceURL,
		Conversation: *act.Conversation,
		ActivityID:   act.ID,
		From:         *act.From,
	}, nil
}

// ConversationID returns the platform-assigned conversation id.
func (r *ConversationRef) ConversationID() string {
	return r.Conversation.ID
}

// ReplyURL is the activity-scoped endpoint replies are POSTed to.
func (r *ConversationRef) ReplyURL() string {
	return fmt.Sprintf("%s/v3/conversations/%s/activities/%s",
		strings.TrimRight(r.ServiceURL, "/"),
		url.PathEscape(r.Conversation.ID),
		url.PathEscape(r.ActivityID))
}

// SendURL is the conversation-scoped endpoint proactive sends are POSTed to.
func (r *ConversationRef) SendURL() string {
	return fmt.Sprintf("%s/v3/conversations/%s/activities",
		strings.TrimRight(r.ServiceURL, "/"),
		url.PathEscape(r.Conversation.ID))
}
