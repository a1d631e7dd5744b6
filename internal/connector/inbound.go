package connector

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// HandleWebhook terminates the Bot Framework webhook. GET and OPTIONS always
// succeed with no body semantics: platforms use them as a liveness probe.
func (c *Connector) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var act Activity
	if err := json.NewDecoder(r.Body).Decode(&act); err != nil {
		c.noteInboundRejected()
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := c.HandleActivity(r.Context(), &act); err != nil {
		var malformed *MalformedActivityError
		if errors.As(err, &malformed) {
			c.noteInboundRejected()
			http.Error(w, malformed.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
}

// HandleStatus reports connector counters and channel state.
func (c *Connector) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok":            true,
		"stats":         c.Stats(),
		"channels":      c.registry.Len(),
		"token_cached":  c.TokenCached(),
		"emulator_mode": c.emulator,
	})
}

// HandleActivity dispatches one inbound envelope by activity type. Message
// activities flow to the host; conversation and contact-relation updates only
// refresh channel registration; anything else is dropped.
func (c *Connector) HandleActivity(ctx context.Context, act *Activity) error {
	slog.Debug("inbound activity", "type", act.Type, "channel", act.ChannelID)
	switch act.Type {
	case ActivityMessage:
		return c.handleMessage(ctx, act)
	case ActivityConversationUpdate, ActivityContactRelationUpdate:
		c.handleChannelUpdate(act)
		return nil
	default:
		return nil
	}
}

func validateMessageEnvelope(act *Activity) error {
	switch {
	case act.ChannelID == "":
		return &MalformedActivityError{Field: "channelId"}
	case act.From == nil:
		return &MalformedActivityError{Field: "from"}
	case act.Recipient == nil:
		return &MalformedActivityError{Field: "recipient"}
	case act.Conversation == nil || act.Conversation.ID == "":
		return &MalformedActivityError{Field: "conversation.id"}
	case act.ID == "":
		return &MalformedActivityError{Field: "id"}
	case act.ServiceURL == "":
		return &MalformedActivityError{Field: "serviceUrl"}
	}
	return nil
}

func (c *Connector) handleMessage(ctx context.Context, act *Activity) error {
	if err := validateMessageEnvelope(act); err != nil {
		return err
	}
	if c.seenActivity(act.ChannelID+":"+act.ID, time.Now()) {
		c.noteInboundDeduped()
		return nil
	}

	ref, err := NewConversationRef(act)
	if err != nil {
		return err
	}
	from := ParseIdentity(act.From, act.ChannelID)
	to := ParseIdentity(act.Recipient, act.ChannelID)
	msg := &Message{
		ID:           uuid.NewString(),
		Channel:      act.ChannelID,
		Body:         act.Text,
		From:         from,
		To:           to,
		Conversation: ref,
	}

	// Group conversations are not routable back per-user; skip registration
	// and caching but still surface the message.
	if !act.Conversation.IsGroup {
		c.registry.UpsertChannel(act.ChannelID, act.ServiceURL, &to)
		if err := c.registry.CacheConversation(act.ChannelID, from.ID, ref); err != nil {
			return err
		}
	}

	c.sendFeedback(ctx, msg)
	c.noteInboundHandled()
	if c.host != nil {
		c.host.OnMessage(ctx, msg)
	}
	return nil
}

// handleChannelUpdate refreshes channel registration from lifecycle
// activities. No message callback, no feedback.
func (c *Connector) handleChannelUpdate(act *Activity) {
	if act.ChannelID == "" || act.ServiceURL == "" {
		return
	}
	var bot *Identity
	if act.Recipient != nil {
		id := ParseIdentity(act.Recipient, act.ChannelID)
		bot = &id
	}
	c.registry.UpsertChannel(act.ChannelID, act.ServiceURL, bot)
}

// sendFeedback posts a typing indicator back on the inbound conversation.
// Failures are logged and swallowed: feedback never fails the webhook.
func (c *Connector) sendFeedback(ctx context.Context, msg *Message) {
	act, err := c.dispatcher.BuildFeedback(msg)
	if err != nil {
		slog.Warn("cannot determine conversation for feedback", "channel", msg.Channel)
		return
	}
	if err := c.dispatcher.Send(ctx, act); err != nil {
		slog.Warn("typing feedback failed", "channel", msg.Channel, "error", err)
		return
	}
	c.noteFeedbackSent()
}
