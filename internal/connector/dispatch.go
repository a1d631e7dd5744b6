package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Dispatcher builds outbound connector activities and POSTs them. In emulator
// mode (no app credentials configured) the Authorization header is omitted
// entirely and the token source is never consulted.
type Dispatcher struct {
	client   *http.Client
	tokens   *TokenSource
	emulator bool
}

func NewDispatcher(client *http.Client, tokens *TokenSource, emulator bool) *Dispatcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Dispatcher{client: client, tokens: tokens, emulator: emulator}
}

// BuildReply frames the message as a reply on the conversation it arrived on.
// Replies are framed from the bot's perspective: the payload's from is the
// message's To (the bot) and the original sender becomes the recipient.
func (d *Dispatcher) BuildReply(msg *Message) (*OutboundActivity, error) {
	ref := msg.Conversation
	if ref == nil {
		return nil, ErrNoConversation
	}
	recipient := msg.From.Subject()
	return &OutboundActivity{
		URL: ref.ReplyURL(),
		Payload: ActivityPayload{
			Type:         ActivityMessage,
			Conversation: ref.Conversation,
			From:         msg.To.Subject(),
			Recipient:    &recipient,
			ReplyToID:    ref.Conversation.ID,
			Text:         msg.Body,
		},
	}, nil
}

// BuildSend frames a proactive activity on the conversation's send endpoint.
// No from/recipient swap here: the caller has already set From to the channel
// bot identity.
func (d *Dispatcher) BuildSend(msg *Message) (*OutboundActivity, error) {
	ref := msg.Conversation
	if ref == nil {
		return nil, ErrNoConversation
	}
	recipient := msg.To.Subject()
	return &OutboundActivity{
		URL: ref.SendURL(),
		Payload: ActivityPayload{
			Type:         ActivityMessage,
			Conversation: ref.Conversation,
			From:         msg.From.Subject(),
			Recipient:    &recipient,
			ReplyToID:    ref.Conversation.ID,
			Text:         msg.Body,
		},
	}, nil
}

// BuildFeedback frames a typing indicator on the reply endpoint. No recipient,
// no text.
func (d *Dispatcher) BuildFeedback(msg *Message) (*OutboundActivity, error) {
	ref := msg.Conversation
	if ref == nil {
		return nil, ErrNoConversation
	}
	return &OutboundActivity{
		URL: ref.ReplyURL(),
		Payload: ActivityPayload{
			Type:         ActivityTyping,
			Conversation: ref.Conversation,
			From:         msg.To.Subject(),
			ReplyToID:    ref.Conversation.ID,
		},
	}, nil
}

// Send POSTs the activity to its connector URL, attaching the bearer token
// unless running in emulator mode. Non-2xx responses are logged and surfaced
// as a DeliveryError; there is no retry here.
func (d *Dispatcher) Send(ctx context.Context, act *OutboundActivity) error {
	body, err := json.Marshal(act.Payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, act.URL, bytes.NewReader(body))
	if err != nil {
		return &DeliveryError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if !d.emulator {
		tok, err := d.tokens.Token(ctx)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return &DeliveryError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		slog.Warn("activity send rejected",
			"url", act.URL, "status", resp.StatusCode, "body", strings.TrimSpace(string(respBody)))
		return &DeliveryError{Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	return nil
}
