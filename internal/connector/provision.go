package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Provisioner creates proactive conversations through the Connector API when
// no cached conversation exists for a channel/user pair.
type Provisioner struct {
	registry *Registry
	client   *http.Client
	tokens   *TokenSource
	emulator bool
}

func NewProvisioner(registry *Registry, client *http.Client, tokens *TokenSource, emulator bool) *Provisioner {
	if client == nil {
		client = http.DefaultClient
	}
	return &Provisioner{registry: registry, client: client, tokens: tokens, emulator: emulator}
}

// EnsureConversation returns the cached conversation for the pair, creating
// one through the Connector API when absent. The registry lock is never held
// across the creation request.
func (p *Provisioner) EnsureConversation(ctx context.Context, channelID, userID string) (*ConversationRef, error) {
	if ref, ok := p.registry.LookupConversation(channelID, userID); ok {
		return ref, nil
	}
	ch, ok := p.registry.GetChannel(channelID)
	if !ok {
		slog.Warn("conversation create on unknown channel", "channel", channelID)
		return nil, &ChannelUnknownError{ChannelID: channelID}
	}

	payload := struct {
		Bot     ChannelAccount   `json:"bot"`
		Members []ChannelAccount `json:"members"`
	}{
		Bot:     ChannelAccount{ID: ch.Bot.ID},
		Members: []ChannelAccount{{ID: userID}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	createURL := fmt.Sprintf("%s/v3/conversations", strings.TrimRight(ch.ServiceURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, createURL, bytes.NewReader(body))
	if err != nil {
		return nil, &ProvisioningError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if !p.emulator {
		tok, err := p.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &ProvisioningError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		slog.Warn("conversation create rejected",
			"channel", channelID, "status", resp.StatusCode, "body", strings.TrimSpace(string(respBody)))
		return nil, &ProvisioningError{Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &ProvisioningError{Err: err}
	}

	// A freshly created proactive conversation has no inbound activity to
	// reply to; the conversation id doubles as the activity id.
	ref := &ConversationRef{
		ServiceURL:   ch.ServiceURL,
		Conversation: ConversationAccount{ID: out.ID},
		ActivityID:   out.ID,
		From:         ChannelAccount{ID: userID, Name: "User"},
	}
	if err := p.registry.CacheConversation(channelID, userID, ref); err != nil {
		return nil, err
	}
	slog.Debug("conversation created", "channel", channelID, "user", userID, "conversation", out.ID)
	return ref, nil
}
