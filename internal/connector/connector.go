package connector

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ChannelSeed pre-registers a channel's routing state before any inbound
// activity has been seen on it.
type ChannelSeed struct {
	ServiceURL string
	BotID      string
	BotName    string
}

// Options configures a Connector.
type Options struct {
	// AppID/AppSecret are the Bot Framework app credentials. Leaving either
	// empty selects emulator mode: no Authorization header is ever attached.
	AppID     string
	AppSecret string
	// TokenURL overrides the identity provider endpoint. Defaults to
	// DefaultTokenURL.
	TokenURL string
	// Client is the HTTP client for all outbound calls. Defaults to a client
	// with a 20s timeout.
	Client *http.Client
	// Host receives normalized inbound messages.
	Host Host
	// Seeds pre-registers channels from static configuration.
	Seeds map[string]ChannelSeed
	// DedupeTTL bounds how long an inbound activity id is remembered.
	// Defaults to 10 minutes.
	DedupeTTL time.Duration
}

// Connector is the Bot Framework half of the bridge: it terminates inbound
// webhooks, tracks per-channel conversation state and delivers outbound
// activities.
type Connector struct {
	registry   *Registry
	tokens     *TokenSource
	dispatcher *Dispatcher
	flow       *Provisioner
	host       Host
	emulator   bool

	dedupeTTL time.Duration
	seenMu    sync.Mutex
	seen      map[string]time.Time

	statsMu sync.Mutex
	stats   Stats
}

func New(opts Options) *Connector {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	emulator := opts.AppID == "" || opts.AppSecret == ""
	var tokens *TokenSource
	if !emulator {
		tokens = NewTokenSource(client, opts.TokenURL, opts.AppID, opts.AppSecret)
	}
	ttl := opts.DedupeTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	registry := NewRegistry()
	for channelID, seed := range opts.Seeds {
		bot := Identity{ID: seed.BotID, Name: seed.BotName, Channel: channelID}
		registry.UpsertChannel(channelID, seed.ServiceURL, &bot)
	}

	return &Connector{
		registry:   registry,
		tokens:     tokens,
		dispatcher: NewDispatcher(client, tokens, emulator),
		flow:       NewProvisioner(registry, client, tokens, emulator),
		host:       opts.Host,
		emulator:   emulator,
		dedupeTTL:  ttl,
		seen:       map[string]time.Time{},
		stats:      Stats{StartedAt: time.Now().UTC()},
	}
}

// EmulatorMode reports whether the connector runs without app credentials.
func (c *Connector) EmulatorMode() bool { return c.emulator }

// Registry exposes the channel table, e.g. for status reporting.
func (c *Connector) Registry() *Registry { return c.registry }

// TokenCached reports whether an unexpired bearer token is held.
func (c *Connector) TokenCached() bool {
	return c.tokens != nil && c.tokens.Cached()
}

// Send delivers an outbound message: a reply when the message carries a
// conversation reference, otherwise a proactive send on a provisioned
// conversation. A missing conversation reference on the reply path is logged
// and the message dropped, matching the connector's inbound-first contract.
func (c *Connector) Send(ctx context.Context, msg *Message) error {
	act, err := c.buildOutbound(ctx, msg)
	if err != nil {
		if errors.Is(err, ErrNoConversation) {
			slog.Warn("cannot determine conversation", "channel", msg.Channel)
			return nil
		}
		c.noteOutbound(err)
		return err
	}
	if err := c.dispatcher.Send(ctx, act); err != nil {
		c.noteOutbound(err)
		return err
	}
	c.noteOutbound(nil)
	return nil
}

func (c *Connector) buildOutbound(ctx context.Context, msg *Message) (*OutboundActivity, error) {
	if msg.Conversation != nil {
		return c.dispatcher.BuildReply(msg)
	}

	ref, err := c.flow.EnsureConversation(ctx, msg.Channel, msg.To.ID)
	if err != nil {
		return nil, err
	}
	ch, ok := c.registry.GetChannel(msg.Channel)
	if !ok {
		return nil, &ChannelUnknownError{ChannelID: msg.Channel}
	}
	proactive := *msg
	proactive.Conversation = ref
	proactive.From = ch.Bot
	proactive.To = ParseIdentity(&ChannelAccount{ID: msg.To.ID}, msg.Channel)
	return c.dispatcher.BuildSend(&proactive)
}

// SendTo routes a plain text body to a channel/user pair. When a conversation
// is cached for the pair the message is framed as a reply on it; otherwise a
// proactive conversation is provisioned.
func (c *Connector) SendTo(ctx context.Context, channelID, userID, body string) error {
	msg := &Message{
		ID:      uuid.NewString(),
		Channel: channelID,
		Body:    body,
		To:      ParseIdentity(&ChannelAccount{ID: userID}, channelID),
	}
	if ref, ok := c.registry.LookupConversation(channelID, userID); ok {
		ch, chOk := c.registry.GetChannel(channelID)
		if chOk {
			from := ref.From
			msg.From = ParseIdentity(&from, channelID)
			msg.To = ch.Bot
			msg.Conversation = ref
		}
	}
	return c.Send(ctx, msg)
}

// seenActivity remembers an inbound activity key for the dedupe TTL and
// reports whether it was already known. Expired entries are pruned on the way.
func (c *Connector) seenActivity(key string, now time.Time) bool {
	if key == "" {
		return false
	}
	c.seenMu.Lock()
	defer c.seenMu.Unlock()
	for k, exp := range c.seen {
		if now.After(exp) {
			delete(c.seen, k)
		}
	}
	if _, ok := c.seen[key]; ok {
		return true
	}
	c.seen[key] = now.Add(c.dedupeTTL)
	return false
}
