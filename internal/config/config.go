// Package config provides configuration types and loading for botbridge.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration struct.
// Top-level groups: Gateway, BotFramework, Kafka.
type Config struct {
	Gateway      GatewayConfig      `json:"gateway"`
	BotFramework BotFrameworkConfig `json:"botframework"`
	Kafka        KafkaConfig        `json:"kafka"`
}

// ---------------------------------------------------------------------------
// Gateway – HTTP server networking
// ---------------------------------------------------------------------------

// GatewayConfig contains gateway server settings.
type GatewayConfig struct {
	Host        string `json:"host" envconfig:"HOST"`
	Port        int    `json:"port" envconfig:"PORT"`
	WebhookPath string `json:"webhookPath" envconfig:"WEBHOOK_PATH"`
}

// ListenAddr returns the host:port pair the gateway binds to.
func (g GatewayConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", g.Host, g.Port)
}

// ---------------------------------------------------------------------------
// BotFramework – connector credentials and channels
// ---------------------------------------------------------------------------

// BotFrameworkConfig contains Bot Framework connector settings.
type BotFrameworkConfig struct {
	AppID     string `json:"appId" envconfig:"APP_ID"`
	AppSecret string `json:"appSecret" envconfig:"APP_SECRET"`
	// TokenURL overrides the Microsoft login endpoint, mainly for tests.
	TokenURL string `json:"tokenUrl,omitempty" envconfig:"TOKEN_URL"`
	// DedupeTTL bounds how long inbound activity ids are remembered.
	DedupeTTL time.Duration `json:"dedupeTtl" envconfig:"DEDUPE_TTL"`
	// Channels pre-seeds the channel registry so proactive sends work
	// before any inbound traffic has been seen.
	Channels map[string]ChannelSeedConfig `json:"channels,omitempty"`
}

// ChannelSeedConfig describes one pre-registered channel.
type ChannelSeedConfig struct {
	ServiceURL string `json:"serviceUrl"`
	BotID      string `json:"botId"`
	BotName    string `json:"botName,omitempty"`
}

// EmulatorMode reports whether the connector runs without credentials.
func (b BotFrameworkConfig) EmulatorMode() bool {
	return strings.TrimSpace(b.AppID) == "" || strings.TrimSpace(b.AppSecret) == ""
}

// ---------------------------------------------------------------------------
// Kafka – message bus bridging
// ---------------------------------------------------------------------------

// KafkaConfig contains settings for the Kafka leg of the bridge.
type KafkaConfig struct {
	Enabled       bool   `json:"enabled" envconfig:"ENABLED"`
	Brokers       string `json:"brokers" envconfig:"BROKERS"`
	InboundTopic  string `json:"inboundTopic" envconfig:"INBOUND_TOPIC"`
	OutboundTopic string `json:"outboundTopic" envconfig:"OUTBOUND_TOPIC"`
	ConsumerGroup string `json:"consumerGroup" envconfig:"CONSUMER_GROUP"`
}

// BrokerList splits the comma-separated broker string.
func (k KafkaConfig) BrokerList() []string {
	parts := strings.Split(k.Brokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Gateway: GatewayConfig{
			Host:        "127.0.0.1", // Secure default
			Port:        3978,
			WebhookPath: "/botframework",
		},
		BotFramework: BotFrameworkConfig{
			DedupeTTL: 10 * time.Minute,
		},
		Kafka: KafkaConfig{
			Enabled:       false,
			Brokers:       "localhost:9092",
			InboundTopic:  "botbridge.inbound",
			OutboundTopic: "botbridge.outbound",
			ConsumerGroup: "botbridge",
		},
	}
}

// Validate checks invariants that cannot be expressed in the types.
func (c *Config) Validate() error {
	if c.Gateway.Port <= 0 || c.Gateway.Port > 65535 {
		return fmt.Errorf("gateway.port %d out of range", c.Gateway.Port)
	}
	if !strings.HasPrefix(c.Gateway.WebhookPath, "/") {
		return fmt.Errorf("gateway.webhookPath %q must start with /", c.Gateway.WebhookPath)
	}
	if c.Kafka.Enabled && len(c.Kafka.BrokerList()) == 0 {
		return fmt.Errorf("kafka.brokers must not be empty when kafka is enabled")
	}
	for id, seed := range c.BotFramework.Channels {
		if strings.TrimSpace(seed.ServiceURL) == "" {
			return fmt.Errorf("botframework.channels[%s].serviceUrl must not be empty", id)
		}
	}
	return nil
}
