package bridge

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/botbridge/botbridge/internal/bus"
)

// Sink writes normalized inbound messages to the internal Kafka topic.
type Sink struct {
	writer *kafka.Writer
}

func NewSink(brokers []string, topic string) *Sink {
	return &Sink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// Forward publishes one inbound message, keyed by channel and sender so a
// user's messages land on one partition in order.
func (s *Sink) Forward(ctx context.Context, msg *bus.InboundMessage) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Channel + ":" + msg.SenderID),
		Value: value,
		Time:  msg.Timestamp,
	})
}

func (s *Sink) Close() error {
	return s.writer.Close()
}

// Forwarder drains inbound bus messages into the sink.
type Forwarder struct {
	bus  *bus.MessageBus
	sink *Sink
}

func NewForwarder(b *bus.MessageBus, sink *Sink) *Forwarder {
	return &Forwarder{bus: b, sink: sink}
}

func (f *Forwarder) Run(ctx context.Context) error {
	for {
		msg, err := f.bus.ConsumeInbound(ctx)
		if err != nil {
			return err
		}
		if err := f.sink.Forward(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("inbound forward failed", "channel", msg.Channel, "error", err)
		}
	}
}

// Source consumes outbound messages from Kafka and publishes them on the bus.
type Source struct {
	reader *kafka.Reader
	bus    *bus.MessageBus
}

func NewSource(brokers []string, topic, group string, b *bus.MessageBus) *Source {
	return &Source{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  group,
			MinBytes: 1,
			MaxBytes: 10e6,
		}),
		bus: b,
	}
}

func (s *Source) Run(ctx context.Context) error {
	for {
		m, err := s.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("outbound read error", "error", err)
			continue
		}
		var out bus.OutboundMessage
		if err := json.Unmarshal(m.Value, &out); err != nil {
			slog.Warn("outbound decode error", "offset", m.Offset, "error", err)
			continue
		}
		s.bus.PublishOutbound(&out)
	}
}

func (s *Source) Close() error {
	return s.reader.Close()
}
