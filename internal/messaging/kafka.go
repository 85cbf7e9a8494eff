package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
)

// KafkaPublisher writes events to one topic, keyed by listing ID so that
// the events of a listing stay ordered within a partition.
type KafkaPublisher struct {
	w *kafkaGo.Writer
}

// NewKafkaPublisher creates an asynchronous writer. Delivery failures are
// logged, never returned to the caller.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafkaGo.Writer{
		Addr:     kafkaGo.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafkaGo.Hash{},
		Async:    true,
		Completion: func(messages []kafkaGo.Message, err error) {
			if err != nil {
				slog.Warn("delivering events", "topic", topic, "count", len(messages), "error", err)
			}
		},
	}
	return &KafkaPublisher{w: w}
}

// Publish encodes e as JSON and queues it.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	msg, err := encode(e)
	if err != nil {
		return err
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publishing %s: %w", e.Type, err)
	}
	return nil
}

// Close flushes pending writes.
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

func encode(e Event) (kafkaGo.Message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return kafkaGo.Message{}, fmt.Errorf("encoding %s event: %w", e.Type, err)
	}
	return kafkaGo.Message{
		Key:   []byte(e.ListingID),
		Value: payload,
		Time:  e.OccurredAt,
	}, nil
}

func decode(msg kafkaGo.Message) (Event, error) {
	var e Event
	if err := json.Unmarshal(msg.Value, &e); err != nil {
		return Event{}, fmt.Errorf("decoding event at offset %d: %w", msg.Offset, err)
	}
	return e, nil
}

// Handler processes one consumed event.
type Handler func(ctx context.Context, e Event) error

// Read failures back off from minReadBackoff, doubling up to maxReadBackoff.
const (
	minReadBackoff = 500 * time.Millisecond
	maxReadBackoff = 30 * time.Second
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafkaGo.Message, error)
}

// Consume reads events from topic as part of groupID until ctx is done.
// Handler errors and undecodable messages are logged and skipped.
func Consume(ctx context.Context, brokers []string, topic, groupID string, handle Handler) error {
	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	defer func() {
		if err := reader.Close(); err != nil {
			slog.Warn("closing event reader", "topic", topic, "error", err)
		}
	}()

	return consume(ctx, reader, topic, handle, minReadBackoff)
}

func consume(ctx context.Context, reader messageReader, topic string, handle Handler, backoff time.Duration) error {
	delay := backoff
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("consumer shutting down", "topic", topic)
				return nil
			}
			slog.Error("reading event", "topic", topic, "error", err, "retry_in", delay)
			select {
			case <-ctx.Done():
				slog.Info("consumer shutting down", "topic", topic)
				return nil
			case <-time.After(delay):
			}
			delay = min(delay*2, maxReadBackoff)
			continue
		}
		delay = backoff

		e, err := decode(msg)
		if err != nil {
			slog.Error("skipping event", "topic", topic, "error", err)
			continue
		}
		if err := handle(ctx, e); err != nil {
			slog.Error("handling event", "topic", topic, "type", e.Type, "listing_id", e.ListingID, "error", err)
		}
	}
}
