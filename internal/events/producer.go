package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	// HeaderEventType and HeaderEventID let consumers route without
	// deserializing the body.
	HeaderEventType = "event-type"
	HeaderEventID   = "event-id"

	publishRetries      = 5
	publishInitialDelay = 300 * time.Millisecond
)

// Producer publishes versioned event envelopes to the shared stream with
// at-least-once semantics. Transient broker errors are retried with
// exponential backoff up to publishRetries attempts; callers decide whether
// exhaustion is fatal (for presence and message writes it never is — the
// durable store is the authority and the bus is an accelerator).
type Producer struct {
	js jetstream.JetStream
}

func NewProducer(ctx context.Context, nc *nats.Conn) (*Producer, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	if err := EnsureStream(ctx, js); err != nil {
		return nil, err
	}
	return &Producer{js: js}, nil
}

// Publish wraps payload into an Event and sends it to topic, keyed by the
// payload's partition key. Events sharing a partition key are delivered in
// publish order; no ordering holds across keys or topics.
func (p *Producer) Publish(ctx context.Context, topic, eventType string, payload Payload) error {
	evt, err := NewEvent(eventType, payload)
	if err != nil {
		return err
	}

	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &nats.Msg{
		Subject: subjectFor(topic, payload.PartitionKey()),
		Data:    body,
		Header: nats.Header{
			HeaderEventType: []string{eventType},
			HeaderEventID:   []string{evt.EventID},
		},
	}

	delay := publishInitialDelay
	for attempt := 1; ; attempt++ {
		_, err = p.js.PublishMsg(ctx, msg)
		if err == nil {
			slog.Debug("Published event", "topic", topic, "eventType", eventType, "eventId", evt.EventID)
			return nil
		}
		if attempt >= publishRetries {
			break
		}
		slog.Warn("Publish failed, retrying", "topic", topic, "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return fmt.Errorf("publish cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("failed to publish %s event after %d attempts: %w", eventType, publishRetries, err)
}
