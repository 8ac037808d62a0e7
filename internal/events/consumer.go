package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Consumer pulls records for a set of topics as one member of a named
// consumer group (a JetStream durable consumer — instances sharing the
// durable name split the load without duplicate delivery within the group)
// and hands each record to the Dispatcher.
//
// Every record is acknowledged after dispatch regardless of handler outcome.
// The transport is at-least-once; this layer deliberately never redelivers,
// so a failed handler means that record is gone.
type Consumer struct {
	js      jetstream.JetStream
	group   string
	disp    *Dispatcher
	consume jetstream.ConsumeContext
}

func NewConsumer(ctx context.Context, nc *nats.Conn, group string, disp *Dispatcher) (*Consumer, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	if err := EnsureStream(ctx, js); err != nil {
		return nil, err
	}
	return &Consumer{js: js, group: group, disp: disp}, nil
}

// Start subscribes to the given topics and begins dispatching. All handlers
// must be registered on the Dispatcher before this is called.
func (c *Consumer) Start(ctx context.Context, topics ...string) error {
	filters := make([]string, len(topics))
	for i, topic := range topics {
		filters[i] = topicFilter(topic)
	}

	stream, err := c.js.Stream(ctx, StreamName)
	if err != nil {
		return fmt.Errorf("failed to get %s stream: %w", StreamName, err)
	}

	cons, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:        c.group,
		AckPolicy:      jetstream.AckExplicitPolicy,
		DeliverPolicy:  jetstream.DeliverNewPolicy,
		FilterSubjects: filters,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer %s: %w", c.group, err)
	}

	cc, err := cons.Consume(func(msg jetstream.Msg) {
		headerType := msg.Headers().Get(HeaderEventType)
		c.disp.Dispatch(context.Background(), headerType, msg.Data())
		// Always advance — see type comment.
		if err := msg.Ack(); err != nil {
			slog.Warn("Failed to ack message", "subject", msg.Subject(), "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	c.consume = cc

	slog.Info("Event consumer running", "group", c.group, "topics", topics)
	return nil
}

// Stop halts message delivery. Safe to call if Start never ran.
func (c *Consumer) Stop() {
	if c.consume != nil {
		c.consume.Stop()
	}
}
