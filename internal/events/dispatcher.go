package events

import (
	"context"
	"encoding/json"
	"log/slog"
)

// HandlerFunc processes one decoded event envelope. Returned errors are
// logged by the dispatcher and never propagated: the consumer must keep
// advancing past a bad record, so handlers needing retries have to be
// idempotent and arrange them elsewhere.
type HandlerFunc func(ctx context.Context, evt *Event) error

// Dispatcher routes received records to the handler registered for their
// event type. The registry is built once at startup, before the consumer
// starts pulling; registering while dispatch is running is not supported.
type Dispatcher struct {
	handlers map[string]HandlerFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]HandlerFunc)}
}

func (d *Dispatcher) Register(eventType string, handler HandlerFunc) {
	d.handlers[eventType] = handler
	slog.Info("Handler registered", "eventType", eventType)
}

// Dispatch decodes one raw record and invokes its handler. headerType is the
// event-type transport header; when absent, the envelope's eventType field is
// used instead. Every failure mode — undecodable body, unknown type, handler
// error, handler panic — is absorbed and logged so the consumer loop never
// stalls on one record.
func (d *Dispatcher) Dispatch(ctx context.Context, headerType string, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Handler panicked", "eventType", headerType, "panic", r)
		}
	}()

	var evt Event
	if err := json.Unmarshal(data, &evt); err != nil {
		slog.Warn("Received undecodable event record", "error", err)
		return
	}

	eventType := headerType
	if eventType == "" {
		eventType = evt.EventType
	}

	handler, ok := d.handlers[eventType]
	if !ok {
		slog.Warn("No handler found for event type", "eventType", eventType)
		return
	}

	if err := handler(ctx, &evt); err != nil {
		slog.Error("Handler failed, skipping record", "eventType", eventType, "eventId", evt.EventID, "error", err)
		return
	}
	slog.Debug("Processed event", "eventType", eventType, "eventId", evt.EventID)
}
