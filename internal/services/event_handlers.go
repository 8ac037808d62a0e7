package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pulsechat/pulse/internal/events"
	"github.com/pulsechat/pulse/internal/models"
	"github.com/pulsechat/pulse/internal/repositories"
)

// previewLength caps the message content embedded in a notification.
const previewLength = 100

// EventHandlers materializes consumed events into notification rows. It is
// the only writer of notifications. Handler errors bubble to the dispatcher,
// which logs and moves on — a notification that fails to materialize is lost,
// consistent with the consumer's no-retry policy.
type EventHandlers struct {
	notifications repositories.NotificationRepository
	publisher     EventPublisher
}

func NewEventHandlers(notifications repositories.NotificationRepository, publisher EventPublisher) *EventHandlers {
	return &EventHandlers{
		notifications: notifications,
		publisher:     publisher,
	}
}

// Register wires all handlers into the dispatcher. Must run before the
// consumer starts.
func (h *EventHandlers) Register(d *events.Dispatcher) {
	d.Register(events.TopicMessageCreated, h.HandleMessageCreated)
	d.Register(events.TopicMessageUpdated, h.HandleMessageUpdated)
	d.Register(events.TopicPresenceUpdated, h.HandlePresenceUpdated)
}

// HandleMessageCreated creates a NEW_MESSAGE notification for the receiver
// with a truncated content preview.
func (h *EventHandlers) HandleMessageCreated(ctx context.Context, evt *events.Event) error {
	payload, err := events.DecodeData(evt)
	if err != nil {
		return err
	}
	data, ok := payload.(*events.MessageCreatedData)
	if !ok {
		return fmt.Errorf("unexpected payload type for %s", evt.EventType)
	}

	notifData, err := json.Marshal(models.NewMessageData{
		MessageID:      data.MessageID,
		SenderID:       data.SenderID,
		ConversationID: data.ConversationID,
		Preview:        truncate(data.Content, previewLength),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification data: %w", err)
	}

	notification := &models.Notification{
		UserID:  data.ReceiverID,
		Type:    models.NotificationNewMessage,
		Title:   "New Message",
		Message: "You have a new message",
		Data:    notifData,
	}

	if err := h.notifications.Create(ctx, notification); err != nil {
		return err
	}
	slog.Info("Created new message notification", "user", data.ReceiverID, "message", data.MessageID)

	// Downstream contract: announce the stored notification on the bus.
	// Best-effort, same as every other accelerator publish.
	err = h.publisher.Publish(ctx, events.TopicNotificationCreated, events.TopicNotificationCreated, events.NotificationCreatedData{
		NotificationID: notification.ID.String(),
		UserID:         notification.UserID,
		Type:           notification.Type,
		Title:          notification.Title,
		Message:        notification.Message,
		Data:           notification.Data,
		CreatedAt:      notification.CreatedAt,
	})
	if err != nil {
		slog.Warn("Failed to publish notification.created event", "user", notification.UserID, "error", err)
	}
	return nil
}

// HandleMessageUpdated only reacts to read receipts, and for now only logs
// them.
func (h *EventHandlers) HandleMessageUpdated(ctx context.Context, evt *events.Event) error {
	payload, err := events.DecodeData(evt)
	if err != nil {
		return err
	}
	data, ok := payload.(*events.MessageUpdatedData)
	if !ok {
		return fmt.Errorf("unexpected payload type for %s", evt.EventType)
	}

	if data.ReadAt != nil {
		slog.Info("Message was read", "message", data.MessageID)
	}
	return nil
}

// HandlePresenceUpdated is log-only. Extension point for "friend came online"
// notifications once contact lists exist.
func (h *EventHandlers) HandlePresenceUpdated(ctx context.Context, evt *events.Event) error {
	payload, err := events.DecodeData(evt)
	if err != nil {
		return err
	}
	data, ok := payload.(*events.PresenceUpdatedData)
	if !ok {
		return fmt.Errorf("unexpected payload type for %s", evt.EventType)
	}

	slog.Info("User presence updated", "user", data.UserID, "status", data.Status)
	return nil
}

// truncate cuts s to at most n characters without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
