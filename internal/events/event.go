package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pulsechat/pulse/internal/models"
)

// Topic names are the cross-service contract: any service may produce or
// consume any of these, and the schema of the event body is implied by the
// eventType (identical to the topic name), not enforced by the broker.
const (
	TopicMessageCreated        = "message.created"
	TopicMessageUpdated        = "message.updated"
	TopicMessageDeleted        = "message.deleted"
	TopicPresenceUpdated       = "presence.updated"
	TopicUserRegistered        = "user.registered"
	TopicNotificationCreated   = "notification.created"
	TopicProfileUpdated        = "profile.updated"
	TopicProfilePictureUpdated = "profile.picture.updated"
)

// EventVersion is the schema version stamped on every published envelope.
const EventVersion = "1.0"

// Event is the immutable wire envelope. Data is kept raw so consumers can
// decode it into the payload type matching EventType.
type Event struct {
	EventID   string          `json:"eventId"`
	EventType string          `json:"eventType"`
	Timestamp time.Time       `json:"timestamp"`
	Version   string          `json:"version"`
	Data      json.RawMessage `json:"data"`
}

// Payload is implemented by every event payload. PartitionKey returns the
// entity id used to route the event, so events for the same entity stay
// ordered relative to each other.
type Payload interface {
	PartitionKey() string
}

type MessageCreatedData struct {
	MessageID      string    `json:"messageId"`
	Content        string    `json:"content"`
	SenderID       string    `json:"senderId"`
	ReceiverID     string    `json:"receiverId"`
	ConversationID string    `json:"conversationId"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (d MessageCreatedData) PartitionKey() string { return d.MessageID }

type MessageUpdatedData struct {
	MessageID string     `json:"messageId"`
	Content   string     `json:"content,omitempty"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (d MessageUpdatedData) PartitionKey() string { return d.MessageID }

type PresenceUpdatedData struct {
	UserID     string                `json:"userId"`
	Status     models.PresenceStatus `json:"status"`
	LastSeenAt *time.Time            `json:"lastSeenAt"`
}

func (d PresenceUpdatedData) PartitionKey() string { return d.UserID }

type NotificationCreatedData struct {
	NotificationID string                  `json:"notificationId"`
	UserID         string                  `json:"userId"`
	Type           models.NotificationType `json:"type"`
	Title          string                  `json:"title"`
	Message        string                  `json:"message"`
	Data           json.RawMessage         `json:"data,omitempty"`
	CreatedAt      time.Time               `json:"createdAt"`
}

func (d NotificationCreatedData) PartitionKey() string { return d.UserID }

// NewEvent wraps a payload into a fresh envelope with a generated id and the
// current timestamp.
func NewEvent(eventType string, payload Payload) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return &Event{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Version:   EventVersion,
		Data:      data,
	}, nil
}

// DecodeData unmarshals the envelope's raw data into the payload type for its
// eventType. Unknown event types return an error so callers can skip them.
func DecodeData(evt *Event) (Payload, error) {
	var payload Payload
	switch evt.EventType {
	case TopicMessageCreated:
		payload = &MessageCreatedData{}
	case TopicMessageUpdated:
		payload = &MessageUpdatedData{}
	case TopicPresenceUpdated:
		payload = &PresenceUpdatedData{}
	case TopicNotificationCreated:
		payload = &NotificationCreatedData{}
	default:
		return nil, fmt.Errorf("unknown event type: %s", evt.EventType)
	}
	if err := json.Unmarshal(evt.Data, payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s data: %w", evt.EventType, err)
	}
	return payload, nil
}
