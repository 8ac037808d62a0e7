package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationNewMessage     NotificationType = "NEW_MESSAGE"
	NotificationMessageRead    NotificationType = "MESSAGE_READ"
	NotificationPresenceUpdate NotificationType = "PRESENCE_UPDATE"
	NotificationSystem         NotificationType = "SYSTEM"
)

type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    string           `json:"userId"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Data      json.RawMessage  `json:"data,omitempty"`
	Read      bool             `json:"read"`
	ReadAt    *time.Time       `json:"readAt"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// NewMessageData is the payload stored in Notification.Data for NEW_MESSAGE
// notifications. Preview carries at most the first 100 characters of the
// message content.
type NewMessageData struct {
	MessageID      string `json:"messageId"`
	SenderID       string `json:"senderId"`
	ConversationID string `json:"conversationId"`
	Preview        string `json:"preview"`
}

// NotificationPage is the paginated list envelope returned to the gateway.
type NotificationPage struct {
	Data        []*Notification `json:"data"`
	Total       int64           `json:"total"`
	Page        int             `json:"page"`
	TotalPages  int             `json:"totalPages"`
	UnreadCount int64           `json:"unreadCount"`
}
