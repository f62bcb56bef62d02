package kafka

import (
	"time"

	"checkout/internal/entities"
)

// NotificationEvent is the wire form of a gateway notification queued by the webhook.
type NotificationEvent struct {
	EventID    string    `json:"event_id"`
	Topic      string    `json:"topic"`
	ResourceID string    `json:"resource_id"`
	Action     string    `json:"action,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

func (e NotificationEvent) ToDomain() entities.Notification {
	return entities.Notification{
		Topic:      entities.NotificationTopic(e.Topic),
		ResourceID: e.ResourceID,
		Action:     e.Action,
		RequestID:  e.RequestID,
	}
}
