package notification

import "github.com/tims/backend/internal/domain/shared"

// AggregateTypeNotification is the aggregate type for notification events
const AggregateTypeNotification = "Notification"

// EventTypeNotificationCreated is published after a notification is committed
const EventTypeNotificationCreated = "NotificationCreated"

// CreatedEvent carries a snapshot of a committed notification
type CreatedEvent struct {
	shared.BaseDomainEvent
	Notification Notification `json:"notification"`
}

// NewCreatedEvent creates a new CreatedEvent
func NewCreatedEvent(n *Notification) *CreatedEvent {
	return &CreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeNotificationCreated, AggregateTypeNotification, n.ID),
		Notification:    *n,
	}
}
