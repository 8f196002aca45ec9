package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tims/backend/internal/domain/notification"
	"github.com/tims/backend/internal/domain/shared"
)

// Pusher delivers a message to a user's live connections, or to every
// connection when userID is nil. It returns the number of deliveries.
type Pusher interface {
	Send(userID *uuid.UUID, payload []byte) int
}

// PushMessage is the frame written to websocket clients
type PushMessage struct {
	Type         string               `json:"type"`
	Notification NotificationResponse `json:"notification"`
}

// PushMessageType tags notification frames
const PushMessageType = "notification"

// PushHandler forwards committed notifications to connected clients
type PushHandler struct {
	pusher Pusher
	logger *zap.Logger
}

// NewPushHandler creates a new PushHandler
func NewPushHandler(pusher Pusher, logger *zap.Logger) *PushHandler {
	return &PushHandler{pusher: pusher, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *PushHandler) EventTypes() []string {
	return []string{notification.EventTypeNotificationCreated}
}

// Handle encodes the notification and pushes it to everyone who can see it
func (h *PushHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	created, ok := event.(*notification.CreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			notification.EventTypeNotificationCreated, event.EventType())
	}

	payload, err := json.Marshal(PushMessage{
		Type:         PushMessageType,
		Notification: ToNotificationResponse(&created.Notification),
	})
	if err != nil {
		return fmt.Errorf("encode push message: %w", err)
	}

	delivered := h.pusher.Send(created.Notification.UserID, payload)
	h.logger.Debug("notification pushed",
		zap.String("notification_id", created.Notification.ID.String()),
		zap.Int("connections", delivered),
	)
	return nil
}
