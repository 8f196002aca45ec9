package notification

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for notifications. Every read and write is
// scoped to what the given user can see: broadcasts plus their own.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	// FindVisible lists the most recent visible notifications, newest first
	FindVisible(ctx context.Context, userID uuid.UUID, limit int) ([]Notification, error)
	FindVisibleByID(ctx context.Context, id, userID uuid.UUID) (*Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) (*Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}
