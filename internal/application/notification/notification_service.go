package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tims/backend/internal/domain/notification"
	"github.com/tims/backend/internal/domain/shared"
)

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Type      string     `json:"type"`
	IsRead    bool       `json:"is_read"`
	UserID    *uuid.UUID `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToNotificationResponse converts a domain notification
func ToNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		IsRead:    n.IsRead,
		UserID:    n.UserID,
		CreatedAt: n.CreatedAt,
	}
}

// NotificationService serves a user's notification inbox
type NotificationService struct {
	repo   notification.Repository
	limit  int
	logger *zap.Logger
}

// NewNotificationService creates a new NotificationService listing at most
// limit entries; a non-positive limit uses the default.
func NewNotificationService(repo notification.Repository, limit int, logger *zap.Logger) *NotificationService {
	if limit <= 0 {
		limit = notification.DefaultListLimit
	}
	return &NotificationService{repo: repo, limit: limit, logger: logger}
}

// List returns the most recent notifications visible to the user
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID) (shared.ListResult[NotificationResponse], error) {
	list, err := s.repo.FindVisible(ctx, userID, s.limit)
	if err != nil {
		return shared.ListResult[NotificationResponse]{}, err
	}
	out := make([]NotificationResponse, len(list))
	for i := range list {
		out[i] = ToNotificationResponse(&list[i])
	}
	return shared.NewListResult(out), nil
}

// UnreadCount returns how many visible notifications are unread
func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead flags one notification as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) (*NotificationResponse, error) {
	n, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	resp := ToNotificationResponse(n)
	return &resp, nil
}

// MarkAllRead flags every visible notification as read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	updated, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.logger.Debug("Notifications marked read",
		zap.String("user_id", userID.String()),
		zap.Int64("count", updated))
	return updated, nil
}

// Delete removes one notification visible to the user
func (s *NotificationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.Delete(ctx, id, userID)
}
