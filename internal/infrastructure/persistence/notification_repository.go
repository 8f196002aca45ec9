package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/tims/backend/internal/domain/notification"
	"github.com/tims/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormNotificationRepository implements notification.Repository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// visibleTo scopes a query to broadcasts plus the user's own notifications
func visibleTo(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(user_id IS NULL OR user_id = ?)", userID)
	}
}

func (r *GormNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// FindVisible lists the newest notifications the user can see
func (r *GormNotificationRepository) FindVisible(ctx context.Context, userID uuid.UUID, limit int) ([]notification.Notification, error) {
	if limit <= 0 {
		limit = notification.DefaultListLimit
	}
	list := make([]notification.Notification, 0)
	err := r.db.WithContext(ctx).
		Scopes(visibleTo(userID)).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *GormNotificationRepository) FindVisibleByID(ctx context.Context, id, userID uuid.UUID) (*notification.Notification, error) {
	var n notification.Notification
	if err := r.db.WithContext(ctx).
		Scopes(visibleTo(userID)).
		Where("id = ?", id).
		Take(&n).Error; err != nil {
		return nil, translateError(err, "Notification")
	}
	return &n, nil
}

func (r *GormNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&notification.Notification{}).
		Scopes(visibleTo(userID)).
		Where("is_read = ?", false).
		Count(&count).Error
	return count, err
}

// MarkRead flags one visible notification as read and returns it
func (r *GormNotificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) (*notification.Notification, error) {
	n, err := r.FindVisibleByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Model(&notification.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error; err != nil {
		return nil, err
	}
	n.MarkRead()
	return n, nil
}

// MarkAllRead flags every visible unread notification as read
func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&notification.Notification{}).
		Scopes(visibleTo(userID)).
		Where("is_read = ?", false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// Delete removes a visible notification
func (r *GormNotificationRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Scopes(visibleTo(userID)).
		Where("id = ?", id).
		Delete(&notification.Notification{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Notification")
	}
	return nil
}

var _ notification.Repository = (*GormNotificationRepository)(nil)
