package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tims/backend/internal/domain/notification"
	"github.com/tims/backend/internal/domain/shared"
	"github.com/tims/backend/internal/infrastructure/persistence"
)

func newTestRepo(t *testing.T) notification.Repository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(persistence.Models()...))

	return persistence.NewGormNotificationRepository(db)
}

func seed(t *testing.T, repo notification.Repository, title string, userID *uuid.UUID) *notification.Notification {
	t.Helper()
	n, err := notification.New(title, title+" body", notification.TypeSystem, userID)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), n))
	return n
}

func TestNotificationService_Visibility(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	svc := NewNotificationService(repo, 0, zap.NewNop())

	alice, bob := uuid.New(), uuid.New()
	seed(t, repo, "broadcast", nil)
	mine := seed(t, repo, "for alice", &alice)
	theirs := seed(t, repo, "for bob", &bob)

	t.Run("list shows broadcasts and own", func(t *testing.T) {
		list, err := svc.List(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, 2, list.Count)
		for _, n := range list.Items {
			assert.NotEqual(t, theirs.ID, n.ID)
		}
	})

	t.Run("unread count and mark read", func(t *testing.T) {
		count, err := svc.UnreadCount(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		read, err := svc.MarkRead(ctx, alice, mine.ID)
		require.NoError(t, err)
		assert.True(t, read.IsRead)

		count, err = svc.UnreadCount(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("another user's notification is not found", func(t *testing.T) {
		_, err := svc.MarkRead(ctx, alice, theirs.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.ErrorIs(t, svc.Delete(ctx, alice, theirs.ID), shared.ErrNotFound)
	})

	t.Run("mark all read leaves other users alone", func(t *testing.T) {
		updated, err := svc.MarkAllRead(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, int64(1), updated)

		count, err := svc.UnreadCount(ctx, bob)
		require.NoError(t, err)
		// only bob's own row is left; the broadcast row is shared
		assert.Equal(t, int64(1), count)
	})

	t.Run("delete own", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, alice, mine.ID))
		list, err := svc.List(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, 1, list.Count)
	})
}

func TestNotificationService_ListLimit(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	svc := NewNotificationService(repo, 3, zap.NewNop())

	for i := range 5 {
		seed(t, repo, fmt.Sprintf("n%d", i), nil)
	}
	list, err := svc.List(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 3, list.Count)
}

type mockPusher struct {
	mock.Mock
}

func (m *mockPusher) Send(userID *uuid.UUID, payload []byte) int {
	return m.Called(userID, payload).Int(0)
}

func TestPushHandler(t *testing.T) {
	ctx := context.Background()
	alert := notification.NewLowStockAlert("Cisco 2960 Switch", "SW-001", 4)

	var sent []byte
	pusher := new(mockPusher)
	pusher.On("Send", (*uuid.UUID)(nil), mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).([]byte) }).
		Return(2).Once()

	h := NewPushHandler(pusher, zap.NewNop())
	require.NoError(t, h.Handle(ctx, notification.NewCreatedEvent(alert)))
	pusher.AssertExpectations(t)

	var msg PushMessage
	require.NoError(t, json.Unmarshal(sent, &msg))
	assert.Equal(t, PushMessageType, msg.Type)
	assert.Equal(t, alert.ID, msg.Notification.ID)
	assert.Equal(t, "low_stock", msg.Notification.Type)
	assert.Equal(t, "Low Stock Alert", msg.Notification.Title)
}
