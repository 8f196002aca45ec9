package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	notificationapp "github.com/tims/backend/internal/application/notification"
	"github.com/tims/backend/internal/domain/identity"
	"github.com/tims/backend/internal/domain/notification"
)

func (s *testServer) addUser(username string, role identity.Role) *identity.User {
	s.t.Helper()
	u, err := identity.NewUser(username, "secret123", username+"@example.com", "Test "+username, role)
	require.NoError(s.t, err)
	require.NoError(s.t, s.db.Create(u).Error)
	return u
}

func (s *testServer) addNotification(title string, userID *uuid.UUID) *notification.Notification {
	s.t.Helper()
	n, err := notification.New(title, title+" body", notification.TypeSystem, userID)
	require.NoError(s.t, err)
	require.NoError(s.t, s.db.Create(n).Error)
	return n
}

func TestNotificationHandler_Visibility(t *testing.T) {
	s := newTestServer(t)
	tech := s.addUser("tech1", identity.RoleStaff)

	s.addNotification("Maintenance window", nil)
	s.addNotification("Admin only", &s.admin.ID)
	s.addNotification("For tech", &tech.ID)

	w := s.do(http.MethodGet, "/api/v1/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	adminList := decode[NotificationListResponse](t, w).Data
	assert.Equal(t, 2, adminList.Count)

	w = s.do(http.MethodGet, "/api/v1/notifications", nil, tech)
	techList := decode[NotificationListResponse](t, w).Data
	require.Equal(t, 2, techList.Count)
	titles := []string{techList.Notifications[0].Title, techList.Notifications[1].Title}
	assert.ElementsMatch(t, []string{"Maintenance window", "For tech"}, titles)

	w = s.anonymous(http.MethodGet, "/api/v1/notifications", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNotificationHandler_ReadFlow(t *testing.T) {
	s := newTestServer(t)
	first := s.addNotification("First", nil)
	s.addNotification("Second", nil)
	s.addNotification("Third", &s.admin.ID)

	unread := func() int64 {
		w := s.do(http.MethodGet, "/api/v1/notifications/unread", nil)
		require.Equal(t, http.StatusOK, w.Code)
		return decode[UnreadCountResponse](t, w).Data.UnreadCount
	}
	assert.EqualValues(t, 3, unread())

	w := s.do(http.MethodPut, "/api/v1/notifications/"+first.ID.String()+"/read", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[notificationapp.NotificationResponse](t, w).Data.IsRead)
	assert.EqualValues(t, 2, unread())

	w = s.do(http.MethodPut, "/api/v1/notifications/read/all", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode[MarkAllReadResponse](t, w).Data.Updated)
	assert.EqualValues(t, 0, unread())
}

func TestNotificationHandler_CannotTouchOthersNotifications(t *testing.T) {
	s := newTestServer(t)
	tech := s.addUser("tech1", identity.RoleStaff)
	private := s.addNotification("Admin only", &s.admin.ID)

	w := s.do(http.MethodPut, "/api/v1/notifications/"+private.ID.String()+"/read", nil, tech)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodDelete, "/api/v1/notifications/"+private.ID.String(), nil, tech)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodDelete, "/api/v1/notifications/"+private.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Notification deleted successfully", decode[MessageResponse](t, w).Data.Message)

	w = s.do(http.MethodDelete, "/api/v1/notifications/"+private.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPut, "/api/v1/notifications/not-a-uuid/read", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
