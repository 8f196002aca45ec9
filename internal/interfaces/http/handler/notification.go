package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	notificationapp "github.com/tims/backend/internal/application/notification"
	"github.com/tims/backend/internal/infrastructure/logger"
)

// StreamServer owns upgraded websocket connections
type StreamServer interface {
	Serve(ctx context.Context, userID uuid.UUID, conn *websocket.Conn)
}

// NotificationHandler serves the caller's notification inbox and live stream
type NotificationHandler struct {
	BaseHandler
	notificationService *notificationapp.NotificationService
	hub                 StreamServer
	upgrader            websocket.Upgrader
}

// NotificationListResponse wraps a notification listing
type NotificationListResponse struct {
	Count         int                                    `json:"count"`
	Notifications []notificationapp.NotificationResponse `json:"notifications"`
}

// UnreadCountResponse carries the unread badge count
type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

// MarkAllReadResponse reports how many notifications were flagged
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// NewNotificationHandler creates a new NotificationHandler. checkOrigin
// decides which browser origins may open the websocket; nil accepts
// same-origin requests only.
func NewNotificationHandler(
	notificationService *notificationapp.NotificationService,
	hub StreamServer,
	checkOrigin func(r *http.Request) bool,
) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		hub:                 hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// List handles GET /notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.notificationService.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, NotificationListResponse{Count: result.Count, Notifications: result.Items}, result.Count)
}

// UnreadCount handles GET /notifications/unread
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	count, err := h.notificationService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, UnreadCountResponse{UnreadCount: count})
}

// MarkRead handles PUT /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	n, err := h.notificationService.MarkRead(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, n)
}

// MarkAllRead handles PUT /notifications/read/all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	updated, err := h.notificationService.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MarkAllReadResponse{Updated: updated})
}

// Delete handles DELETE /notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageResponse{Message: "Notification deleted successfully"})
}

// Stream handles GET /notifications/ws. It upgrades the connection and
// blocks until the client goes away.
func (h *NotificationHandler) Stream(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		logger.FromContext(c.Request.Context()).Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	h.hub.Serve(c.Request.Context(), userID, conn)
}
