package notification

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tims/backend/internal/domain/shared"
)

// Type classifies a notification
type Type string

const (
	TypeLowStock    Type = "low_stock"
	TypeOrderUpdate Type = "order_update"
	TypeSystem      Type = "system"
)

// IsValid returns true if the type is one of the known values
func (t Type) IsValid() bool {
	switch t {
	case TypeLowStock, TypeOrderUpdate, TypeSystem:
		return true
	}
	return false
}

// DefaultListLimit caps notification listings to the most recent entries
const DefaultListLimit = 50

// Notification is a message for one user, or for everyone when UserID is nil
type Notification struct {
	shared.BaseEntity
	Title   string     `gorm:"type:varchar(200);not null" json:"title"`
	Message string     `gorm:"type:text;not null" json:"message"`
	Type    Type       `gorm:"type:varchar(20);not null;index" json:"type"`
	IsRead  bool       `gorm:"not null;default:false;index" json:"is_read"`
	UserID  *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
}

// TableName returns the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}

// New creates an unread notification
func New(title, message string, typ Type, userID *uuid.UUID) (*Notification, error) {
	if strings.TrimSpace(title) == "" {
		return nil, shared.NewValidationError("Title is required")
	}
	if strings.TrimSpace(message) == "" {
		return nil, shared.NewValidationError("Message is required")
	}
	if !typ.IsValid() {
		return nil, shared.NewValidationError("Invalid notification type")
	}
	return &Notification{
		BaseEntity: shared.NewBaseEntity(),
		Title:      title,
		Message:    message,
		Type:       typ,
		UserID:     userID,
	}, nil
}

// NewLowStockAlert builds the broadcast alert for an item that just entered
// the low-stock condition
func NewLowStockAlert(itemName, serial string, currentStock int) *Notification {
	if serial == "" {
		serial = "No S/N"
	}
	n, _ := New(
		"Low Stock Alert",
		fmt.Sprintf("%s (%s) is below reorder point. Current stock: %d", itemName, serial, currentStock),
		TypeLowStock,
		nil,
	)
	return n
}

// NewOrderCreatedAlert builds the broadcast notice for a new purchase order
func NewOrderCreatedAlert(orderID uuid.UUID, supplierName string) *Notification {
	n, _ := New(
		"New Order Created",
		fmt.Sprintf("New order #%s created for %s", shortID(orderID), supplierName),
		TypeOrderUpdate,
		nil,
	)
	return n
}

// NewOrderStatusAlert builds the broadcast notice for an order status change
func NewOrderStatusAlert(orderID uuid.UUID, supplierName, status string) *Notification {
	n, _ := New(
		"Order Status Updated",
		fmt.Sprintf("Order #%s from %s is now %s", shortID(orderID), supplierName, status),
		TypeOrderUpdate,
		nil,
	)
	return n
}

// VisibleTo reports whether the user may see this notification
func (n *Notification) VisibleTo(userID uuid.UUID) bool {
	return n.UserID == nil || *n.UserID == userID
}

// MarkRead flags the notification as read
func (n *Notification) MarkRead() {
	n.IsRead = true
	n.Touch()
}

func shortID(id uuid.UUID) string {
	return strings.ToUpper(id.String()[:8])
}
