package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tims/backend/internal/domain/shared"
)

// OrderStatus represents the status of a purchase order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid returns true if the status is one of the known values
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true for statuses that admit no further transition
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Order is a purchase order placed with one supplier
type Order struct {
	shared.BaseAggregateRoot
	SupplierID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"supplier_id"`
	Status               OrderStatus     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	OrderDate            time.Time       `gorm:"not null" json:"order_date"`
	ExpectedDeliveryDate *time.Time      `json:"expected_delivery_date"`
	TotalAmount          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_amount"`
	UserID               *uuid.UUID      `gorm:"type:uuid;index" json:"user_id"`
	Notes                string          `gorm:"type:text" json:"notes"`

	// Populated by read queries
	CreatedBy    *string `gorm:"->;-:migration" json:"created_by"`
	SupplierName *string `gorm:"->;-:migration" json:"supplier_name,omitempty"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a pending order for a supplier
func NewOrder(supplierID uuid.UUID, expectedDelivery *time.Time, totalAmount decimal.Decimal, userID *uuid.UUID, notes string) (*Order, error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewValidationError("Supplier ID cannot be empty")
	}
	if totalAmount.IsNegative() {
		return nil, shared.NewValidationError("Total amount cannot be negative")
	}

	o := &Order{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		SupplierID:           supplierID,
		Status:               OrderStatusPending,
		ExpectedDeliveryDate: expectedDelivery,
		TotalAmount:          totalAmount.Round(2),
		UserID:               userID,
		Notes:                notes,
	}
	o.OrderDate = o.CreatedAt
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, ""))
	return o, nil
}

// ChangeStatus moves the order to a new status. Notes are replaced only when
// provided. Delivered and cancelled orders accept no other status.
func (o *Order) ChangeStatus(status OrderStatus, notes *string) error {
	if !status.IsValid() {
		return shared.NewValidationError("Invalid status")
	}
	if o.Status.IsTerminal() && status != o.Status {
		return shared.NewDomainError(shared.CodeInvalidState,
			"Order is "+string(o.Status)+" and can no longer change status")
	}

	previous := o.Status
	o.Status = status
	if notes != nil {
		o.Notes = *notes
	}
	o.Touch()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, previous))
	return nil
}
