package partner

import "github.com/tims/backend/internal/domain/shared"

// Aggregate type constants
const (
	AggregateTypeSupplier = "Supplier"
	AggregateTypeOrder    = "Order"
)

// Event type constants
const (
	EventTypeSupplierCreated    = "SupplierCreated"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
)

// SupplierCreatedEvent is raised when a supplier is registered
type SupplierCreatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewSupplierCreatedEvent creates a new SupplierCreatedEvent
func NewSupplierCreatedEvent(s *Supplier) *SupplierCreatedEvent {
	return &SupplierCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplierCreated, AggregateTypeSupplier, s.ID),
		Name:            s.Name,
	}
}

// OrderStatusChangedEvent is raised when an order is created (empty
// PreviousStatus) or moves between statuses
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	PreviousStatus OrderStatus `json:"previous_status,omitempty"`
	Status         OrderStatus `json:"status"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, previous OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		PreviousStatus:  previous,
		Status:          o.Status,
	}
}
