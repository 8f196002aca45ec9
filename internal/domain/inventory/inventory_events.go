package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/tims/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeInventoryItem = "InventoryItem"

// Event type constants
const (
	EventTypeItemCreated  = "InventoryItemCreated"
	EventTypeItemUpdated  = "InventoryItemUpdated"
	EventTypeItemDeleted  = "InventoryItemDeleted"
	EventTypeStockChanged = "StockChanged"
	EventTypeLowStock     = "LowStockAlerted"
)

// ItemCreatedEvent is raised when an item is registered
type ItemCreatedEvent struct {
	shared.BaseDomainEvent
	Name       string `json:"name"`
	Category   string `json:"category"`
	StockLevel int    `json:"stock_level"`
}

// NewItemCreatedEvent creates a new ItemCreatedEvent
func NewItemCreatedEvent(item *InventoryItem) *ItemCreatedEvent {
	return &ItemCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemCreated, AggregateTypeInventoryItem, item.ID),
		Name:            item.Name,
		Category:        item.Category,
		StockLevel:      item.StockLevel,
	}
}

// ItemUpdatedEvent is raised when an item's attributes are replaced
type ItemUpdatedEvent struct {
	shared.BaseDomainEvent
	Category string `json:"category"`
}

// NewItemUpdatedEvent creates a new ItemUpdatedEvent
func NewItemUpdatedEvent(item *InventoryItem) *ItemUpdatedEvent {
	return &ItemUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemUpdated, AggregateTypeInventoryItem, item.ID),
		Category:        item.Category,
	}
}

// ItemDeletedEvent is raised when an item and its log are removed
type ItemDeletedEvent struct {
	shared.BaseDomainEvent
}

// NewItemDeletedEvent creates a new ItemDeletedEvent
func NewItemDeletedEvent(itemID uuid.UUID) *ItemDeletedEvent {
	return &ItemDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemDeleted, AggregateTypeInventoryItem, itemID),
	}
}

// StockChangedEvent is raised whenever an item's stock level moves
type StockChangedEvent struct {
	shared.BaseDomainEvent
	ItemName            string          `json:"item_name"`
	Category            string          `json:"category"`
	SerialNumber        string          `json:"serial_number"`
	TransactionType     TransactionType `json:"transaction_type"`
	Quantity            int             `json:"quantity"`
	PreviousStock       int             `json:"previous_stock"`
	NewStock            int             `json:"new_stock"`
	ReorderPoint        int             `json:"reorder_point"`
	CrossedReorderPoint bool            `json:"crossed_reorder_point"`
}

// NewStockChangedEvent creates a new StockChangedEvent
func NewStockChangedEvent(item *InventoryItem, change StockChange) *StockChangedEvent {
	return &StockChangedEvent{
		BaseDomainEvent:     shared.NewBaseDomainEvent(EventTypeStockChanged, AggregateTypeInventoryItem, item.ID),
		ItemName:            item.Name,
		Category:            item.Category,
		SerialNumber:        item.SerialOrPlaceholder(),
		TransactionType:     change.Type,
		Quantity:            change.Quantity,
		PreviousStock:       change.PreviousStock,
		NewStock:            change.NewStock,
		ReorderPoint:        item.ReorderPoint,
		CrossedReorderPoint: change.CrossedReorderPoint,
	}
}

// LowStockAlertedEvent is raised once a low-stock notification for an item
// has been committed
type LowStockAlertedEvent struct {
	shared.BaseDomainEvent
	NotificationID uuid.UUID `json:"notification_id"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	ItemName       string    `json:"item_name"`
	Category       string    `json:"category"`
	StockLevel     int       `json:"stock_level"`
	ReorderPoint   int       `json:"reorder_point"`
	AlertedAt      time.Time `json:"alerted_at"`
}

// NewLowStockAlertedEvent links an item to the notification raised for it
func NewLowStockAlertedEvent(item *InventoryItem, notificationID uuid.UUID, title, message string, alertedAt time.Time) *LowStockAlertedEvent {
	return &LowStockAlertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLowStock, AggregateTypeInventoryItem, item.ID),
		NotificationID:  notificationID,
		Title:           title,
		Message:         message,
		ItemName:        item.Name,
		Category:        item.Category,
		StockLevel:      item.StockLevel,
		ReorderPoint:    item.ReorderPoint,
		AlertedAt:       alertedAt,
	}
}
