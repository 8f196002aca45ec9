package inventory

import (
	"strings"

	"github.com/google/uuid"
	"github.com/tims/backend/internal/domain/shared"
)

// ItemStatus represents the lifecycle status of a piece of equipment
type ItemStatus string

const (
	ItemStatusAvailable   ItemStatus = "available"
	ItemStatusInUse       ItemStatus = "in_use"
	ItemStatusMaintenance ItemStatus = "maintenance"
	ItemStatusRetired     ItemStatus = "retired"
)

// IsValid returns true if the status is one of the known values
func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusAvailable, ItemStatusInUse, ItemStatusMaintenance, ItemStatusRetired:
		return true
	}
	return false
}

// String returns the string representation of ItemStatus
func (s ItemStatus) String() string {
	return string(s)
}

// InventoryItem is the aggregate root for a tracked piece of telecom equipment.
// Invariant: StockLevel >= 0.
type InventoryItem struct {
	shared.BaseAggregateRoot
	Name         string     `gorm:"type:varchar(200);not null" json:"name"`
	Category     string     `gorm:"type:varchar(100);not null;index" json:"category"`
	Description  string     `gorm:"type:text" json:"description"`
	SerialNumber *string    `gorm:"type:varchar(100);uniqueIndex" json:"serial_number"`
	Location     string     `gorm:"type:varchar(200)" json:"location"`
	Status       ItemStatus `gorm:"type:varchar(20);not null;default:'available';index" json:"status"`
	StockLevel   int        `gorm:"not null;default:0" json:"stock_level"`
	ReorderPoint int        `gorm:"not null;default:0" json:"reorder_point"`
	SupplierID   *uuid.UUID `gorm:"type:uuid;index" json:"supplier_id"`

	// Populated by read queries that join suppliers
	SupplierName *string `gorm:"->;-:migration" json:"supplier_name"`
}

// TableName returns the table name for GORM
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// ItemAttributes carries the full, user-editable payload of an item
type ItemAttributes struct {
	Name         string
	Category     string
	Description  string
	SerialNumber string
	Location     string
	Status       ItemStatus
	StockLevel   int
	ReorderPoint int
	SupplierID   *uuid.UUID
}

func (a ItemAttributes) validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return shared.NewValidationError("Name is required")
	}
	if len(a.Name) > 200 {
		return shared.NewValidationError("Name cannot exceed 200 characters")
	}
	if strings.TrimSpace(a.Category) == "" {
		return shared.NewValidationError("Category is required")
	}
	if !a.Status.IsValid() {
		return shared.NewValidationError("Invalid status")
	}
	if a.StockLevel < 0 || a.StockLevel > MaxStockLevel {
		return shared.NewValidationError("Stock level must be a non-negative integer")
	}
	if a.ReorderPoint < 0 || a.ReorderPoint > MaxStockLevel {
		return shared.NewValidationError("Reorder point must be a non-negative integer")
	}
	return nil
}

func normalizeSerial(serial string) *string {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return nil
	}
	return &serial
}

// NewInventoryItem creates an item from a validated attribute set. The
// returned StockChange describes the initial stock as a purchase from zero.
func NewInventoryItem(attrs ItemAttributes) (*InventoryItem, StockChange, error) {
	if attrs.Status == "" {
		attrs.Status = ItemStatusAvailable
	}
	if err := attrs.validate(); err != nil {
		return nil, StockChange{}, err
	}

	item := &InventoryItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
	}
	item.assign(attrs)

	change := StockChange{
		Type:          TransactionTypePurchase,
		Quantity:      attrs.StockLevel,
		PreviousStock: 0,
		NewStock:      attrs.StockLevel,
		// A new item has no prior level, so landing at or under the reorder
		// point counts as entering the low-stock condition.
		CrossedReorderPoint: attrs.StockLevel <= attrs.ReorderPoint,
	}

	item.AddDomainEvent(NewItemCreatedEvent(item))
	return item, change, nil
}

// Update replaces every editable attribute. When the stock level moves, the
// returned StockChange is a purchase (increase) or adjustment (decrease) of
// the difference; CrossedReorderPoint is evaluated against the new reorder
// point.
func (i *InventoryItem) Update(attrs ItemAttributes) (StockChange, error) {
	if err := attrs.validate(); err != nil {
		return StockChange{}, err
	}

	previous := i.StockLevel
	i.assign(attrs)
	i.Touch()

	change := StockChange{
		PreviousStock:       previous,
		NewStock:            attrs.StockLevel,
		CrossedReorderPoint: CrossesReorderPoint(previous, attrs.StockLevel, attrs.ReorderPoint),
	}
	switch {
	case attrs.StockLevel > previous:
		change.Type = TransactionTypePurchase
		change.Quantity = attrs.StockLevel - previous
	case attrs.StockLevel < previous:
		change.Type = TransactionTypeAdjustment
		change.Quantity = previous - attrs.StockLevel
	}

	i.AddDomainEvent(NewItemUpdatedEvent(i))
	if change.Changed() {
		i.AddDomainEvent(NewStockChangedEvent(i, change))
	}
	return change, nil
}

// ApplyTransaction computes and applies a stock-affecting event to the item.
// On error the item is left untouched.
func (i *InventoryItem) ApplyTransaction(txType TransactionType, quantity int) (StockChange, error) {
	change, err := ComputeStockChange(i.StockLevel, i.ReorderPoint, txType, quantity)
	if err != nil {
		return StockChange{}, err
	}

	i.StockLevel = change.NewStock
	i.Touch()
	i.AddDomainEvent(NewStockChangedEvent(i, change))
	return change, nil
}

// IsLowStock reports whether the item is at or below its reorder point
func (i *InventoryItem) IsLowStock() bool {
	return i.StockLevel <= i.ReorderPoint
}

// SerialOrPlaceholder returns the serial number or "No S/N"
func (i *InventoryItem) SerialOrPlaceholder() string {
	if i.SerialNumber == nil || *i.SerialNumber == "" {
		return "No S/N"
	}
	return *i.SerialNumber
}

func (i *InventoryItem) assign(attrs ItemAttributes) {
	i.Name = strings.TrimSpace(attrs.Name)
	i.Category = strings.TrimSpace(attrs.Category)
	i.Description = attrs.Description
	i.SerialNumber = normalizeSerial(attrs.SerialNumber)
	i.Location = attrs.Location
	i.Status = attrs.Status
	i.StockLevel = attrs.StockLevel
	i.ReorderPoint = attrs.ReorderPoint
	i.SupplierID = attrs.SupplierID
}
