package inventory

import (
	"context"

	"github.com/google/uuid"
)

// ItemFilter narrows an inventory listing. Zero values mean "no constraint".
type ItemFilter struct {
	Category     string
	Status       ItemStatus
	Search       string // case-insensitive substring of name, serial number or supplier name
	LowStockOnly bool   // stock_level <= reorder_point
	SupplierID   *uuid.UUID
}

// CategoryCount is one row of the per-category breakdown
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// Stats is the aggregate overview of the inventory
type Stats struct {
	TotalItems    int64           `json:"total_items"`
	LowStockCount int64           `json:"low_stock_count"`
	TotalStock    int64           `json:"total_stock"`
	ByCategory    []CategoryCount `json:"by_category"`
}

// InventoryItemRepository defines persistence for inventory items
type InventoryItemRepository interface {
	// FindByID loads an item with its supplier name
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryItem, error)
	// FindByIDForUpdate loads an item and holds a row lock on it until the
	// surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*InventoryItem, error)
	// FindAll lists items, most recently updated first
	FindAll(ctx context.Context, filter ItemFilter) ([]InventoryItem, error)
	// FindBySupplier lists a supplier's items ordered by name
	FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]InventoryItem, error)
	ExistsBySerialNumber(ctx context.Context, serial string, excludeID *uuid.UUID) (bool, error)
	CountBySupplier(ctx context.Context, supplierID uuid.UUID) (int64, error)
	Create(ctx context.Context, item *InventoryItem) error
	// SaveWithLock writes the item if its version still matches, bumping it
	SaveWithLock(ctx context.Context, item *InventoryItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*Stats, error)
}

// InventoryTransactionRepository defines persistence for the append-only log
type InventoryTransactionRepository interface {
	Create(ctx context.Context, tx *InventoryTransaction) error
	// FindByItemID lists an item's log, newest first, with acting user names
	FindByItemID(ctx context.Context, itemID uuid.UUID) ([]InventoryTransaction, error)
	CountByItemID(ctx context.Context, itemID uuid.UUID) (int64, error)
	DeleteByItemID(ctx context.Context, itemID uuid.UUID) error
}
