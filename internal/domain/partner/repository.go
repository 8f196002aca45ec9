package partner

import (
	"context"

	"github.com/google/uuid"
)

// SupplierFilter narrows a supplier listing
type SupplierFilter struct {
	Status SupplierStatus
	Search string // case-insensitive substring of name, contact person or email
}

// SupplierRepository defines persistence for suppliers
type SupplierRepository interface {
	// FindByID loads a supplier with its pending order count
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
	// FindAll lists suppliers alphabetically by name
	FindAll(ctx context.Context, filter SupplierFilter) ([]Supplier, error)
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
	Create(ctx context.Context, supplier *Supplier) error
	Save(ctx context.Context, supplier *Supplier) error
	// Delete removes the supplier together with its orders
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderRepository defines persistence for purchase orders
type OrderRepository interface {
	// FindByID loads an order with its supplier name
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindBySupplier lists a supplier's orders, newest first
	FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]Order, error)
	Create(ctx context.Context, order *Order) error
	Save(ctx context.Context, order *Order) error
}
