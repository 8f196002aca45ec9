package shared

import (
	"context"

	"github.com/tims/backend/internal/domain/identity"
	"github.com/tims/backend/internal/domain/inventory"
	"github.com/tims/backend/internal/domain/notification"
	"github.com/tims/backend/internal/domain/partner"
)

// TransactionScope runs a unit of work atomically. If fn returns an error
// every write made through repos is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes repositories bound to the running transaction.
// Repositories obtained outside of Execute must not be used inside fn.
type TransactionalRepositories interface {
	ItemRepo() inventory.InventoryItemRepository
	TransactionRepo() inventory.InventoryTransactionRepository
	SupplierRepo() partner.SupplierRepository
	OrderRepo() partner.OrderRepository
	NotificationRepo() notification.Repository
	UserRepo() identity.UserRepository
}
