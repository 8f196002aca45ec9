package persistence

import (
	"context"

	appshared "github.com/tims/backend/internal/application/shared"
	"github.com/tims/backend/internal/domain/identity"
	"github.com/tims/backend/internal/domain/inventory"
	"github.com/tims/backend/internal/domain/notification"
	"github.com/tims/backend/internal/domain/partner"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute commits when fn returns nil and rolls back otherwise
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appshared.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) ItemRepo() inventory.InventoryItemRepository {
	return NewGormInventoryItemRepository(r.tx)
}

func (r *gormTransactionalRepositories) TransactionRepo() inventory.InventoryTransactionRepository {
	return NewGormInventoryTransactionRepository(r.tx)
}

func (r *gormTransactionalRepositories) SupplierRepo() partner.SupplierRepository {
	return NewGormSupplierRepository(r.tx)
}

func (r *gormTransactionalRepositories) OrderRepo() partner.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) NotificationRepo() notification.Repository {
	return NewGormNotificationRepository(r.tx)
}

func (r *gormTransactionalRepositories) UserRepo() identity.UserRepository {
	return NewGormUserRepository(r.tx)
}

var (
	_ appshared.TransactionScope          = (*GormTransactionScope)(nil)
	_ appshared.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
