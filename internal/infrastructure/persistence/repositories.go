package persistence

import (
	"gorm.io/gorm"
)

// Repositories bundles the non-transactional repositories used for reads
type Repositories struct {
	Items         *GormInventoryItemRepository
	Transactions  *GormInventoryTransactionRepository
	Suppliers     *GormSupplierRepository
	Orders        *GormOrderRepository
	Notifications *GormNotificationRepository
	Users         *GormUserRepository
	Scope         *GormTransactionScope
}

// NewRepositories wires every repository against db
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Items:         NewGormInventoryItemRepository(db),
		Transactions:  NewGormInventoryTransactionRepository(db),
		Suppliers:     NewGormSupplierRepository(db),
		Orders:        NewGormOrderRepository(db),
		Notifications: NewGormNotificationRepository(db),
		Users:         NewGormUserRepository(db),
		Scope:         NewGormTransactionScope(db),
	}
}
