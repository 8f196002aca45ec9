package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/tims/backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// GormInventoryTransactionRepository persists the append-only stock log
type GormInventoryTransactionRepository struct {
	db *gorm.DB
}

// NewGormInventoryTransactionRepository creates a new GormInventoryTransactionRepository
func NewGormInventoryTransactionRepository(db *gorm.DB) *GormInventoryTransactionRepository {
	return &GormInventoryTransactionRepository{db: db}
}

func (r *GormInventoryTransactionRepository) Create(ctx context.Context, tx *inventory.InventoryTransaction) error {
	return translateError(r.db.WithContext(ctx).Create(tx).Error, "Inventory transaction")
}

// FindByItemID lists an item's history newest first with the acting username
func (r *GormInventoryTransactionRepository) FindByItemID(ctx context.Context, itemID uuid.UUID) ([]inventory.InventoryTransaction, error) {
	txs := make([]inventory.InventoryTransaction, 0)
	err := r.db.WithContext(ctx).
		Model(&inventory.InventoryTransaction{}).
		Select("inventory_transactions.*, users.username AS user_name").
		Joins("LEFT JOIN users ON users.id = inventory_transactions.user_id").
		Where("inventory_transactions.inventory_item_id = ?", itemID).
		Order("inventory_transactions.transaction_date DESC").
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

func (r *GormInventoryTransactionRepository) CountByItemID(ctx context.Context, itemID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&inventory.InventoryTransaction{}).
		Where("inventory_item_id = ?", itemID).
		Count(&count).Error
	return count, err
}

// DeleteByItemID removes an item's history; only used when the item itself is deleted
func (r *GormInventoryTransactionRepository) DeleteByItemID(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("inventory_item_id = ?", itemID).
		Delete(&inventory.InventoryTransaction{}).Error
}

var _ inventory.InventoryTransactionRepository = (*GormInventoryTransactionRepository)(nil)
