package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/tims/backend/internal/domain/inventory"
	"github.com/tims/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const itemWithSupplierColumns = "inventory_items.*, suppliers.name AS supplier_name"

// GormInventoryItemRepository implements InventoryItemRepository using GORM
type GormInventoryItemRepository struct {
	db *gorm.DB
}

// NewGormInventoryItemRepository creates a new GormInventoryItemRepository
func NewGormInventoryItemRepository(db *gorm.DB) *GormInventoryItemRepository {
	return &GormInventoryItemRepository{db: db}
}

func (r *GormInventoryItemRepository) withSupplier(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&inventory.InventoryItem{}).
		Select(itemWithSupplierColumns).
		Joins("LEFT JOIN suppliers ON suppliers.id = inventory_items.supplier_id")
}

// FindByID finds an item by ID, including its supplier name
func (r *GormInventoryItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	var item inventory.InventoryItem
	if err := r.withSupplier(ctx).Where("inventory_items.id = ?", id).Take(&item).Error; err != nil {
		return nil, translateError(err, "Inventory item")
	}
	return &item, nil
}

// FindByIDForUpdate loads the bare row with SELECT ... FOR UPDATE. PostgreSQL
// rejects FOR UPDATE on the nullable side of an outer join, so the supplier
// name is not loaded here.
func (r *GormInventoryItemRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	var item inventory.InventoryItem
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&item).Error; err != nil {
		return nil, translateError(err, "Inventory item")
	}
	return &item, nil
}

// FindAll lists items matching filter, most recently updated first
func (r *GormInventoryItemRepository) FindAll(ctx context.Context, filter inventory.ItemFilter) ([]inventory.InventoryItem, error) {
	query := r.withSupplier(ctx)

	if filter.Category != "" {
		query = query.Where("inventory_items.category = ?", filter.Category)
	}
	if filter.Status != "" {
		query = query.Where("inventory_items.status = ?", filter.Status)
	}
	if filter.SupplierID != nil {
		query = query.Where("inventory_items.supplier_id = ?", *filter.SupplierID)
	}
	if filter.LowStockOnly {
		query = query.Where("inventory_items.stock_level <= inventory_items.reorder_point")
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where(
			"LOWER(inventory_items.name) LIKE ?"+likeEscape+
				" OR LOWER(inventory_items.serial_number) LIKE ?"+likeEscape+
				" OR LOWER(suppliers.name) LIKE ?"+likeEscape,
			p, p, p,
		)
	}

	items := make([]inventory.InventoryItem, 0)
	if err := query.Order("inventory_items.updated_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindBySupplier lists a supplier's items by name
func (r *GormInventoryItemRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]inventory.InventoryItem, error) {
	items := make([]inventory.InventoryItem, 0)
	if err := r.withSupplier(ctx).
		Where("inventory_items.supplier_id = ?", supplierID).
		Order("inventory_items.name ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ExistsBySerialNumber checks serial uniqueness, optionally ignoring one item
func (r *GormInventoryItemRepository) ExistsBySerialNumber(ctx context.Context, serial string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&inventory.InventoryItem{}).Where("serial_number = ?", serial)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountBySupplier counts items linked to a supplier
func (r *GormInventoryItemRepository) CountBySupplier(ctx context.Context, supplierID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&inventory.InventoryItem{}).
		Where("supplier_id = ?", supplierID).
		Count(&count).Error
	return count, err
}

// Create inserts a new item
func (r *GormInventoryItemRepository) Create(ctx context.Context, item *inventory.InventoryItem) error {
	return translateError(r.db.WithContext(ctx).Create(item).Error, "Inventory item")
}

// SaveWithLock writes every mutable column guarded by the version the item
// was loaded with. On success the in-memory version is bumped to match.
func (r *GormInventoryItemRepository) SaveWithLock(ctx context.Context, item *inventory.InventoryItem) error {
	result := r.db.WithContext(ctx).
		Model(&inventory.InventoryItem{}).
		Where("id = ? AND version = ?", item.ID, item.Version).
		Updates(map[string]any{
			"name":          item.Name,
			"category":      item.Category,
			"description":   item.Description,
			"serial_number": item.SerialNumber,
			"location":      item.Location,
			"status":        item.Status,
			"stock_level":   item.StockLevel,
			"reorder_point": item.ReorderPoint,
			"supplier_id":   item.SupplierID,
			"version":       item.Version + 1,
			"updated_at":    item.UpdatedAt,
		})

	if result.Error != nil {
		return translateError(result.Error, "Inventory item")
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeOptimisticLock, "Inventory item was modified by another transaction")
	}
	item.Version++
	return nil
}

// Delete removes an item
func (r *GormInventoryItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&inventory.InventoryItem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Inventory item")
	}
	return nil
}

type stockTotals struct {
	TotalItems    int64
	LowStockCount int64
	TotalStock    int64
}

// Stats computes totals and the per-category breakdown, largest category first
func (r *GormInventoryItemRepository) Stats(ctx context.Context) (*inventory.Stats, error) {
	var totals stockTotals
	if err := r.db.WithContext(ctx).
		Model(&inventory.InventoryItem{}).
		Select(`COUNT(*) AS total_items,
			COALESCE(SUM(CASE WHEN stock_level <= reorder_point THEN 1 ELSE 0 END), 0) AS low_stock_count,
			COALESCE(SUM(stock_level), 0) AS total_stock`).
		Scan(&totals).Error; err != nil {
		return nil, err
	}

	byCategory := make([]inventory.CategoryCount, 0)
	if err := r.db.WithContext(ctx).
		Model(&inventory.InventoryItem{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("count DESC, category ASC").
		Scan(&byCategory).Error; err != nil {
		return nil, err
	}

	return &inventory.Stats{
		TotalItems:    totals.TotalItems,
		LowStockCount: totals.LowStockCount,
		TotalStock:    totals.TotalStock,
		ByCategory:    byCategory,
	}, nil
}

var _ inventory.InventoryItemRepository = (*GormInventoryItemRepository)(nil)
