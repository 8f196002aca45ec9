package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/tims/backend/internal/domain/partner"
	"github.com/tims/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) withNames(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&partner.Order{}).
		Select("orders.*, users.username AS created_by, suppliers.name AS supplier_name").
		Joins("LEFT JOIN users ON users.id = orders.user_id").
		Joins("LEFT JOIN suppliers ON suppliers.id = orders.supplier_id")
}

// FindByID loads an order with creator and supplier names
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Order, error) {
	var o partner.Order
	if err := r.withNames(ctx).Where("orders.id = ?", id).Take(&o).Error; err != nil {
		return nil, translateError(err, "Order")
	}
	return &o, nil
}

// FindBySupplier lists a supplier's orders newest first
func (r *GormOrderRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]partner.Order, error) {
	orders := make([]partner.Order, 0)
	if err := r.withNames(ctx).
		Where("orders.supplier_id = ?", supplierID).
		Order("orders.created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormOrderRepository) Create(ctx context.Context, o *partner.Order) error {
	return translateError(r.db.WithContext(ctx).Create(o).Error, "Order")
}

// Save persists status and notes changes
func (r *GormOrderRepository) Save(ctx context.Context, o *partner.Order) error {
	result := r.db.WithContext(ctx).
		Model(&partner.Order{}).
		Where("id = ?", o.ID).
		Updates(map[string]any{
			"status":     o.Status,
			"notes":      o.Notes,
			"version":    o.Version,
			"updated_at": o.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Order")
	}
	return nil
}

var _ partner.OrderRepository = (*GormOrderRepository)(nil)
