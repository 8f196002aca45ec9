package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/tims/backend/internal/domain/partner"
	"github.com/tims/backend/internal/domain/shared"
	"gorm.io/gorm"
)

const supplierWithPendingColumns = `suppliers.*, (
	SELECT COUNT(*) FROM orders
	WHERE orders.supplier_id = suppliers.id AND orders.status = 'pending'
) AS pending_orders`

// GormSupplierRepository implements SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

func (r *GormSupplierRepository) withPending(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&partner.Supplier{}).Select(supplierWithPendingColumns)
}

// FindByID loads a supplier with its pending order count
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	var s partner.Supplier
	if err := r.withPending(ctx).Where("suppliers.id = ?", id).Take(&s).Error; err != nil {
		return nil, translateError(err, "Supplier")
	}
	return &s, nil
}

// FindAll lists suppliers alphabetically
func (r *GormSupplierRepository) FindAll(ctx context.Context, filter partner.SupplierFilter) ([]partner.Supplier, error) {
	query := r.withPending(ctx)
	if filter.Status != "" {
		query = query.Where("suppliers.status = ?", filter.Status)
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where(
			"LOWER(suppliers.name) LIKE ?"+likeEscape+
				" OR LOWER(suppliers.contact_person) LIKE ?"+likeEscape+
				" OR LOWER(suppliers.email) LIKE ?"+likeEscape,
			p, p, p,
		)
	}

	suppliers := make([]partner.Supplier, 0)
	if err := query.Order("suppliers.name ASC").Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}

func (r *GormSupplierRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&partner.Supplier{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormSupplierRepository) Create(ctx context.Context, s *partner.Supplier) error {
	return translateError(r.db.WithContext(ctx).Create(s).Error, "Supplier")
}

// Save writes all columns of an existing supplier
func (r *GormSupplierRepository) Save(ctx context.Context, s *partner.Supplier) error {
	result := r.db.WithContext(ctx).
		Model(&partner.Supplier{}).
		Where("id = ?", s.ID).
		Updates(map[string]any{
			"name":           s.Name,
			"contact_person": s.ContactPerson,
			"email":          s.Email,
			"phone":          s.Phone,
			"address":        s.Address,
			"status":         s.Status,
			"version":        s.Version,
			"updated_at":     s.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error, "Supplier")
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Supplier")
	}
	return nil
}

// Delete removes the supplier and its orders atomically
func (r *GormSupplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("supplier_id = ?", id).Delete(&partner.Order{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&partner.Supplier{}, "id = ?", id)
		if result.Error != nil {
			return translateDeleteError(result.Error, "Supplier",
				"Cannot delete supplier with associated inventory items")
		}
		if result.RowsAffected == 0 {
			return shared.NewNotFoundError("Supplier")
		}
		return nil
	})
}

var _ partner.SupplierRepository = (*GormSupplierRepository)(nil)
