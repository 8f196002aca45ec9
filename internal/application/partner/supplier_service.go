package partner

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appshared "github.com/tims/backend/internal/application/shared"
	"github.com/tims/backend/internal/domain/inventory"
	"github.com/tims/backend/internal/domain/partner"
	"github.com/tims/backend/internal/domain/shared"
)

// SupplierService handles supplier management
type SupplierService struct {
	supplierRepo   partner.SupplierRepository
	orderRepo      partner.OrderRepository
	itemRepo       inventory.InventoryItemRepository
	scope          appshared.TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(
	supplierRepo partner.SupplierRepository,
	orderRepo partner.OrderRepository,
	itemRepo inventory.InventoryItemRepository,
	scope appshared.TransactionScope,
	logger *zap.Logger,
) *SupplierService {
	return &SupplierService{
		supplierRepo: supplierRepo,
		orderRepo:    orderRepo,
		itemRepo:     itemRepo,
		scope:        scope,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *SupplierService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// List returns suppliers alphabetically with their pending order counts
func (s *SupplierService) List(ctx context.Context, filter SupplierFilter) (shared.ListResult[SupplierResponse], error) {
	status := partner.SupplierStatus(filter.Status)
	if status != "" && !status.IsValid() {
		return shared.ListResult[SupplierResponse]{}, shared.NewValidationError("Invalid status filter")
	}
	suppliers, err := s.supplierRepo.FindAll(ctx, partner.SupplierFilter{Status: status, Search: filter.Search})
	if err != nil {
		return shared.ListResult[SupplierResponse]{}, err
	}
	return shared.NewListResult(ToSupplierResponses(suppliers)), nil
}

// Get returns a supplier with its items and orders
func (s *SupplierService) Get(ctx context.Context, id uuid.UUID) (*SupplierDetailResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.itemRepo.FindBySupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.FindBySupplier(ctx, id)
	if err != nil {
		return nil, err
	}

	return &SupplierDetailResponse{
		SupplierResponse: ToSupplierResponse(supplier),
		InventoryItems:   toSupplierItems(items),
		Orders:           ToOrderResponses(orders),
	}, nil
}

// Create registers a supplier
func (s *SupplierService) Create(ctx context.Context, input SupplierInput) (*SupplierResponse, error) {
	supplier, err := partner.NewSupplier(input.attributes())
	if err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, err
	}

	s.logger.Info("Supplier created",
		zap.String("supplier_id", supplier.ID.String()),
		zap.String("name", supplier.Name))
	s.publish(ctx, supplier.GetDomainEvents()...)
	supplier.ClearDomainEvents()

	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Update replaces a supplier's fields
func (s *SupplierService) Update(ctx context.Context, id uuid.UUID, input SupplierInput) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := supplier.Update(input.attributes()); err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}

	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Delete removes a supplier and its orders. A supplier still referenced by
// inventory items is a conflict.
func (s *SupplierService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		exists, err := repos.SupplierRepo().ExistsByID(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return shared.NewNotFoundError("Supplier")
		}

		count, err := repos.ItemRepo().CountBySupplier(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return shared.NewDomainError(shared.CodeConflict,
				"Cannot delete supplier with associated inventory items")
		}
		return repos.SupplierRepo().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Supplier deleted", zap.String("supplier_id", id.String()))
	return nil
}

func (s *SupplierService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish supplier events", zap.Error(err))
	}
}
