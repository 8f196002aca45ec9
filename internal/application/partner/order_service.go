package partner

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appshared "github.com/tims/backend/internal/application/shared"
	"github.com/tims/backend/internal/domain/notification"
	"github.com/tims/backend/internal/domain/partner"
	"github.com/tims/backend/internal/domain/shared"
	"github.com/tims/backend/internal/infrastructure/telemetry"
)

// OrderService handles purchase orders placed with suppliers
type OrderService struct {
	orderRepo      partner.OrderRepository
	supplierRepo   partner.SupplierRepository
	scope          appshared.TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo partner.OrderRepository,
	supplierRepo partner.SupplierRepository,
	scope appshared.TransactionScope,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		supplierRepo: supplierRepo,
		scope:        scope,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ListBySupplier returns a supplier's orders, newest first
func (s *OrderService) ListBySupplier(ctx context.Context, supplierID uuid.UUID) (shared.ListResult[OrderResponse], error) {
	exists, err := s.supplierRepo.ExistsByID(ctx, supplierID)
	if err != nil {
		return shared.ListResult[OrderResponse]{}, err
	}
	if !exists {
		return shared.ListResult[OrderResponse]{}, shared.NewNotFoundError("Supplier")
	}
	orders, err := s.orderRepo.FindBySupplier(ctx, supplierID)
	if err != nil {
		return shared.ListResult[OrderResponse]{}, err
	}
	return shared.NewListResult(ToOrderResponses(orders)), nil
}

// Create places a pending order and announces it to every user
func (s *OrderService) Create(ctx context.Context, actorID, supplierID uuid.UUID, input CreateOrderInput) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "create", telemetry.SpanAttrSupplierID, supplierID)
	defer span.End()

	var userID *uuid.UUID
	if actorID != uuid.Nil {
		userID = &actorID
	}
	order, err := partner.NewOrder(supplierID, input.ExpectedDeliveryDate, input.TotalAmount, userID, input.Notes)
	if err != nil {
		return nil, err
	}

	var alert *notification.Notification
	err = s.scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		supplier, err := repos.SupplierRepo().FindByID(ctx, supplierID)
		if err != nil {
			return err
		}
		if err := repos.OrderRepo().Create(ctx, order); err != nil {
			return err
		}
		alert = notification.NewOrderCreatedAlert(order.ID, supplier.Name)
		return repos.NotificationRepo().Create(ctx, alert)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("supplier_id", supplierID.String()),
		zap.String("total_amount", order.TotalAmount.StringFixed(2)),
	)
	s.publishEvents(ctx, order, alert)
	return s.reload(ctx, order)
}

// UpdateStatus moves an order to a new status and announces the change
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, input UpdateOrderStatusInput) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "update_status", telemetry.SpanAttrOrderID, orderID)
	defer span.End()

	var (
		order *partner.Order
		alert *notification.Notification
	)
	err := s.scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		found, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := found.ChangeStatus(partner.OrderStatus(input.Status), input.Notes); err != nil {
			return err
		}
		if err := repos.OrderRepo().Save(ctx, found); err != nil {
			return err
		}

		supplierName := ""
		if found.SupplierName != nil {
			supplierName = *found.SupplierName
		}
		alert = notification.NewOrderStatusAlert(found.ID, supplierName, string(found.Status))
		if err := repos.NotificationRepo().Create(ctx, alert); err != nil {
			return err
		}
		order = found
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", order.ID.String()),
		zap.String("status", string(order.Status)),
	)
	s.publishEvents(ctx, order, alert)
	return s.reload(ctx, order)
}

func (s *OrderService) reload(ctx context.Context, order *partner.Order) (*OrderResponse, error) {
	fresh, err := s.orderRepo.FindByID(ctx, order.ID)
	if err != nil {
		s.logger.Warn("Failed to reload order", zap.String("order_id", order.ID.String()), zap.Error(err))
		fresh = order
	}
	resp := ToOrderResponse(fresh)
	return &resp, nil
}

func (s *OrderService) publishEvents(ctx context.Context, order *partner.Order, alert *notification.Notification) {
	if s.eventPublisher == nil {
		return
	}
	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	if alert != nil {
		events = append(events, notification.NewCreatedEvent(alert))
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish order events", zap.Error(err))
	}
}
