package inventory

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appshared "github.com/tims/backend/internal/application/shared"
	"github.com/tims/backend/internal/domain/inventory"
	"github.com/tims/backend/internal/domain/notification"
	"github.com/tims/backend/internal/domain/shared"
	"github.com/tims/backend/internal/infrastructure/telemetry"
)

// StatsCache stores the computed inventory overview. Invalidate bumps the
// generation; Set drops values computed under an older generation.
type StatsCache interface {
	Get(ctx context.Context) (*inventory.Stats, bool, error)
	Generation(ctx context.Context) (int64, error)
	Set(ctx context.Context, generation int64, stats *inventory.Stats) error
	Invalidate(ctx context.Context) error
}

// InventoryService handles inventory items and their stock transactions.
// Every write goes through the transaction scope; events are published only
// after the scope commits.
type InventoryService struct {
	itemRepo        inventory.InventoryItemRepository
	transactionRepo inventory.InventoryTransactionRepository
	scope           appshared.TransactionScope
	cache           StatsCache
	eventPublisher  shared.EventPublisher
	logger          *zap.Logger
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(
	itemRepo inventory.InventoryItemRepository,
	transactionRepo inventory.InventoryTransactionRepository,
	scope appshared.TransactionScope,
	logger *zap.Logger,
) *InventoryService {
	return &InventoryService{
		itemRepo:        itemRepo,
		transactionRepo: transactionRepo,
		scope:           scope,
		logger:          logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *InventoryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetStatsCache enables caching of the stats overview
func (s *InventoryService) SetStatsCache(cache StatsCache) {
	s.cache = cache
}

// List returns items matching filter, most recently updated first
func (s *InventoryService) List(ctx context.Context, filter ListFilter) (shared.ListResult[ItemResponse], error) {
	if filter.Status != "" && !inventory.ItemStatus(filter.Status).IsValid() {
		return shared.ListResult[ItemResponse]{}, shared.NewValidationError("Invalid status filter")
	}
	items, err := s.itemRepo.FindAll(ctx, filter.toDomain())
	if err != nil {
		return shared.ListResult[ItemResponse]{}, err
	}
	return shared.NewListResult(ToItemResponses(items)), nil
}

// Get returns one item with its supplier name
func (s *InventoryService) Get(ctx context.Context, id uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// Create registers an item. Initial stock is logged as a purchase from zero
// and an item created at or under its reorder point raises a low-stock alert.
func (s *InventoryService) Create(ctx context.Context, actorID uuid.UUID, input ItemInput) (*ItemResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "create")
	defer span.End()

	item, change, err := inventory.NewInventoryItem(input.attributes())
	if err != nil {
		return nil, err
	}

	var alert *notification.Notification
	err = s.scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		if err := checkReferences(ctx, repos, item, nil); err != nil {
			return err
		}
		if err := repos.ItemRepo().Create(ctx, item); err != nil {
			return err
		}

		if change.Quantity > 0 {
			record, err := inventory.NewInventoryTransaction(item.ID, change, actorRef(actorID), inventory.NotesInitialInventory)
			if err != nil {
				return err
			}
			if err := repos.TransactionRepo().Create(ctx, record); err != nil {
				return err
			}
			item.AddDomainEvent(inventory.NewStockChangedEvent(item, change))
		}

		if change.CrossedReorderPoint {
			alert = notification.NewLowStockAlert(item.Name, item.SerialOrPlaceholder(), item.StockLevel)
			if err := repos.NotificationRepo().Create(ctx, alert); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Inventory item created",
		zap.String("item_id", item.ID.String()),
		zap.String("category", item.Category),
		zap.Int("stock_level", item.StockLevel),
	)
	s.publishEvents(ctx, item, alert)

	return s.reload(ctx, item)
}

// Update replaces an item's attributes under the item's row lock. A stock
// level change is logged as a purchase or adjustment of the difference.
func (s *InventoryService) Update(ctx context.Context, actorID, id uuid.UUID, input ItemInput) (*ItemResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "update", telemetry.SpanAttrItemID, id)
	defer span.End()

	var (
		item  *inventory.InventoryItem
		alert *notification.Notification
	)
	err := s.scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		locked, err := repos.ItemRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		change, err := locked.Update(input.attributes())
		if err != nil {
			return err
		}
		if err := checkReferences(ctx, repos, locked, &locked.ID); err != nil {
			return err
		}
		if err := repos.ItemRepo().SaveWithLock(ctx, locked); err != nil {
			return err
		}

		if change.Changed() {
			record, err := inventory.NewInventoryTransaction(locked.ID, change, actorRef(actorID), inventory.NotesItemEdit)
			if err != nil {
				return err
			}
			if err := repos.TransactionRepo().Create(ctx, record); err != nil {
				return err
			}
		}

		if change.CrossedReorderPoint {
			alert = notification.NewLowStockAlert(locked.Name, locked.SerialOrPlaceholder(), locked.StockLevel)
			if err := repos.NotificationRepo().Create(ctx, alert); err != nil {
				return err
			}
		}
		item = locked
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, item, alert)
	return s.reload(ctx, item)
}

// Delete removes an item together with its transaction log
func (s *InventoryService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		if _, err := repos.ItemRepo().FindByIDForUpdate(ctx, id); err != nil {
			return err
		}
		if err := repos.TransactionRepo().DeleteByItemID(ctx, id); err != nil {
			return err
		}
		return repos.ItemRepo().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Inventory item deleted", zap.String("item_id", id.String()))
	s.publish(ctx, inventory.NewItemDeletedEvent(id))
	return nil
}

// RecordTransaction applies a stock transaction to one item. The read of the
// current level, the log insert and the stock write form one unit under the
// item's row lock, so concurrent transactions on the same item are serialized.
func (s *InventoryService) RecordTransaction(ctx context.Context, actorID, itemID uuid.UUID, input TransactionInput) (*RecordTransactionResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "record_transaction",
		telemetry.SpanAttrItemID, itemID,
		telemetry.SpanAttrTransactionType, input.TransactionType,
		telemetry.SpanAttrQuantity, input.Quantity,
	)
	defer span.End()

	txType := inventory.TransactionType(input.TransactionType)
	if !txType.IsValid() {
		return nil, shared.NewValidationError("Invalid transaction type")
	}

	var (
		item   *inventory.InventoryItem
		record *inventory.InventoryTransaction
		alert  *notification.Notification
		err    error
	)
	telemetry.ProfileOperation(ctx, "record_transaction", func(ctx context.Context) {
		item, record, alert, err = s.applyTransaction(ctx, actorID, itemID, txType, input)
	}, telemetry.ProfileLabelTransactionType, txType.String())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Stock transaction recorded",
		zap.String("item_id", item.ID.String()),
		zap.String("transaction_type", txType.String()),
		zap.Int("quantity", record.Quantity),
		zap.Int("previous_stock", record.PreviousStock),
		zap.Int("new_stock", record.NewStock),
		zap.Bool("low_stock_alert", alert != nil),
	)
	s.publishEvents(ctx, item, alert)
	telemetry.SetOK(span)

	return &RecordTransactionResult{
		Transaction:   ToTransactionResponse(record),
		NewStockLevel: item.StockLevel,
		LowStockAlert: alert != nil,
	}, nil
}

// applyTransaction runs the locked read-modify-write of one stock transaction.
func (s *InventoryService) applyTransaction(ctx context.Context, actorID, itemID uuid.UUID, txType inventory.TransactionType, input TransactionInput) (*inventory.InventoryItem, *inventory.InventoryTransaction, *notification.Notification, error) {
	var (
		item   *inventory.InventoryItem
		record *inventory.InventoryTransaction
		alert  *notification.Notification
	)
	err := s.scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		locked, err := repos.ItemRepo().FindByIDForUpdate(ctx, itemID)
		if err != nil {
			return err
		}

		change, err := locked.ApplyTransaction(txType, input.Quantity)
		if err != nil {
			return err
		}

		record, err = inventory.NewInventoryTransaction(locked.ID, change, actorRef(actorID), input.Notes)
		if err != nil {
			return err
		}
		if err := repos.TransactionRepo().Create(ctx, record); err != nil {
			return err
		}
		if err := repos.ItemRepo().SaveWithLock(ctx, locked); err != nil {
			return err
		}

		if change.CrossedReorderPoint {
			alert = notification.NewLowStockAlert(locked.Name, locked.SerialOrPlaceholder(), change.NewStock)
			if err := repos.NotificationRepo().Create(ctx, alert); err != nil {
				return err
			}
		}
		item = locked
		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return item, record, alert, nil
}

// Transactions returns an item's log, newest first
func (s *InventoryService) Transactions(ctx context.Context, itemID uuid.UUID) (shared.ListResult[TransactionResponse], error) {
	if _, err := s.itemRepo.FindByID(ctx, itemID); err != nil {
		return shared.ListResult[TransactionResponse]{}, err
	}
	txs, err := s.transactionRepo.FindByItemID(ctx, itemID)
	if err != nil {
		return shared.ListResult[TransactionResponse]{}, err
	}
	return shared.NewListResult(ToTransactionResponses(txs)), nil
}

// Stats returns the inventory overview, served from cache when possible
func (s *InventoryService) Stats(ctx context.Context) (*StatsResponse, error) {
	cacheable := false
	var generation int64
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("Stats cache read failed", zap.Error(err))
		} else if ok {
			resp := ToStatsResponse(cached)
			return &resp, nil
		}
		if generation, err = s.cache.Generation(ctx); err != nil {
			s.logger.Warn("Stats cache generation read failed", zap.Error(err))
		} else {
			cacheable = true
		}
	}

	stats, err := s.itemRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := s.cache.Set(ctx, generation, stats); err != nil {
			s.logger.Warn("Stats cache write failed", zap.Error(err))
		}
	}
	resp := ToStatsResponse(stats)
	return &resp, nil
}

func (s *InventoryService) reload(ctx context.Context, item *inventory.InventoryItem) (*ItemResponse, error) {
	fresh, err := s.itemRepo.FindByID(ctx, item.ID)
	if err != nil {
		// The write is committed; fall back to the in-memory state.
		s.logger.Warn("Failed to reload inventory item", zap.String("item_id", item.ID.String()), zap.Error(err))
		fresh = item
	}
	resp := ToItemResponse(fresh)
	return &resp, nil
}

func (s *InventoryService) publishEvents(ctx context.Context, item *inventory.InventoryItem, alert *notification.Notification) {
	events := item.GetDomainEvents()
	item.ClearDomainEvents()
	if alert != nil {
		events = append(events,
			notification.NewCreatedEvent(alert),
			inventory.NewLowStockAlertedEvent(item, alert.ID, alert.Title, alert.Message, alert.CreatedAt),
		)
	}
	s.publish(ctx, events...)
}

func (s *InventoryService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish inventory events", zap.Error(err))
	}
}

// checkReferences enforces serial number uniqueness and the supplier reference
func checkReferences(ctx context.Context, repos appshared.TransactionalRepositories, item *inventory.InventoryItem, excludeID *uuid.UUID) error {
	if item.SerialNumber != nil {
		taken, err := repos.ItemRepo().ExistsBySerialNumber(ctx, *item.SerialNumber, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return shared.NewDomainError(shared.CodeAlreadyExists, "Serial number already exists")
		}
	}
	if item.SupplierID != nil {
		ok, err := repos.SupplierRepo().ExistsByID(ctx, *item.SupplierID)
		if err != nil {
			return err
		}
		if !ok {
			return shared.NewValidationError("Supplier does not exist")
		}
	}
	return nil
}

func actorRef(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
