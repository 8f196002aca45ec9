package inventory

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tims/backend/internal/domain/inventory"
	"github.com/tims/backend/internal/domain/shared"
	"github.com/tims/backend/internal/infrastructure/webhook"
)

// StatsCacheInvalidator drops the cached overview on every item or stock mutation
type StatsCacheInvalidator struct {
	cache  StatsCache
	logger *zap.Logger
}

// NewStatsCacheInvalidator creates a new StatsCacheInvalidator
func NewStatsCacheInvalidator(cache StatsCache, logger *zap.Logger) *StatsCacheInvalidator {
	return &StatsCacheInvalidator{cache: cache, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *StatsCacheInvalidator) EventTypes() []string {
	return []string{
		inventory.EventTypeItemCreated,
		inventory.EventTypeItemUpdated,
		inventory.EventTypeItemDeleted,
		inventory.EventTypeStockChanged,
	}
}

// Handle invalidates the cache
func (h *StatsCacheInvalidator) Handle(ctx context.Context, event shared.DomainEvent) error {
	if err := h.cache.Invalidate(ctx); err != nil {
		return fmt.Errorf("invalidate stats cache after %s: %w", event.EventType(), err)
	}
	h.logger.Debug("stats cache invalidated", zap.String("event_type", event.EventType()))
	return nil
}

// LowStockSender delivers low-stock payloads to an external endpoint
type LowStockSender interface {
	Send(ctx context.Context, payload webhook.LowStockPayload) error
}

// LowStockWebhookHandler forwards committed low-stock alerts to the webhook.
// Delivery runs in the background so a slow endpoint never holds up the
// request that raised the alert.
type LowStockWebhookHandler struct {
	sender  LowStockSender
	timeout time.Duration
	logger  *zap.Logger
	async   bool
}

// NewLowStockWebhookHandler creates a new LowStockWebhookHandler
func NewLowStockWebhookHandler(sender LowStockSender, timeout time.Duration, logger *zap.Logger) *LowStockWebhookHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &LowStockWebhookHandler{
		sender:  sender,
		timeout: timeout,
		logger:  logger,
		async:   true,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockWebhookHandler) EventTypes() []string {
	return []string{inventory.EventTypeLowStock}
}

// Handle builds the payload and sends it
func (h *LowStockWebhookHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	alert, ok := event.(*inventory.LowStockAlertedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeLowStock, event.EventType())
	}

	payload := webhook.LowStockPayload{
		Event:          webhook.EventLowStock,
		NotificationID: alert.NotificationID,
		Title:          alert.Title,
		Message:        alert.Message,
		ItemID:         alert.AggregateID(),
		ItemName:       alert.ItemName,
		StockLevel:     alert.StockLevel,
		ReorderPoint:   alert.ReorderPoint,
		CreatedAt:      alert.AlertedAt,
	}

	deliver := func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
		defer cancel()
		if err := h.sender.Send(sendCtx, payload); err != nil {
			h.logger.Warn("low-stock webhook delivery failed",
				zap.String("item_id", payload.ItemID.String()),
				zap.String("notification_id", payload.NotificationID.String()),
				zap.Error(err),
			)
		}
	}

	if h.async {
		go deliver()
		return nil
	}
	deliver()
	return nil
}

// MetricsRecorder receives inventory business measurements
type MetricsRecorder interface {
	RecordTransaction(ctx context.Context, txType, category string, quantity, newStock int)
	RecordLowStockAlert(ctx context.Context, category string)
}

// MetricsHandler turns stock events into business metrics
type MetricsHandler struct {
	metrics MetricsRecorder
}

// NewMetricsHandler creates a new MetricsHandler
func NewMetricsHandler(metrics MetricsRecorder) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// EventTypes returns the event types this handler is interested in
func (h *MetricsHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockChanged, inventory.EventTypeLowStock}
}

// Handle records the event
func (h *MetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *inventory.StockChangedEvent:
		h.metrics.RecordTransaction(ctx, e.TransactionType.String(), e.Category, e.Quantity, e.NewStock)
	case *inventory.LowStockAlertedEvent:
		h.metrics.RecordLowStockAlert(ctx, e.Category)
	}
	return nil
}
