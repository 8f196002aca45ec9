package partner

import (
	"context"

	"github.com/tims/backend/internal/domain/partner"
	"github.com/tims/backend/internal/domain/shared"
)

// OrderMetricsRecorder receives order measurements
type OrderMetricsRecorder interface {
	RecordOrderCreated(ctx context.Context)
	RecordOrderStatus(ctx context.Context, status string)
}

// OrderMetricsHandler counts order creations and status changes
type OrderMetricsHandler struct {
	metrics OrderMetricsRecorder
}

// NewOrderMetricsHandler creates a new OrderMetricsHandler
func NewOrderMetricsHandler(metrics OrderMetricsRecorder) *OrderMetricsHandler {
	return &OrderMetricsHandler{metrics: metrics}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderMetricsHandler) EventTypes() []string {
	return []string{partner.EventTypeOrderStatusChanged}
}

// Handle records the event. An empty previous status marks a new order.
func (h *OrderMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*partner.OrderStatusChangedEvent)
	if !ok {
		return nil
	}
	if e.PreviousStatus == "" {
		h.metrics.RecordOrderCreated(ctx)
		return nil
	}
	h.metrics.RecordOrderStatus(ctx, string(e.Status))
	return nil
}
