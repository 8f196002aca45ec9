package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Attribute keys shared by the inventory instruments.
const (
	AttrTransactionType = attribute.Key("transaction_type")
	AttrCategory        = attribute.Key("category")
	AttrOrderStatus     = attribute.Key("order_status")
	AttrOutcome         = attribute.Key("outcome")
)

// InventoryMetrics holds the business instruments recorded by the event subscribers.
type InventoryMetrics struct {
	transactions      *Counter
	unitsMoved        *Counter
	lowStockAlerts    *Counter
	ordersCreated     *Counter
	orderTransitions  *Counter
	webhookDeliveries *Counter
	stockLevel        *Gauge
}

// NewInventoryMetrics registers the inventory instruments on meter.
func NewInventoryMetrics(meter metric.Meter) (*InventoryMetrics, error) {
	var (
		m   InventoryMetrics
		err error
	)
	if m.transactions, err = NewCounter(meter, "tims.stock.transactions", "Stock transactions applied", "{transaction}"); err != nil {
		return nil, err
	}
	if m.unitsMoved, err = NewCounter(meter, "tims.stock.units", "Units moved by stock transactions", "{unit}"); err != nil {
		return nil, err
	}
	if m.lowStockAlerts, err = NewCounter(meter, "tims.stock.low_alerts", "Low-stock alerts raised", "{alert}"); err != nil {
		return nil, err
	}
	if m.ordersCreated, err = NewCounter(meter, "tims.orders.created", "Supplier orders created", "{order}"); err != nil {
		return nil, err
	}
	if m.orderTransitions, err = NewCounter(meter, "tims.orders.status_changes", "Supplier order status changes", "{change}"); err != nil {
		return nil, err
	}
	if m.webhookDeliveries, err = NewCounter(meter, "tims.webhook.deliveries", "Low-stock webhook delivery attempts", "{delivery}"); err != nil {
		return nil, err
	}
	if m.stockLevel, err = NewGauge(meter, "tims.stock.level", "Stock level after the last change", "{unit}"); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordTransaction counts one applied stock transaction and the units it moved.
func (m *InventoryMetrics) RecordTransaction(ctx context.Context, txType, category string, quantity, newStock int) {
	attrs := []attribute.KeyValue{AttrTransactionType.String(txType), AttrCategory.String(category)}
	m.transactions.Inc(ctx, attrs...)
	if quantity < 0 {
		quantity = -quantity
	}
	m.unitsMoved.Add(ctx, int64(quantity), attrs...)
	m.stockLevel.Record(ctx, int64(newStock), AttrCategory.String(category))
}

// RecordLowStockAlert counts one low-stock notification.
func (m *InventoryMetrics) RecordLowStockAlert(ctx context.Context, category string) {
	m.lowStockAlerts.Inc(ctx, AttrCategory.String(category))
}

// RecordOrderCreated counts a newly placed supplier order.
func (m *InventoryMetrics) RecordOrderCreated(ctx context.Context) {
	m.ordersCreated.Inc(ctx)
}

// RecordOrderStatus counts an order moving into status.
func (m *InventoryMetrics) RecordOrderStatus(ctx context.Context, status string) {
	m.orderTransitions.Inc(ctx, AttrOrderStatus.String(status))
}

// RecordWebhookDelivery counts a webhook attempt by outcome (delivered, failed, rejected).
func (m *InventoryMetrics) RecordWebhookDelivery(ctx context.Context, outcome string) {
	m.webhookDeliveries.Inc(ctx, AttrOutcome.String(outcome))
}
