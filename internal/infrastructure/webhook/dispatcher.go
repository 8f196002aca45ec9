// Package webhook posts low-stock alerts to an external endpoint.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/tims/backend/internal/infrastructure/config"
)

// Delivery outcomes reported to the outcome callback.
const (
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"
	OutcomeRejected  = "rejected" // breaker open
)

// ErrCircuitOpen is returned while the breaker refuses calls.
var ErrCircuitOpen = errors.New("webhook circuit breaker is open")

// LowStockPayload is the JSON body POSTed for every low-stock notification.
type LowStockPayload struct {
	Event          string    `json:"event"`
	NotificationID uuid.UUID `json:"notification_id"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	ItemID         uuid.UUID `json:"item_id"`
	ItemName       string    `json:"item_name"`
	StockLevel     int       `json:"stock_level"`
	ReorderPoint   int       `json:"reorder_point"`
	CreatedAt      time.Time `json:"created_at"`
}

// EventLowStock is the event name sent in LowStockPayload.Event.
const EventLowStock = "inventory.low_stock"

// Dispatcher sends payloads through a circuit breaker.
type Dispatcher struct {
	url       string
	client    *resty.Client
	breaker   *gobreaker.CircuitBreaker
	logger    *zap.Logger
	onOutcome func(context.Context, string)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithOutcomeHook registers a callback invoked after every attempt.
func WithOutcomeHook(fn func(context.Context, string)) Option {
	return func(d *Dispatcher) { d.onOutcome = fn }
}

// NewDispatcher builds a dispatcher for cfg.LowStockURL.
func NewDispatcher(cfg config.WebhookConfig, logger *zap.Logger, opts ...Option) *Dispatcher {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	d := &Dispatcher{
		url: cfg.LowStockURL,
		client: resty.New().
			SetTimeout(cfg.Timeout).
			SetRetryCount(0).
			SetHeader("Content-Type", "application/json").
			SetHeader("User-Agent", "tims-webhook/1.0"),
		logger: logger,
	}
	d.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "low-stock-webhook",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				zap.String("circuit", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Send posts payload. Non-2xx responses count as failures.
func (d *Dispatcher) Send(ctx context.Context, payload LowStockPayload) error {
	if payload.Event == "" {
		payload.Event = EventLowStock
	}

	_, err := d.breaker.Execute(func() (interface{}, error) {
		resp, err := d.client.R().
			SetContext(ctx).
			SetHeader("X-Request-ID", uuid.NewString()).
			SetBody(payload).
			Post(d.url)
		if err != nil {
			return nil, fmt.Errorf("post webhook: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("webhook responded with status %d", resp.StatusCode())
		}
		return resp, nil
	})

	switch {
	case err == nil:
		d.report(ctx, OutcomeDelivered)
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		d.report(ctx, OutcomeRejected)
		return ErrCircuitOpen
	default:
		d.report(ctx, OutcomeFailed)
		return err
	}
}

// State returns the breaker state (closed, half-open, open).
func (d *Dispatcher) State() string {
	return d.breaker.State().String()
}

func (d *Dispatcher) report(ctx context.Context, outcome string) {
	if d.onOutcome != nil {
		d.onOutcome(ctx, outcome)
	}
}
