package event

import (
	"context"

	"github.com/tims/backend/internal/domain/shared"
)

// HandlerFunc adapts a function to shared.EventHandler
type HandlerFunc struct {
	Types []string
	Fn    func(ctx context.Context, evt shared.DomainEvent) error
}

// NewHandlerFunc builds a handler for the given event types
func NewHandlerFunc(fn func(ctx context.Context, evt shared.DomainEvent) error, eventTypes ...string) *HandlerFunc {
	return &HandlerFunc{Types: eventTypes, Fn: fn}
}

func (h *HandlerFunc) Handle(ctx context.Context, evt shared.DomainEvent) error {
	return h.Fn(ctx, evt)
}

func (h *HandlerFunc) EventTypes() []string {
	return h.Types
}
