package partner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tims/backend/internal/domain/shared"
)

func TestNewOrder(t *testing.T) {
	userID := uuid.New()

	o, err := NewOrder(uuid.New(), nil, decimal.RequireFromString("1499.999"), &userID, "rush")

	require.NoError(t, err)
	assert.Equal(t, OrderStatusPending, o.Status)
	assert.True(t, decimal.RequireFromString("1500").Equal(o.TotalAmount))
	assert.Equal(t, o.CreatedAt, o.OrderDate)

	_, err = NewOrder(uuid.Nil, nil, decimal.Zero, nil, "")
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = NewOrder(uuid.New(), nil, decimal.NewFromInt(-1), nil, "")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestOrder_ChangeStatus(t *testing.T) {
	newOrder := func(t *testing.T) *Order {
		o, err := NewOrder(uuid.New(), nil, decimal.Zero, nil, "original")
		require.NoError(t, err)
		return o
	}

	t.Run("keeps notes when none supplied", func(t *testing.T) {
		o := newOrder(t)

		require.NoError(t, o.ChangeStatus(OrderStatusShipped, nil))

		assert.Equal(t, OrderStatusShipped, o.Status)
		assert.Equal(t, "original", o.Notes)
	})

	t.Run("replaces notes when supplied", func(t *testing.T) {
		o := newOrder(t)
		notes := "tracking 1Z999"

		require.NoError(t, o.ChangeStatus(OrderStatusShipped, &notes))

		assert.Equal(t, "tracking 1Z999", o.Notes)
	})

	t.Run("rejects leaving a terminal status", func(t *testing.T) {
		o := newOrder(t)
		require.NoError(t, o.ChangeStatus(OrderStatusDelivered, nil))

		err := o.ChangeStatus(OrderStatusPending, nil)

		assert.ErrorIs(t, err, shared.ErrInvalidState)
		assert.Equal(t, OrderStatusDelivered, o.Status)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		o := newOrder(t)

		err := o.ChangeStatus("lost", nil)

		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}
