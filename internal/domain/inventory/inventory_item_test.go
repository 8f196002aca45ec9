package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tims/backend/internal/domain/shared"
)

func validAttributes() ItemAttributes {
	return ItemAttributes{
		Name:         "Cisco ASR 920 Router",
		Category:     "Routers",
		SerialNumber: "ASR-0001",
		Location:     "Rack A3",
		Status:       ItemStatusAvailable,
		StockLevel:   6,
		ReorderPoint: 5,
	}
}

func TestNewInventoryItem(t *testing.T) {
	t.Run("creates item with initial purchase change", func(t *testing.T) {
		item, change, err := NewInventoryItem(validAttributes())

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, item.ID)
		assert.Equal(t, 1, item.Version)
		assert.Equal(t, 6, item.StockLevel)
		require.NotNil(t, item.SerialNumber)
		assert.Equal(t, "ASR-0001", *item.SerialNumber)

		assert.Equal(t, TransactionTypePurchase, change.Type)
		assert.Equal(t, 0, change.PreviousStock)
		assert.Equal(t, 6, change.NewStock)
		assert.Equal(t, 6, change.Quantity)
		assert.False(t, change.CrossedReorderPoint)
		require.Len(t, item.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeItemCreated, item.GetDomainEvents()[0].EventType())
	})

	t.Run("initial stock at reorder point counts as crossing", func(t *testing.T) {
		attrs := validAttributes()
		attrs.StockLevel = 5

		_, change, err := NewInventoryItem(attrs)

		require.NoError(t, err)
		assert.True(t, change.CrossedReorderPoint)
	})

	t.Run("blank serial is stored as null", func(t *testing.T) {
		attrs := validAttributes()
		attrs.SerialNumber = "  "

		item, _, err := NewInventoryItem(attrs)

		require.NoError(t, err)
		assert.Nil(t, item.SerialNumber)
		assert.Equal(t, "No S/N", item.SerialOrPlaceholder())
	})

	t.Run("defaults status to available", func(t *testing.T) {
		attrs := validAttributes()
		attrs.Status = ""

		item, _, err := NewInventoryItem(attrs)

		require.NoError(t, err)
		assert.Equal(t, ItemStatusAvailable, item.Status)
	})

	invalid := []struct {
		name   string
		mutate func(*ItemAttributes)
		msg    string
	}{
		{"missing name", func(a *ItemAttributes) { a.Name = "" }, "Name is required"},
		{"missing category", func(a *ItemAttributes) { a.Category = " " }, "Category is required"},
		{"bad status", func(a *ItemAttributes) { a.Status = "lost" }, "Invalid status"},
		{"negative stock", func(a *ItemAttributes) { a.StockLevel = -1 }, "Stock level"},
		{"negative reorder point", func(a *ItemAttributes) { a.ReorderPoint = -1 }, "Reorder point"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			attrs := validAttributes()
			tt.mutate(&attrs)

			item, _, err := NewInventoryItem(attrs)

			require.Error(t, err)
			assert.Nil(t, item)
			assert.ErrorIs(t, err, shared.ErrValidation)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestInventoryItem_Update(t *testing.T) {
	t.Run("stock increase is a purchase", func(t *testing.T) {
		item, _, err := NewInventoryItem(validAttributes())
		require.NoError(t, err)
		attrs := validAttributes()
		attrs.StockLevel = 10

		change, err := item.Update(attrs)

		require.NoError(t, err)
		assert.Equal(t, TransactionTypePurchase, change.Type)
		assert.Equal(t, 4, change.Quantity)
		assert.True(t, change.Changed())
		assert.False(t, change.CrossedReorderPoint)
	})

	t.Run("stock decrease across threshold is an adjustment and crosses", func(t *testing.T) {
		item, _, err := NewInventoryItem(validAttributes())
		require.NoError(t, err)
		attrs := validAttributes()
		attrs.StockLevel = 2

		change, err := item.Update(attrs)

		require.NoError(t, err)
		assert.Equal(t, TransactionTypeAdjustment, change.Type)
		assert.Equal(t, 4, change.Quantity)
		assert.Equal(t, 6, change.PreviousStock)
		assert.Equal(t, 2, change.NewStock)
		assert.True(t, change.CrossedReorderPoint)
		assert.Equal(t, 2, item.StockLevel)
	})

	t.Run("unchanged stock records nothing", func(t *testing.T) {
		item, _, err := NewInventoryItem(validAttributes())
		require.NoError(t, err)
		attrs := validAttributes()
		attrs.Location = "Rack B1"

		change, err := item.Update(attrs)

		require.NoError(t, err)
		assert.False(t, change.Changed())
		assert.Equal(t, "Rack B1", item.Location)
	})

	t.Run("invalid update leaves item untouched", func(t *testing.T) {
		item, _, err := NewInventoryItem(validAttributes())
		require.NoError(t, err)
		attrs := validAttributes()
		attrs.Name = ""
		attrs.StockLevel = 1

		_, err = item.Update(attrs)

		require.Error(t, err)
		assert.Equal(t, "Cisco ASR 920 Router", item.Name)
		assert.Equal(t, 6, item.StockLevel)
	})
}

func TestInventoryItem_ApplyTransaction(t *testing.T) {
	item, _, err := NewInventoryItem(validAttributes())
	require.NoError(t, err)
	item.ClearDomainEvents()

	change, err := item.ApplyTransaction(TransactionTypeSale, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, item.StockLevel)
	assert.True(t, change.CrossedReorderPoint)
	assert.True(t, item.IsLowStock())
	require.Len(t, item.GetDomainEvents(), 1)
	evt, ok := item.GetDomainEvents()[0].(*StockChangedEvent)
	require.True(t, ok)
	assert.Equal(t, 6, evt.PreviousStock)
	assert.Equal(t, 4, evt.NewStock)

	change, err = item.ApplyTransaction(TransactionTypeSale, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, item.StockLevel)
	assert.False(t, change.CrossedReorderPoint)

	_, err = item.ApplyTransaction(TransactionTypeSale, 10)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Equal(t, 3, item.StockLevel)
}

func TestNewInventoryTransaction(t *testing.T) {
	userID := uuid.New()
	change := StockChange{Type: TransactionTypeSale, Quantity: 2, PreviousStock: 6, NewStock: 4}

	tx, err := NewInventoryTransaction(uuid.New(), change, &userID, "walk-in")

	require.NoError(t, err)
	assert.Equal(t, TransactionTypeSale, tx.TransactionType)
	assert.Equal(t, 2, tx.Quantity)
	assert.Equal(t, 6, tx.PreviousStock)
	assert.Equal(t, 4, tx.NewStock)
	assert.Equal(t, &userID, tx.UserID)
	assert.False(t, tx.TransactionDate.IsZero())

	_, err = NewInventoryTransaction(uuid.Nil, change, nil, "")
	assert.Error(t, err)
}
