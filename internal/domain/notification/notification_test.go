package notification

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLowStockAlert(t *testing.T) {
	n := NewLowStockAlert("Fiber Patch Cable", "", 4)

	require.NotNil(t, n)
	assert.Equal(t, "Low Stock Alert", n.Title)
	assert.Equal(t, "Fiber Patch Cable (No S/N) is below reorder point. Current stock: 4", n.Message)
	assert.Equal(t, TypeLowStock, n.Type)
	assert.Nil(t, n.UserID)
	assert.False(t, n.IsRead)
}

func TestNewOrderAlerts(t *testing.T) {
	orderID := uuid.New()
	short := strings.ToUpper(orderID.String()[:8])

	created := NewOrderCreatedAlert(orderID, "Ericsson")
	assert.Equal(t, "New order #"+short+" created for Ericsson", created.Message)
	assert.Equal(t, TypeOrderUpdate, created.Type)

	updated := NewOrderStatusAlert(orderID, "Ericsson", "shipped")
	assert.Equal(t, "Order Status Updated", updated.Title)
	assert.Equal(t, "Order #"+short+" from Ericsson is now shipped", updated.Message)
}

func TestNotification_VisibleTo(t *testing.T) {
	me := uuid.New()
	other := uuid.New()

	broadcast, err := New("Maintenance", "Window tonight", TypeSystem, nil)
	require.NoError(t, err)
	mine, err := New("Hi", "Just you", TypeSystem, &me)
	require.NoError(t, err)

	assert.True(t, broadcast.VisibleTo(me))
	assert.True(t, broadcast.VisibleTo(other))
	assert.True(t, mine.VisibleTo(me))
	assert.False(t, mine.VisibleTo(other))
}

func TestNew_Validation(t *testing.T) {
	_, err := New("", "msg", TypeSystem, nil)
	assert.Error(t, err)
	_, err = New("title", "msg", "pager", nil)
	assert.Error(t, err)
}
