package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	partnerapp "github.com/tims/backend/internal/application/partner"
	"github.com/tims/backend/internal/interfaces/http/dto"
)

func TestSupplierHandler_CreateAndGet(t *testing.T) {
	s := newTestServer(t)

	created := s.createSupplier("Northwind Networks")
	assert.Equal(t, "active", created.Status)
	assert.Zero(t, created.PendingOrders)

	item := routerItem("SN-S1", 4, 1)
	item["supplier_id"] = created.ID.String()
	stocked := s.createItem(item)
	require.NotNil(t, stocked.SupplierName)
	assert.Equal(t, "Northwind Networks", *stocked.SupplierName)

	w := s.do(http.MethodGet, "/api/v1/suppliers/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[partnerapp.SupplierDetailResponse](t, w).Data
	assert.Equal(t, "Northwind Networks", detail.Name)
	require.Len(t, detail.InventoryItems, 1)
	assert.Equal(t, stocked.ID, detail.InventoryItems[0].ID)
	assert.Empty(t, detail.Orders)

	w = s.do(http.MethodGet, "/api/v1/suppliers/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSupplierHandler_CreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{name: "missing name", body: map[string]any{"email": "a@example.com"}, field: "name"},
		{name: "bad email", body: map[string]any{"name": "Acme", "email": "acme"}, field: "email"},
		{name: "bad status", body: map[string]any{"name": "Acme", "status": "closed"}, field: "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)

			w := s.do(http.MethodPost, "/api/v1/suppliers", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decode[any](t, w)
			require.NotEmpty(t, resp.Error.Details)
			assert.Equal(t, tt.field, resp.Error.Details[0].Field)
		})
	}
}

func TestSupplierHandler_ListAndUpdate(t *testing.T) {
	s := newTestServer(t)
	acme := s.createSupplier("Acme Telecom")
	s.createSupplier("Fiberline")

	w := s.do(http.MethodPut, "/api/v1/suppliers/"+acme.ID.String(), map[string]any{
		"name":           "Acme Telecom",
		"contact_person": "Dana Reyes",
		"status":         "inactive",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "inactive", decode[partnerapp.SupplierResponse](t, w).Data.Status)

	tests := []struct {
		query string
		want  int
	}{
		{query: "", want: 2},
		{query: "?status=inactive", want: 1},
		{query: "?search=fiber", want: 1},
		{query: "?search=reyes", want: 1},
	}
	for _, tt := range tests {
		t.Run("list"+tt.query, func(t *testing.T) {
			w := s.do(http.MethodGet, "/api/v1/suppliers"+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, decode[SupplierListResponse](t, w).Data.Count)
		})
	}

	w = s.do(http.MethodPut, "/api/v1/suppliers/"+uuid.NewString(), map[string]any{"name": "Ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSupplierHandler_DeleteGuardsLinkedItems(t *testing.T) {
	s := newTestServer(t)
	linked := s.createSupplier("Linked Supply")
	item := routerItem("", 3, 1)
	item["supplier_id"] = linked.ID.String()
	s.createItem(item)

	w := s.do(http.MethodDelete, "/api/v1/suppliers/"+linked.ID.String(), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeConflict, decode[any](t, w).Error.Code)

	free := s.createSupplier("Free Supply")
	w = s.do(http.MethodDelete, "/api/v1/suppliers/"+free.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Supplier deleted successfully", decode[MessageResponse](t, w).Data.Message)

	w = s.do(http.MethodDelete, "/api/v1/suppliers/"+free.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSupplierHandler_OrderLifecycle(t *testing.T) {
	s := newTestServer(t)
	supplier := s.createSupplier("Northwind Networks")

	w := s.do(http.MethodPost, "/api/v1/suppliers/"+supplier.ID.String()+"/orders", map[string]any{
		"expected_delivery_date": "2026-11-01T00:00:00Z",
		"total_amount":           "1249.5",
		"notes":                  "Q4 restock",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode[partnerapp.OrderResponse](t, w).Data
	assert.Equal(t, "pending", order.Status)
	assert.True(t, decimal.RequireFromString("1249.50").Equal(order.TotalAmount))
	require.NotNil(t, order.CreatedBy)
	assert.Equal(t, "admin", *order.CreatedBy)

	w = s.do(http.MethodGet, "/api/v1/suppliers/"+supplier.ID.String(), nil)
	assert.EqualValues(t, 1, decode[partnerapp.SupplierDetailResponse](t, w).Data.PendingOrders)

	w = s.do(http.MethodPut, "/api/v1/suppliers/orders/"+order.ID.String(), map[string]any{"status": "shipped"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	shipped := decode[partnerapp.OrderResponse](t, w).Data
	assert.Equal(t, "shipped", shipped.Status)
	assert.Equal(t, "Q4 restock", shipped.Notes, "omitted notes are kept")

	w = s.do(http.MethodPut, "/api/v1/suppliers/orders/"+order.ID.String(), map[string]any{"status": "delivered", "notes": ""})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[partnerapp.OrderResponse](t, w).Data.Notes)

	w = s.do(http.MethodPut, "/api/v1/suppliers/orders/"+order.ID.String(), map[string]any{"status": "pending"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidState, decode[any](t, w).Error.Code)

	w = s.do(http.MethodGet, "/api/v1/suppliers/"+supplier.ID.String()+"/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[OrderListResponse](t, w).Data.Count)

	notes := decode[NotificationListResponse](t, s.do(http.MethodGet, "/api/v1/notifications", nil)).Data
	assert.Equal(t, 3, notes.Count, "one created alert plus two status alerts")
}

func TestSupplierHandler_OrderErrors(t *testing.T) {
	s := newTestServer(t)
	supplier := s.createSupplier("Northwind Networks")

	w := s.do(http.MethodPost, "/api/v1/suppliers/"+uuid.NewString()+"/orders", map[string]any{})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/v1/suppliers/"+supplier.ID.String()+"/orders", map[string]any{"total_amount": "-5"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/api/v1/suppliers/orders/"+uuid.NewString(), map[string]any{"status": "shipped"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPut, "/api/v1/suppliers/orders/"+uuid.NewString(), map[string]any{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/api/v1/suppliers/orders/not-a-uuid", map[string]any{"status": "shipped"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
