package handler

import (
	"github.com/gin-gonic/gin"

	partnerapp "github.com/tims/backend/internal/application/partner"
)

// SupplierHandler handles supplier and purchase order requests
type SupplierHandler struct {
	BaseHandler
	supplierService *partnerapp.SupplierService
	orderService    *partnerapp.OrderService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(supplierService *partnerapp.SupplierService, orderService *partnerapp.OrderService) *SupplierHandler {
	return &SupplierHandler{
		supplierService: supplierService,
		orderService:    orderService,
	}
}

// List handles GET /suppliers
func (h *SupplierHandler) List(c *gin.Context) {
	var query SupplierListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.supplierService.List(c.Request.Context(), partnerapp.SupplierFilter{
		Status: query.Status,
		Search: query.Search,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, SupplierListResponse{Count: result.Count, Suppliers: result.Items}, result.Count)
}

// Get handles GET /suppliers/:id
func (h *SupplierHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	supplier, err := h.supplierService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// Create handles POST /suppliers
func (h *SupplierHandler) Create(c *gin.Context) {
	var req SupplierRequest
	if !h.bindJSON(c, &req) {
		return
	}

	supplier, err := h.supplierService.Create(c.Request.Context(), req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, supplier)
}

// Update handles PUT /suppliers/:id
func (h *SupplierHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req SupplierRequest
	if !h.bindJSON(c, &req) {
		return
	}

	supplier, err := h.supplierService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// Delete handles DELETE /suppliers/:id
func (h *SupplierHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.supplierService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageResponse{Message: "Supplier deleted successfully"})
}

// ListOrders handles GET /suppliers/:id/orders
func (h *SupplierHandler) ListOrders(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.orderService.ListBySupplier(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, OrderListResponse{Count: result.Count, Orders: result.Items}, result.Count)
}

// CreateOrder handles POST /suppliers/:id/orders
func (h *SupplierHandler) CreateOrder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req CreateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), userID, id, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// UpdateOrderStatus handles PUT /suppliers/orders/:orderId
func (h *SupplierHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := h.parseUUIDParam(c, "orderId")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), orderID, partnerapp.UpdateOrderStatusInput{
		Status: req.Status,
		Notes:  req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
