package handler

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	inventoryapp "github.com/tims/backend/internal/application/inventory"
)

// InventoryHandler handles inventory item and stock transaction requests
type InventoryHandler struct {
	BaseHandler
	inventoryService *inventoryapp.InventoryService
	reportService    *inventoryapp.ReportService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService *inventoryapp.InventoryService, reportService *inventoryapp.ReportService) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		reportService:    reportService,
	}
}

// List handles GET /inventory
func (h *InventoryHandler) List(c *gin.Context) {
	var query ItemListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.inventoryService.List(c.Request.Context(), query.toFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, ItemListResponse{Count: result.Count, Items: result.Items}, result.Count)
}

// Get handles GET /inventory/:id
func (h *InventoryHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	item, err := h.inventoryService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Create handles POST /inventory
func (h *InventoryHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req ItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.inventoryService.Create(c.Request.Context(), userID, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// Update handles PUT /inventory/:id
func (h *InventoryHandler) Update(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req ItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.inventoryService.Update(c.Request.Context(), userID, id, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Delete handles DELETE /inventory/:id
func (h *InventoryHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.inventoryService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageResponse{Message: "Inventory item deleted successfully"})
}

// ListTransactions handles GET /inventory/:id/transactions
func (h *InventoryHandler) ListTransactions(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.inventoryService.Transactions(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, TransactionListResponse{Count: result.Count, Transactions: result.Items}, result.Count)
}

// RecordTransaction handles POST /inventory/:id/transactions
func (h *InventoryHandler) RecordTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req TransactionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.inventoryService.RecordTransaction(c.Request.Context(), userID, id, inventoryapp.TransactionInput{
		TransactionType: req.TransactionType,
		Quantity:        req.Quantity,
		Notes:           req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Stats handles GET /inventory/stats/overview
func (h *InventoryHandler) Stats(c *gin.Context) {
	stats, err := h.inventoryService.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// ExportReport handles POST /inventory/reports. The filters are read from
// the query string, the same as List.
func (h *InventoryHandler) ExportReport(c *gin.Context) {
	var query ItemListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	report, err := h.reportService.Export(c.Request.Context(), query.toFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, report)
}

// DownloadReport handles GET /inventory/reports/*key for reports kept by the
// server itself
func (h *InventoryHandler) DownloadReport(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	file, err := h.reportService.Download(c.Request.Context(), key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(file.Key)))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
