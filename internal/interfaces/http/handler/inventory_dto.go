package handler

import (
	"github.com/google/uuid"

	inventoryapp "github.com/tims/backend/internal/application/inventory"
)

// ItemRequest is the full item payload used by create and update
type ItemRequest struct {
	Name         string     `json:"name" binding:"required,max=200"`
	Category     string     `json:"category" binding:"required,max=100"`
	Description  string     `json:"description" binding:"max=2000"`
	SerialNumber string     `json:"serial_number" binding:"max=100"`
	Location     string     `json:"location" binding:"max=200"`
	Status       string     `json:"status" binding:"omitempty,oneof=available in_use maintenance retired"`
	StockLevel   int        `json:"stock_level" binding:"gte=0,lte=2147483647"`
	ReorderPoint int        `json:"reorder_point" binding:"gte=0,lte=2147483647"`
	SupplierID   *uuid.UUID `json:"supplier_id"`
}

func (r ItemRequest) toInput() inventoryapp.ItemInput {
	status := r.Status
	if status == "" {
		status = "available"
	}
	return inventoryapp.ItemInput{
		Name:         r.Name,
		Category:     r.Category,
		Description:  r.Description,
		SerialNumber: r.SerialNumber,
		Location:     r.Location,
		Status:       status,
		StockLevel:   r.StockLevel,
		ReorderPoint: r.ReorderPoint,
		SupplierID:   r.SupplierID,
	}
}

// ItemListQuery holds the inventory list filters
type ItemListQuery struct {
	Category string `form:"category"`
	Status   string `form:"status" binding:"omitempty,oneof=available in_use maintenance retired"`
	Search   string `form:"search"`
	LowStock bool   `form:"low_stock"`
}

func (q ItemListQuery) toFilter() inventoryapp.ListFilter {
	return inventoryapp.ListFilter{
		Category: q.Category,
		Status:   q.Status,
		Search:   q.Search,
		LowStock: q.LowStock,
	}
}

// TransactionRequest records a stock movement. Quantity is a positive count,
// or a signed delta for adjustments.
type TransactionRequest struct {
	TransactionType string `json:"transaction_type" binding:"required,oneof=purchase sale adjustment return"`
	Quantity        int    `json:"quantity" binding:"transaction_quantity"`
	Notes           string `json:"notes" binding:"max=1000"`
}

// ItemListResponse wraps an inventory listing
type ItemListResponse struct {
	Count int                         `json:"count"`
	Items []inventoryapp.ItemResponse `json:"items"`
}

// TransactionListResponse wraps an item's stock log
type TransactionListResponse struct {
	Count        int                                `json:"count"`
	Transactions []inventoryapp.TransactionResponse `json:"transactions"`
}
