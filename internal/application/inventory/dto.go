package inventory

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tims/backend/internal/domain/inventory"
)

// ItemInput is the full editable payload of an item, used by create and update
type ItemInput struct {
	Name         string
	Category     string
	Description  string
	SerialNumber string
	Location     string
	Status       string
	StockLevel   int
	ReorderPoint int
	SupplierID   *uuid.UUID
}

func (in ItemInput) attributes() inventory.ItemAttributes {
	return inventory.ItemAttributes{
		Name:         in.Name,
		Category:     in.Category,
		Description:  in.Description,
		SerialNumber: in.SerialNumber,
		Location:     in.Location,
		Status:       inventory.ItemStatus(in.Status),
		StockLevel:   in.StockLevel,
		ReorderPoint: in.ReorderPoint,
		SupplierID:   in.SupplierID,
	}
}

// ListFilter narrows an inventory listing
type ListFilter struct {
	Category string
	Status   string
	Search   string
	LowStock bool
}

func (f ListFilter) toDomain() inventory.ItemFilter {
	return inventory.ItemFilter{
		Category:     f.Category,
		Status:       inventory.ItemStatus(f.Status),
		Search:       f.Search,
		LowStockOnly: f.LowStock,
	}
}

// TransactionInput is a requested stock transaction
type TransactionInput struct {
	TransactionType string
	Quantity        int
	Notes           string
}

// ItemResponse represents an inventory item in API responses
type ItemResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Category     string     `json:"category"`
	Description  string     `json:"description"`
	SerialNumber *string    `json:"serial_number"`
	Location     string     `json:"location"`
	Status       string     `json:"status"`
	StockLevel   int        `json:"stock_level"`
	ReorderPoint int        `json:"reorder_point"`
	IsLowStock   bool       `json:"is_low_stock"`
	SupplierID   *uuid.UUID `json:"supplier_id"`
	SupplierName *string    `json:"supplier_name"`
	Version      int        `json:"version"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ToItemResponse converts a domain item
func ToItemResponse(item *inventory.InventoryItem) ItemResponse {
	return ItemResponse{
		ID:           item.ID,
		Name:         item.Name,
		Category:     item.Category,
		Description:  item.Description,
		SerialNumber: item.SerialNumber,
		Location:     item.Location,
		Status:       item.Status.String(),
		StockLevel:   item.StockLevel,
		ReorderPoint: item.ReorderPoint,
		IsLowStock:   item.IsLowStock(),
		SupplierID:   item.SupplierID,
		SupplierName: item.SupplierName,
		Version:      item.Version,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}

// ToItemResponses converts a slice of domain items
func ToItemResponses(items []inventory.InventoryItem) []ItemResponse {
	out := make([]ItemResponse, len(items))
	for i := range items {
		out[i] = ToItemResponse(&items[i])
	}
	return out
}

// TransactionResponse represents one stock log entry
type TransactionResponse struct {
	ID              uuid.UUID  `json:"id"`
	InventoryItemID uuid.UUID  `json:"inventory_item_id"`
	TransactionType string     `json:"transaction_type"`
	Quantity        int        `json:"quantity"`
	PreviousStock   int        `json:"previous_stock"`
	NewStock        int        `json:"new_stock"`
	UserID          *uuid.UUID `json:"user_id"`
	UserName        *string    `json:"user_name"`
	Notes           string     `json:"notes"`
	TransactionDate time.Time  `json:"transaction_date"`
}

// ToTransactionResponse converts a domain transaction
func ToTransactionResponse(tx *inventory.InventoryTransaction) TransactionResponse {
	return TransactionResponse{
		ID:              tx.ID,
		InventoryItemID: tx.InventoryItemID,
		TransactionType: tx.TransactionType.String(),
		Quantity:        tx.Quantity,
		PreviousStock:   tx.PreviousStock,
		NewStock:        tx.NewStock,
		UserID:          tx.UserID,
		UserName:        tx.UserName,
		Notes:           tx.Notes,
		TransactionDate: tx.TransactionDate,
	}
}

// ToTransactionResponses converts a slice of domain transactions
func ToTransactionResponses(txs []inventory.InventoryTransaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txs))
	for i := range txs {
		out[i] = ToTransactionResponse(&txs[i])
	}
	return out
}

// RecordTransactionResult is the outcome of a stock transaction
type RecordTransactionResult struct {
	Transaction   TransactionResponse `json:"transaction"`
	NewStockLevel int                 `json:"new_stock_level"`
	LowStockAlert bool                `json:"low_stock_alert"`
}

// CategoryStat is one row of the per-category breakdown
type CategoryStat struct {
	Category string `json:"category"`
	Label    string `json:"label"`
	Count    int64  `json:"count"`
}

// StatsResponse is the inventory overview
type StatsResponse struct {
	TotalItems    int64          `json:"total_items"`
	LowStockCount int64          `json:"low_stock_count"`
	TotalStock    int64          `json:"total_stock"`
	ByCategory    []CategoryStat `json:"by_category"`
}

// ToStatsResponse converts domain stats, adding a display label per category
func ToStatsResponse(stats *inventory.Stats) StatsResponse {
	title := cases.Title(language.English)
	resp := StatsResponse{
		TotalItems:    stats.TotalItems,
		LowStockCount: stats.LowStockCount,
		TotalStock:    stats.TotalStock,
		ByCategory:    make([]CategoryStat, len(stats.ByCategory)),
	}
	for i, c := range stats.ByCategory {
		resp.ByCategory[i] = CategoryStat{
			Category: c.Category,
			Label:    title.String(c.Category),
			Count:    c.Count,
		}
	}
	return resp
}

// ReportResult describes an uploaded inventory snapshot
type ReportResult struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	Rows      int       `json:"rows"`
}
