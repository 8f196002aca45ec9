package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tims/backend/internal/domain/inventory"
	"github.com/tims/backend/internal/domain/partner"
)

// SupplierInput is the editable payload of a supplier
type SupplierInput struct {
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
	Status        string
}

func (in SupplierInput) attributes() partner.SupplierAttributes {
	status := partner.SupplierStatus(in.Status)
	if status == "" {
		status = partner.SupplierStatusActive
	}
	return partner.SupplierAttributes{
		Name:          in.Name,
		ContactPerson: in.ContactPerson,
		Email:         in.Email,
		Phone:         in.Phone,
		Address:       in.Address,
		Status:        status,
	}
}

// SupplierFilter narrows a supplier listing
type SupplierFilter struct {
	Status string
	Search string
}

// CreateOrderInput contains the input for placing an order
type CreateOrderInput struct {
	ExpectedDeliveryDate *time.Time
	TotalAmount          decimal.Decimal
	Notes                string
}

// UpdateOrderStatusInput contains a status change. Nil notes keep the current notes.
type UpdateOrderStatusInput struct {
	Status string
	Notes  *string
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	Status        string    `json:"status"`
	PendingOrders int64     `json:"pending_orders"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ToSupplierResponse converts a domain supplier
func ToSupplierResponse(s *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:            s.ID,
		Name:          s.Name,
		ContactPerson: s.ContactPerson,
		Email:         s.Email,
		Phone:         s.Phone,
		Address:       s.Address,
		Status:        string(s.Status),
		PendingOrders: s.PendingOrders,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

// ToSupplierResponses converts a slice of domain suppliers
func ToSupplierResponses(suppliers []partner.Supplier) []SupplierResponse {
	out := make([]SupplierResponse, len(suppliers))
	for i := range suppliers {
		out[i] = ToSupplierResponse(&suppliers[i])
	}
	return out
}

// SupplierItemResponse is an item as listed under its supplier
type SupplierItemResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	SerialNumber *string   `json:"serial_number"`
	Status       string    `json:"status"`
	StockLevel   int       `json:"stock_level"`
	ReorderPoint int       `json:"reorder_point"`
}

// SupplierDetailResponse is a supplier with its items and orders
type SupplierDetailResponse struct {
	SupplierResponse
	InventoryItems []SupplierItemResponse `json:"inventory_items"`
	Orders         []OrderResponse        `json:"orders"`
}

func toSupplierItems(items []inventory.InventoryItem) []SupplierItemResponse {
	out := make([]SupplierItemResponse, len(items))
	for i, item := range items {
		out[i] = SupplierItemResponse{
			ID:           item.ID,
			Name:         item.Name,
			Category:     item.Category,
			SerialNumber: item.SerialNumber,
			Status:       item.Status.String(),
			StockLevel:   item.StockLevel,
			ReorderPoint: item.ReorderPoint,
		}
	}
	return out
}

// OrderResponse represents a purchase order in API responses
type OrderResponse struct {
	ID                   uuid.UUID       `json:"id"`
	SupplierID           uuid.UUID       `json:"supplier_id"`
	SupplierName         *string         `json:"supplier_name,omitempty"`
	Status               string          `json:"status"`
	OrderDate            time.Time       `json:"order_date"`
	ExpectedDeliveryDate *time.Time      `json:"expected_delivery_date"`
	TotalAmount          decimal.Decimal `json:"total_amount"`
	UserID               *uuid.UUID      `json:"user_id"`
	CreatedBy            *string         `json:"created_by"`
	Notes                string          `json:"notes"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// ToOrderResponse converts a domain order
func ToOrderResponse(o *partner.Order) OrderResponse {
	return OrderResponse{
		ID:                   o.ID,
		SupplierID:           o.SupplierID,
		SupplierName:         o.SupplierName,
		Status:               string(o.Status),
		OrderDate:            o.OrderDate,
		ExpectedDeliveryDate: o.ExpectedDeliveryDate,
		TotalAmount:          o.TotalAmount,
		UserID:               o.UserID,
		CreatedBy:            o.CreatedBy,
		Notes:                o.Notes,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}
}

// ToOrderResponses converts a slice of domain orders
func ToOrderResponses(orders []partner.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}
