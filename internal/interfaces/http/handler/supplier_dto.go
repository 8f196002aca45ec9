package handler

import (
	"time"

	"github.com/shopspring/decimal"

	partnerapp "github.com/tims/backend/internal/application/partner"
)

// SupplierRequest is the supplier payload used by create and update
type SupplierRequest struct {
	Name          string `json:"name" binding:"required,max=200"`
	ContactPerson string `json:"contact_person" binding:"max=100"`
	Email         string `json:"email" binding:"omitempty,email,max=200"`
	Phone         string `json:"phone" binding:"max=50"`
	Address       string `json:"address" binding:"max=500"`
	Status        string `json:"status" binding:"omitempty,oneof=active inactive pending"`
}

func (r SupplierRequest) toInput() partnerapp.SupplierInput {
	return partnerapp.SupplierInput{
		Name:          r.Name,
		ContactPerson: r.ContactPerson,
		Email:         r.Email,
		Phone:         r.Phone,
		Address:       r.Address,
		Status:        r.Status,
	}
}

// SupplierListQuery holds the supplier list filters
type SupplierListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=active inactive pending"`
	Search string `form:"search"`
}

// CreateOrderRequest places an order with a supplier
type CreateOrderRequest struct {
	ExpectedDeliveryDate *time.Time       `json:"expected_delivery_date"`
	TotalAmount          *decimal.Decimal `json:"total_amount"`
	Notes                string           `json:"notes" binding:"max=1000"`
}

func (r CreateOrderRequest) toInput() partnerapp.CreateOrderInput {
	input := partnerapp.CreateOrderInput{
		ExpectedDeliveryDate: r.ExpectedDeliveryDate,
		Notes:                r.Notes,
	}
	if r.TotalAmount != nil {
		input.TotalAmount = *r.TotalAmount
	}
	return input
}

// UpdateOrderStatusRequest moves an order to a new status. Omitted notes
// keep the current notes.
type UpdateOrderStatusRequest struct {
	Status string  `json:"status" binding:"required,oneof=pending shipped delivered cancelled"`
	Notes  *string `json:"notes" binding:"omitempty,max=1000"`
}

// SupplierListResponse wraps a supplier listing
type SupplierListResponse struct {
	Count     int                           `json:"count"`
	Suppliers []partnerapp.SupplierResponse `json:"suppliers"`
}

// OrderListResponse wraps a supplier's orders
type OrderListResponse struct {
	Count  int                        `json:"count"`
	Orders []partnerapp.OrderResponse `json:"orders"`
}
