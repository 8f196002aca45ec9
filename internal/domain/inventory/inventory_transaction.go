package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/tims/backend/internal/domain/shared"
)

// TransactionType classifies a stock-affecting event
type TransactionType string

const (
	TransactionTypePurchase   TransactionType = "purchase"
	TransactionTypeSale       TransactionType = "sale"
	TransactionTypeReturn     TransactionType = "return"
	TransactionTypeAdjustment TransactionType = "adjustment"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypePurchase, TransactionTypeSale, TransactionTypeReturn, TransactionTypeAdjustment:
		return true
	}
	return false
}

// Notes written by flows other than an explicit transaction
const (
	NotesInitialInventory = "Initial inventory"
	NotesItemEdit         = "Stock update via item edit"
)

// InventoryTransaction is an append-only log entry of one stock movement.
// It is never updated once written.
type InventoryTransaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InventoryItemID uuid.UUID       `gorm:"type:uuid;not null;index" json:"inventory_item_id"`
	TransactionType TransactionType `gorm:"type:varchar(20);not null" json:"transaction_type"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	PreviousStock   int             `gorm:"not null" json:"previous_stock"`
	NewStock        int             `gorm:"not null" json:"new_stock"`
	UserID          *uuid.UUID      `gorm:"type:uuid;index" json:"user_id"`
	Notes           string          `gorm:"type:text" json:"notes"`
	TransactionDate time.Time       `gorm:"not null;index" json:"transaction_date"`

	// Populated by read queries that join users
	UserName *string `gorm:"->;-:migration" json:"user_name"`
}

// TableName returns the table name for GORM
func (InventoryTransaction) TableName() string {
	return "inventory_transactions"
}

// NewInventoryTransaction records a computed StockChange against an item
func NewInventoryTransaction(itemID uuid.UUID, change StockChange, userID *uuid.UUID, notes string) (*InventoryTransaction, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewValidationError("Inventory item ID cannot be empty")
	}
	if !change.Type.IsValid() {
		return nil, shared.NewValidationError("Invalid transaction type")
	}
	if change.NewStock < 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Stock level cannot become negative")
	}

	return &InventoryTransaction{
		ID:              uuid.New(),
		InventoryItemID: itemID,
		TransactionType: change.Type,
		Quantity:        change.Quantity,
		PreviousStock:   change.PreviousStock,
		NewStock:        change.NewStock,
		UserID:          userID,
		Notes:           notes,
		TransactionDate: time.Now(),
	}, nil
}
