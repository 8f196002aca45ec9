package inventory

import (
	"fmt"
	"math"

	"github.com/tims/backend/internal/domain/shared"
)

// MaxStockLevel bounds stock levels and transaction quantities; the columns are 32-bit integers.
const MaxStockLevel = math.MaxInt32

// StockChange is the outcome of applying one stock-affecting event.
// Quantity is always a magnitude.
type StockChange struct {
	Type                TransactionType
	Quantity            int
	PreviousStock       int
	NewStock            int
	CrossedReorderPoint bool
}

// Changed reports whether the stock level moved
func (c StockChange) Changed() bool {
	return c.PreviousStock != c.NewStock
}

// CrossesReorderPoint is the edge trigger for low-stock alerts: true only for
// the step that takes stock from above the reorder point to at or below it.
func CrossesReorderPoint(previous, next, reorderPoint int) bool {
	return previous > reorderPoint && next <= reorderPoint
}

// ComputeStockChange derives the new stock level for a transaction.
//
//   - purchase, return: current + quantity (quantity > 0)
//   - sale: current - quantity (quantity > 0, quantity <= current)
//   - adjustment: max(0, current + quantity) where quantity is a signed,
//     non-zero delta
func ComputeStockChange(current, reorderPoint int, txType TransactionType, quantity int) (StockChange, error) {
	if !txType.IsValid() {
		return StockChange{}, shared.NewValidationError("Invalid transaction type")
	}
	if current < 0 {
		return StockChange{}, shared.NewDomainError(shared.CodeInvalidState, "Current stock level is negative")
	}
	if quantity > MaxStockLevel || quantity < -MaxStockLevel {
		return StockChange{}, shared.NewValidationError(fmt.Sprintf("Quantity cannot exceed %d", MaxStockLevel))
	}

	change := StockChange{
		Type:          txType,
		PreviousStock: current,
	}

	switch txType {
	case TransactionTypePurchase, TransactionTypeReturn:
		if quantity <= 0 {
			return StockChange{}, shared.NewValidationError("Quantity must be a positive integer")
		}
		change.Quantity = quantity
		change.NewStock = current + quantity
	case TransactionTypeSale:
		if quantity <= 0 {
			return StockChange{}, shared.NewValidationError("Quantity must be a positive integer")
		}
		if quantity > current {
			return StockChange{}, shared.WrapDomainError(shared.CodeInsufficient,
				"Insufficient stock for this transaction",
				fmt.Errorf("requested %d, available %d", quantity, current))
		}
		change.Quantity = quantity
		change.NewStock = current - quantity
	case TransactionTypeAdjustment:
		if quantity == 0 {
			return StockChange{}, shared.NewValidationError("Adjustment quantity must be non-zero")
		}
		change.Quantity = quantity
		if quantity < 0 {
			change.Quantity = -quantity
		}
		change.NewStock = max(0, current+quantity)
	}

	if change.NewStock > MaxStockLevel {
		return StockChange{}, shared.NewValidationError(fmt.Sprintf("Stock level cannot exceed %d", MaxStockLevel))
	}

	change.CrossedReorderPoint = CrossesReorderPoint(change.PreviousStock, change.NewStock, reorderPoint)
	return change, nil
}
