package models

import (
	"time"

	"github.com/google/uuid"
)

// MovementType classifies a stock ledger entry.
type MovementType string

const (
	MovementSale       MovementType = "sale"       // Order confirmation decrement
	MovementReturn     MovementType = "return"     // Cancellation restore
	MovementAdjustment MovementType = "adjustment" // Manual correction
)

// StockMovement is an append-only ledger row. Quantity is the signed delta
// applied to the product's stock: negative for sales, positive for returns.
type StockMovement struct {
	ID        uuid.UUID    `json:"id" db:"id"`
	ProductID uuid.UUID    `json:"product_id" db:"product_id"`
	OrderID   *uuid.UUID   `json:"order_id,omitempty" db:"order_id"`
	Type      MovementType `json:"type" db:"type"`
	Quantity  int          `json:"quantity" db:"quantity"`
	Reference string       `json:"reference" db:"reference"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}
