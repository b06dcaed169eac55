package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is a product-quantity-price line attached to an order. The unit
// price is captured from the product at order creation and never changes,
// so later catalog price edits cannot affect an existing order's total.
type OrderItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"order_id" db:"order_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	UnitPrice float64   `json:"unit_price" db:"unit_price"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Subtotal is quantity times the captured unit price.
func (i *OrderItem) Subtotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}
