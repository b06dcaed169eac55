package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus enumerates the states of the order lifecycle.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// orderTransitions is the adjacency table of permitted status changes.
// Anything not listed here is rejected before any mutation happens.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {OrderStatusRefunded},
	OrderStatusCancelled:  {},
	OrderStatusRefunded:   {},
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether the state machine permits moving from s to target.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the permitted next states for s.
func (s OrderStatus) AllowedTransitions() []OrderStatus {
	next := orderTransitions[s]
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}

// Terminal reports whether no further transitions are possible from s.
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

type Order struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	CustomerID      uuid.UUID   `json:"customer_id" db:"customer_id"`
	Status          OrderStatus `json:"status" db:"status"`
	TotalAmount     float64     `json:"total_amount" db:"total_amount"`
	ShippingAddress string      `json:"shipping_address" db:"shipping_address"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`

	Items []*OrderItem `json:"items,omitempty" db:"-"`
}

// ComputeTotal sums quantity times the captured unit price across all items.
func (o *Order) ComputeTotal() float64 {
	total := 0.0
	for _, item := range o.Items {
		total += item.Subtotal()
	}
	return total
}

// OrderStatusEvent records a single status transition with its timestamp.
// A row is written for the initial pending state and for every transition.
type OrderStatusEvent struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	OrderID    uuid.UUID   `json:"order_id" db:"order_id"`
	FromStatus OrderStatus `json:"from_status" db:"from_status"`
	ToStatus   OrderStatus `json:"to_status" db:"to_status"`
	OccurredAt time.Time   `json:"occurred_at" db:"occurred_at"`
}

// OrderStatusChanged is the event handed to the notification dispatcher
// after a transition commits. Delivery is not this package's concern.
type OrderStatusChanged struct {
	OrderID    uuid.UUID   `json:"order_id"`
	CustomerID uuid.UUID   `json:"customer_id"`
	OldStatus  OrderStatus `json:"old_status"`
	NewStatus  OrderStatus `json:"new_status"`
	OccurredAt time.Time   `json:"occurred_at"`
}
