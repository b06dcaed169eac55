package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{"pending to confirmed", OrderStatusPending, OrderStatusConfirmed, true},
		{"pending to cancelled", OrderStatusPending, OrderStatusCancelled, true},
		{"pending to shipped skips confirmation", OrderStatusPending, OrderStatusShipped, false},
		{"pending to delivered", OrderStatusPending, OrderStatusDelivered, false},
		{"confirmed to processing", OrderStatusConfirmed, OrderStatusProcessing, true},
		{"confirmed to cancelled", OrderStatusConfirmed, OrderStatusCancelled, true},
		{"confirmed to confirmed", OrderStatusConfirmed, OrderStatusConfirmed, false},
		{"confirmed to pending is backwards", OrderStatusConfirmed, OrderStatusPending, false},
		{"processing to shipped", OrderStatusProcessing, OrderStatusShipped, true},
		{"processing to cancelled", OrderStatusProcessing, OrderStatusCancelled, true},
		{"shipped to delivered", OrderStatusShipped, OrderStatusDelivered, true},
		{"shipped to cancelled", OrderStatusShipped, OrderStatusCancelled, false},
		{"delivered to refunded", OrderStatusDelivered, OrderStatusRefunded, true},
		{"delivered to cancelled", OrderStatusDelivered, OrderStatusCancelled, false},
		{"cancelled is terminal", OrderStatusCancelled, OrderStatusPending, false},
		{"cancelled to refunded", OrderStatusCancelled, OrderStatusRefunded, false},
		{"refunded is terminal", OrderStatusRefunded, OrderStatusDelivered, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	assert.True(t, OrderStatusCancelled.Terminal())
	assert.True(t, OrderStatusRefunded.Terminal())
	assert.False(t, OrderStatusPending.Terminal())
	assert.False(t, OrderStatusDelivered.Terminal())
}

func TestOrderStatus_Valid(t *testing.T) {
	assert.True(t, OrderStatusPending.Valid())
	assert.True(t, OrderStatusRefunded.Valid())
	assert.False(t, OrderStatus("paid").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestOrderStatus_AllowedTransitions(t *testing.T) {
	assert.ElementsMatch(t,
		[]OrderStatus{OrderStatusConfirmed, OrderStatusCancelled},
		OrderStatusPending.AllowedTransitions())
	assert.Empty(t, OrderStatusRefunded.AllowedTransitions())
}

func TestOrder_ComputeTotal(t *testing.T) {
	order := &Order{
		Items: []*OrderItem{
			{ProductID: uuid.New(), Quantity: 2, UnitPrice: 9.99},
			{ProductID: uuid.New(), Quantity: 1, UnitPrice: 100.00},
			{ProductID: uuid.New(), Quantity: 3, UnitPrice: 0.50},
		},
	}
	assert.InDelta(t, 121.48, order.ComputeTotal(), 0.0001)
}

func TestOrder_ComputeTotalEmpty(t *testing.T) {
	order := &Order{}
	assert.Zero(t, order.ComputeTotal())
}
