package domain

import "time"

// Routing keys for order lifecycle events on the fulfillment exchange.
const (
	EventOrderCreated   = "order.created"
	EventOrderUpdated   = "order.updated"
	EventOrderCancelled = "order.cancelled"
)

// OrderEvent is the payload delivered to external channel adapters
// whenever an order changes state.
type OrderEvent struct {
	OrderID   uint64      `json:"orderId"`
	UserID    uint64      `json:"userId"`
	Status    OrderStatus `json:"newStatus"`
	CreatedAt time.Time   `json:"createdAt"`
}
