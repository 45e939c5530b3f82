package queue

import "time"

// OrderPlacedQueue is the durable queue order events are published to.
const OrderPlacedQueue = "order.placed"

// OrderPlacedEvent is the payload published when a customer places an order.
type OrderPlacedEvent struct {
	OrderID     uint64    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      uint64    `json:"user_id"`
	TotalCents  uint64    `json:"total_cents"`
	ItemCount   int       `json:"item_count"`
	PlacedAt    time.Time `json:"placed_at"`
}
