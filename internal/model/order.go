package model

import "time"

// Order statuses.  An order starts PENDING and moves forward as payment and
// fulfilment progress; RETURNED and CANCELLED are terminal.
const (
	OrderPending   = "PENDING"
	OrderPaid      = "PAID"
	OrderShipped   = "SHIPPED"
	OrderDelivered = "DELIVERED"
	OrderReturned  = "RETURNED"
	OrderCancelled = "CANCELLED"
)

// ValidOrderStatus reports whether s is a recognized order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderPending, OrderPaid, OrderShipped, OrderDelivered, OrderReturned, OrderCancelled:
		return true
	}
	return false
}

// Order records a customer's checkout in the `orders` table.  All money is
// in cents.  The shipping address is denormalized onto the order so that
// later edits to the customer's address book do not rewrite order history.
type Order struct {
	ID            uint64    // orders.id
	OrderNumber   string    // orders.order_number (unique, "ORD-..." )
	UserID        uint64    // orders.user_id
	Status        string    // orders.status
	SubtotalCents uint64    // orders.subtotal_cents
	ShippingCents uint64    // orders.shipping_cents
	TaxCents      uint64    // orders.tax_cents
	TotalCents    uint64    // orders.total_cents
	ShipName      string    // orders.ship_name
	ShipPhone     string    // orders.ship_phone
	ShipAddress   string    // orders.ship_address
	ShipCity      string    // orders.ship_city
	ShipState     string    // orders.ship_state
	ShipZip       string    // orders.ship_zip
	ShipCountry   string    // orders.ship_country
	Items         []OrderItem
	CreatedAt     time.Time // orders.created_at
	UpdatedAt     time.Time // orders.updated_at
}

// OrderItem is one line of an order in the `order_items` table.  Unit is
// "meter" or "roll"; PriceCents is the unit price captured at purchase time
// so catalog price changes never alter existing orders.
type OrderItem struct {
	ID         uint64 // order_items.id
	OrderID    uint64 // order_items.order_id
	ProductID  uint64 // order_items.product_id
	Name       string // order_items.name (product name at purchase)
	Color      string // order_items.color
	Unit       string // order_items.unit
	Quantity   uint32 // order_items.quantity
	PriceCents uint32 // order_items.price_cents (unit price at purchase)
}
