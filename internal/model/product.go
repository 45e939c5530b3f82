package model

import "time"

// Product is a fabric listing in the `products` table.  Fabrics are sold by
// the meter or by the roll, so both prices are stored (in cents; RollLength
// is the number of meters on a roll).  Each product belongs to the seller
// who listed it.
type Product struct {
	ID                uint64    // products.id
	SellerID          uint64    // products.seller_id (references users.id)
	Name              string    // products.name
	Description       string    // products.description
	Category          string    // products.category (e.g. "Cotton Fabrics")
	Material          string    // products.material (e.g. "65% Cotton, 35% Linen")
	Width             string    // products.width (e.g. "145cm")
	Colors            []string  // products.colors (JSON array of offered color names)
	PricePerMeterCents uint32   // products.price_per_meter_cents
	PricePerRollCents  uint32   // products.price_per_roll_cents (0 when not sold by roll)
	RollLengthMeters   uint32   // products.roll_length_meters (0 when not sold by roll)
	Stock             uint32    // products.stock (meters available)
	CreatedAt         time.Time // products.created_at
	UpdatedAt         time.Time // products.updated_at
}
