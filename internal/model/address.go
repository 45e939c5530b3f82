package model

import "time"

// Address is a shipping address in a user's address book (`addresses`
// table).  At most one address per user is the default; the repository
// enforces that by unsetting other defaults in the same transaction that
// sets a new one.
type Address struct {
	ID        uint64    // addresses.id
	UserID    uint64    // addresses.user_id
	FirstName string    // addresses.first_name
	LastName  string    // addresses.last_name
	Phone     string    // addresses.phone
	Address   string    // addresses.address (street line)
	City      string    // addresses.city
	State     string    // addresses.state
	Zip       string    // addresses.zip
	Country   string    // addresses.country
	IsDefault bool      // addresses.is_default
	CreatedAt time.Time // addresses.created_at
	UpdatedAt time.Time // addresses.updated_at
}
