// Package repository contains data access logic separated from HTTP
// handlers.  This file defines sentinel errors reused across repositories so
// that handlers can map failure scenarios to HTTP status codes without
// string matching.
package repository

import "errors"

// ErrEmailExists is returned when an insert violates the unique email
// constraint on users.  Handlers translate it into a duplicate-email
// validation failure.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when a user lookup matches no row.
var ErrUserNotFound = errors.New("user not found")

// ErrProductNotFound is returned when a product lookup matches no row.
var ErrProductNotFound = errors.New("product not found")

// ErrOrderNotFound is returned when an order lookup matches no row.
var ErrOrderNotFound = errors.New("order not found")

// ErrAddressNotFound is returned when an address lookup matches no row or
// the row belongs to a different user.
var ErrAddressNotFound = errors.New("address not found")
