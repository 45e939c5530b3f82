package model

import "time"

// Roles gate endpoint-level authorization.  Every account starts as a
// CUSTOMER; only an ADMIN can promote an account to SELLER or ADMIN.
const (
	RoleCustomer = "CUSTOMER"
	RoleSeller   = "SELLER"
	RoleAdmin    = "ADMIN"
)

// ValidRole reports whether s is one of the recognized role names.
func ValidRole(s string) bool {
	switch s {
	case RoleCustomer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// User represents an account record as stored in the `users` table.
// PasswordHash must never leave the repository/handler boundary in a
// response; handlers expose separate response types with JSON tags.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Email        – unique email address (stored lower-cased).
//	PasswordHash – bcrypt hashed password.
//	FirstName    – given name.
//	LastName     – family name.
//	Role         – CUSTOMER, SELLER or ADMIN.
//	Phone        – optional phone number.
//	Avatar       – optional avatar URL.
//	Bio          – optional free-form profile text.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	FirstName    string    // users.first_name
	LastName     string    // users.last_name
	Role         string    // users.role
	Phone        string    // users.phone (empty when unset)
	Avatar       string    // users.avatar (empty when unset)
	Bio          string    // users.bio (empty when unset)
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each refresh
// token belongs to one user; deleting the user removes its tokens.  The
// plain token is never stored, only its SHA-256 hash, so a leaked table
// cannot be replayed to mint access tokens.  Expired rows are purged lazily
// on the next use attempt rather than by a cleanup job.
type RefreshToken struct {
	ID        uint64    // refresh_tokens.id
	UserID    uint64    // refresh_tokens.user_id
	TokenHash string    // refresh_tokens.token_hash (SHA-256 hex digest)
	ExpiresAt time.Time // refresh_tokens.expires_at
	CreatedAt time.Time // refresh_tokens.created_at
}
