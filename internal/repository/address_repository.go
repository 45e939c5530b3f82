package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/fabrichub/fabrichub/internal/model"
)

// AddressRepo owns queries against the `addresses` table.  Every method is
// scoped by user id so one customer can never read or mutate another's
// address book.  Default handling is the one multi-step write in this
// module: setting a default unsets the others inside the same transaction.
type AddressRepo struct{ db *sql.DB }

func NewAddressRepo(db *sql.DB) *AddressRepo { return &AddressRepo{db: db} }

const addressCols = `id, user_id, first_name, last_name, phone, address, city, state, zip, country,
	is_default, created_at, updated_at`

// ListByUser returns a user's addresses, default first, then newest.
func (r *AddressRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Address, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+addressCols+" FROM addresses WHERE user_id=? ORDER BY is_default DESC, created_at DESC, id DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Address
	for rows.Next() {
		var a model.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.FirstName, &a.LastName, &a.Phone, &a.Address,
			&a.City, &a.State, &a.Zip, &a.Country, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetByID fetches an address only if it belongs to the given user.
func (r *AddressRepo) GetByID(ctx context.Context, id, userID uint64) (model.Address, error) {
	var a model.Address
	err := r.db.QueryRowContext(ctx,
		"SELECT "+addressCols+" FROM addresses WHERE id=? AND user_id=? LIMIT 1", id, userID).
		Scan(&a.ID, &a.UserID, &a.FirstName, &a.LastName, &a.Phone, &a.Address,
			&a.City, &a.State, &a.Zip, &a.Country, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Address{}, ErrAddressNotFound
	}
	return a, err
}

// Create inserts a new address.  When the new address is flagged default,
// other defaults for the user are unset first in the same transaction.
func (r *AddressRepo) Create(ctx context.Context, a *model.Address) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if a.IsDefault {
		if _, err := tx.ExecContext(ctx,
			"UPDATE addresses SET is_default=0 WHERE user_id=? AND is_default=1", a.UserID); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO addresses
		(user_id, first_name, last_name, phone, address, city, state, zip, country, is_default)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		a.UserID, a.FirstName, a.LastName, a.Phone, a.Address, a.City, a.State, a.Zip, a.Country, a.IsDefault)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	if err := tx.Commit(); err != nil {
		return err
	}

	got, err := r.GetByID(ctx, a.ID, a.UserID)
	if err != nil {
		return err
	}
	*a = got
	return nil
}

// AddressUpdate carries the mutable address fields; nil pointers leave the
// stored value untouched.
type AddressUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Address   *string
	City      *string
	State     *string
	Zip       *string
	Country   *string
	IsDefault *bool
}

// Update applies a partial update scoped to the owning user and returns the
// fresh row.  Promoting an address to default demotes the others in the
// same transaction.
func (r *AddressRepo) Update(ctx context.Context, id, userID uint64, u AddressUpdate) (model.Address, error) {
	if _, err := r.GetByID(ctx, id, userID); err != nil {
		return model.Address{}, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Address{}, err
	}
	defer tx.Rollback()

	if u.IsDefault != nil && *u.IsDefault {
		if _, err := tx.ExecContext(ctx,
			"UPDATE addresses SET is_default=0 WHERE user_id=? AND is_default=1 AND id<>?", userID, id); err != nil {
			return model.Address{}, err
		}
	}

	sets := []string{}
	args := []any{}
	addS := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+"=?")
			args = append(args, *v)
		}
	}
	addS("first_name", u.FirstName)
	addS("last_name", u.LastName)
	addS("phone", u.Phone)
	addS("address", u.Address)
	addS("city", u.City)
	addS("state", u.State)
	addS("zip", u.Zip)
	addS("country", u.Country)
	if u.IsDefault != nil {
		sets = append(sets, "is_default=?")
		args = append(args, *u.IsDefault)
	}
	if len(sets) > 0 {
		args = append(args, id, userID)
		if _, err := tx.ExecContext(ctx,
			"UPDATE addresses SET "+strings.Join(sets, ", ")+" WHERE id=? AND user_id=?", args...); err != nil {
			return model.Address{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return model.Address{}, err
	}
	return r.GetByID(ctx, id, userID)
}

// Delete removes an address owned by the user.  ErrAddressNotFound when the
// row is absent or owned by someone else.
func (r *AddressRepo) Delete(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM addresses WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAddressNotFound
	}
	return nil
}
