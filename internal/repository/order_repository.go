package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fabrichub/fabrichub/internal/model"
)

// OrderRepo encapsulates queries against the `orders` and `order_items`
// tables.  An order and its items are always written in one transaction so
// a failed item insert never leaves a headless order behind.
type OrderRepo struct{ db *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `id, order_number, user_id, status, subtotal_cents, shipping_cents, tax_cents,
	total_cents, ship_name, ship_phone, ship_address, ship_city, ship_state, ship_zip, ship_country,
	created_at, updated_at`

// Create inserts the order and all of its items atomically.  On success the
// order's ID and timestamps are populated.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `INSERT INTO orders
		(order_number, user_id, status, subtotal_cents, shipping_cents, tax_cents, total_cents,
		 ship_name, ship_phone, ship_address, ship_city, ship_state, ship_zip, ship_country)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		o.OrderNumber, o.UserID, o.Status, o.SubtotalCents, o.ShippingCents, o.TaxCents, o.TotalCents,
		o.ShipName, o.ShipPhone, o.ShipAddress, o.ShipCity, o.ShipState, o.ShipZip, o.ShipCountry)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)

	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		res, err := tx.ExecContext(ctx, `INSERT INTO order_items
			(order_id, product_id, name, color, unit, quantity, price_cents)
			VALUES (?,?,?,?,?,?,?)`,
			it.OrderID, it.ProductID, it.Name, it.Color, it.Unit, it.Quantity, it.PriceCents)
		if err != nil {
			return err
		}
		itemID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		it.ID = uint64(itemID)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	return r.db.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM orders WHERE id=?", o.ID).
		Scan(&o.CreatedAt, &o.UpdatedAt)
}

// GetByID fetches an order with its items.  Returns ErrOrderNotFound when
// no row matches.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (model.Order, error) {
	var o model.Order
	err := r.db.QueryRowContext(ctx,
		"SELECT "+orderCols+" FROM orders WHERE id=? LIMIT 1", id).
		Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.SubtotalCents, &o.ShippingCents,
			&o.TaxCents, &o.TotalCents, &o.ShipName, &o.ShipPhone, &o.ShipAddress, &o.ShipCity,
			&o.ShipState, &o.ShipZip, &o.ShipCountry, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return model.Order{}, err
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, order_id, product_id, name, color, unit, quantity, price_cents FROM order_items WHERE order_id=? ORDER BY id",
		o.ID)
	if err != nil {
		return model.Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Color,
			&it.Unit, &it.Quantity, &it.PriceCents); err != nil {
			return model.Order{}, err
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}

// ListByUser returns a user's orders newest-first, items included.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id FROM orders WHERE user_id=? ORDER BY created_at DESC, id DESC", userID)
	if err != nil {
		return nil, err
	}
	ids := []uint64{}
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// Orders per user are few; loading items order-by-order keeps the SQL
	// simple at the cost of one query per order.
	out := make([]model.Order, 0, len(ids))
	for _, id := range ids {
		o, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// UpdateStatus transitions an order to the given status and returns the
// fresh row.  Status values are validated at the handler boundary.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id uint64, status string) (model.Order, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE orders SET status=? WHERE id=?", status, id)
	if err != nil {
		return model.Order{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return model.Order{}, err
		}
	}
	return r.GetByID(ctx, id)
}
