package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/fabrichub/fabrichub/internal/model"
)

// ProductRepo encapsulates all database queries related to the fabric
// catalog.  Writes are seller-scoped: a seller may only touch rows they
// created, while admins bypass the ownership filter at the handler layer.
type ProductRepo struct{ db *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, seller_id, name, description, category, material, width, colors,
	price_per_meter_cents, price_per_roll_cents, roll_length_meters, stock, created_at, updated_at`

// colorsJSON encodes the offered colors for the products.colors JSON column.
// An empty list is stored as "[]" so the column is never NULL.
func colorsJSON(colors []string) ([]byte, error) {
	if len(colors) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(colors)
}

// Create inserts a new product and re-selects the row so the caller
// receives populated timestamps and id.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	const q = `INSERT INTO products
		(seller_id, name, description, category, material, width, colors,
		 price_per_meter_cents, price_per_roll_cents, roll_length_meters, stock)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`
	colors, err := colorsJSON(p.Colors)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q,
		p.SellerID, p.Name, p.Description, p.Category, p.Material, p.Width, colors,
		p.PricePerMeterCents, p.PricePerRollCents, p.RollLengthMeters, p.Stock)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*p = got
	return nil
}

// GetByID fetches a product by id.  Returns ErrProductNotFound when no row
// is found.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (model.Product, error) {
	var p model.Product
	var colors []byte
	err := r.db.QueryRowContext(ctx,
		"SELECT "+productCols+" FROM products WHERE id=? LIMIT 1", id).
		Scan(&p.ID, &p.SellerID, &p.Name, &p.Description, &p.Category, &p.Material, &p.Width, &colors,
			&p.PricePerMeterCents, &p.PricePerRollCents, &p.RollLengthMeters, &p.Stock,
			&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, ErrProductNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	if len(colors) > 0 {
		if err := json.Unmarshal(colors, &p.Colors); err != nil {
			return model.Product{}, err
		}
	}
	return p, nil
}

// ProductFilter narrows List results.  Search matches name and material;
// Page is 1-based.
type ProductFilter struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

// List returns a page of products newest-first plus the total count for the
// same filter.
func (r *ProductRepo) List(ctx context.Context, f ProductFilter) ([]model.Product, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	if f.Category != "" {
		where += " AND category=?"
		args = append(args, f.Category)
	}
	if f.Search != "" {
		where += " AND (name LIKE ? OR material LIKE ?)"
		like := "%" + f.Search + "%"
		args = append(args, like, like)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+productCols+" FROM products "+where+" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Product
	for rows.Next() {
		var p model.Product
		var colors []byte
		if err := rows.Scan(&p.ID, &p.SellerID, &p.Name, &p.Description, &p.Category, &p.Material, &p.Width, &colors,
			&p.PricePerMeterCents, &p.PricePerRollCents, &p.RollLengthMeters, &p.Stock,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		if len(colors) > 0 {
			if err := json.Unmarshal(colors, &p.Colors); err != nil {
				return nil, 0, err
			}
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// ProductUpdate carries the mutable product fields; nil pointers leave the
// stored value untouched.
type ProductUpdate struct {
	Name               *string
	Description        *string
	Category           *string
	Material           *string
	Width              *string
	Colors             *[]string
	PricePerMeterCents *uint32
	PricePerRollCents  *uint32
	RollLengthMeters   *uint32
	Stock              *uint32
}

// Update applies a partial update and returns the fresh row.  When sellerID
// is non-zero the update only applies to rows owned by that seller;
// ErrProductNotFound covers both "no such product" and "not yours".
func (r *ProductRepo) Update(ctx context.Context, id, sellerID uint64, u ProductUpdate) (model.Product, error) {
	sets := []string{}
	args := []any{}
	addS := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+"=?")
			args = append(args, *v)
		}
	}
	addU := func(col string, v *uint32) {
		if v != nil {
			sets = append(sets, col+"=?")
			args = append(args, *v)
		}
	}
	addS("name", u.Name)
	addS("description", u.Description)
	addS("category", u.Category)
	addS("material", u.Material)
	addS("width", u.Width)
	if u.Colors != nil {
		colors, err := colorsJSON(*u.Colors)
		if err != nil {
			return model.Product{}, err
		}
		sets = append(sets, "colors=?")
		args = append(args, colors)
	}
	addU("price_per_meter_cents", u.PricePerMeterCents)
	addU("price_per_roll_cents", u.PricePerRollCents)
	addU("roll_length_meters", u.RollLengthMeters)
	addU("stock", u.Stock)

	if len(sets) > 0 {
		q := "UPDATE products SET " + strings.Join(sets, ", ") + " WHERE id=?"
		args = append(args, id)
		if sellerID != 0 {
			q += " AND seller_id=?"
			args = append(args, sellerID)
		}
		res, err := r.db.ExecContext(ctx, q, args...)
		if err != nil {
			return model.Product{}, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			// Either absent or owned by someone else; re-check to keep the
			// idempotent "same values" update from reading as an error.
			if sellerID != 0 {
				var owner uint64
				err := r.db.QueryRowContext(ctx, "SELECT seller_id FROM products WHERE id=?", id).Scan(&owner)
				if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != sellerID) {
					return model.Product{}, ErrProductNotFound
				}
				if err != nil {
					return model.Product{}, err
				}
			}
		}
	}
	return r.GetByID(ctx, id)
}
