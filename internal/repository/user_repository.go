package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/fabrichub/fabrichub/internal/model"
)

// UserRepo owns all queries against the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id,email,password_hash,first_name,last_name,role,phone,avatar,bio,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Role, &u.Phone, &u.Avatar, &u.Bio, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a user with the given pre-computed bcrypt hash and returns
// the stored record.  Email is normalized to lower case; a duplicate email
// (MySQL error 1062) maps to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, email, passwordHash, firstName, lastName, phone, role string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, first_name, last_name, phone, role) VALUES (?,?,?,?,?,?)",
		email, passwordHash, firstName, lastName, phone, role)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByEmail fetches a user by normalized email.  Returns ErrUserNotFound
// when no row matches.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// GetByID fetches a user by id.  Returns ErrUserNotFound when no row matches.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// UserFilter narrows List results.  Zero values mean "no filter"; Page is
// 1-based.
type UserFilter struct {
	Role   string
	Search string // matches email, first or last name
	Page   int
	Limit  int
}

// List returns a page of users newest-first together with the total count
// for the same filter.
func (r *UserRepo) List(ctx context.Context, f UserFilter) ([]model.User, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	if f.Role != "" {
		where += " AND role=?"
		args = append(args, f.Role)
	}
	if f.Search != "" {
		where += " AND (email LIKE ? OR first_name LIKE ? OR last_name LIKE ?)"
		like := "%" + f.Search + "%"
		args = append(args, like, like, like)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userCols+" FROM users "+where+" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
			&u.Role, &u.Phone, &u.Avatar, &u.Bio, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

// ProfileUpdate carries the mutable profile fields.  Nil pointers leave the
// stored value untouched.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Avatar    *string
	Bio       *string
}

// UpdateProfile applies a partial profile update and returns the fresh row.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, p ProfileUpdate) (model.User, error) {
	sets := []string{}
	args := []any{}
	add := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+"=?")
			args = append(args, *v)
		}
	}
	add("first_name", p.FirstName)
	add("last_name", p.LastName)
	add("phone", p.Phone)
	add("avatar", p.Avatar)
	add("bio", p.Bio)
	if len(sets) > 0 {
		args = append(args, id)
		if _, err := r.DB.ExecContext(ctx,
			"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id=?", args...); err != nil {
			return model.User{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// UpdateRole sets the user's role and returns the fresh row.  Role values
// are validated at the handler boundary.
func (r *UserRepo) UpdateRole(ctx context.Context, id uint64, role string) (model.User, error) {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET role=? WHERE id=?", role, id)
	if err != nil {
		return model.User{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish "no such user" from "role unchanged".
		if _, err := r.GetByID(ctx, id); err != nil {
			return model.User{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// UpdatePassword stores a new bcrypt hash for the user.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET password_hash=? WHERE id=?", passwordHash, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the user row.  Refresh tokens and addresses go with it via
// ON DELETE CASCADE; callers additionally revoke tokens explicitly so the
// dependency is not hidden in the schema.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}
