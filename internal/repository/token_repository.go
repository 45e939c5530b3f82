package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fabrichub/fabrichub/internal/model"
)

// ErrTokenNotFound is returned when no refresh token row matches a hash.
var ErrTokenNotFound = errors.New("refresh token not found")

// TokenRepo persists refresh tokens (hash-at-rest, single 'token_hash'
// column).  Each login/registration inserts a fresh row, so a user holds one
// row per active session.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts a refresh token hash row with its expiry.
func (r *TokenRepo) Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp)
	return err
}

// Find returns the stored row for a token hash, expired or not.  Expiry
// policy (delete-on-expired-use) lives in the token service, not here.
func (r *TokenRepo) Find(ctx context.Context, tokenHash string) (model.RefreshToken, error) {
	var t model.RefreshToken
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, expires_at, created_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RefreshToken{}, ErrTokenNotFound
	}
	return t, err
}

// DeleteByHash removes the row for a token hash.  It is a no-op when the
// row is already gone, which makes logout idempotent.
func (r *TokenRepo) DeleteByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE token_hash=?", tokenHash)
	return err
}

// DeleteAllForUser removes every refresh token owned by a user.  Used when
// an admin deletes the account so no session can mint new access tokens.
func (r *TokenRepo) DeleteAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE user_id=?", userID)
	return err
}
