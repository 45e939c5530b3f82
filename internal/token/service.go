// Package token mints, verifies and rotates the two credential types of the
// API: short-lived stateless access tokens and long-lived store-backed
// refresh tokens.  The two have distinct verification paths: an access token
// is proven by signature and expiry alone, while a refresh token is only as
// alive as its database row.
package token

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fabrichub/fabrichub/internal/model"
	"github.com/fabrichub/fabrichub/internal/repository"
)

// ErrInvalidToken covers every access-token verification failure: bad
// signature, wrong algorithm, malformed claims or natural expiry.  Callers
// get no finer detail so responses cannot leak why a token was rejected.
var ErrInvalidToken = errors.New("invalid or expired token")

// ErrInvalidRefresh is returned when a refresh token has no matching row
// (never issued, already revoked, or purged after expiring).
var ErrInvalidRefresh = errors.New("invalid refresh token")

// ErrExpiredRefresh is returned when the stored row exists but is past its
// expiry.  The row is deleted as a side effect, so retrying the same token
// yields ErrInvalidRefresh.
var ErrExpiredRefresh = errors.New("refresh token expired")

// UserStore is the slice of the credential store the service needs to
// re-derive a user's current role during rotation.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// RefreshStore persists refresh-token rows, the sole source of truth for
// refresh revocation.
type RefreshStore interface {
	Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	Find(ctx context.Context, tokenHash string) (model.RefreshToken, error)
	DeleteByHash(ctx context.Context, tokenHash string) error
}

// Config carries the signing secrets and lifetimes, loaded once at startup.
// The refresh secret must differ from the access secret so a leaked access
// key cannot forge refresh tokens.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Identity is the verified claim set of an access token.
type Identity struct {
	UserID uint64
	Email  string
	Role   string
}

// Pair is one freshly issued access/refresh token pair with expiries.
type Pair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Service issues and verifies token pairs.  The clock is injectable so
// tests can issue already-expired tokens.
type Service struct {
	cfg    Config
	users  UserStore
	tokens RefreshStore
	now    func() time.Time
}

func New(cfg Config, users UserStore, tokens RefreshStore) *Service {
	return &Service{cfg: cfg, users: users, tokens: tokens, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the service clock.  Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// HashRefresh returns the SHA-256 hex digest under which a refresh token is
// stored.  Only the hash ever reaches the database.
func HashRefresh(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func (s *Service) signed(secret string, userID uint64, email, role string, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(userID, 10),
		"email": email,
		"role":  role,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// IssuePair mints an access token and a refresh token for the user and
// persists the refresh token's hash with its expiry.  Every call inserts a
// new row: logins are additive and each device/session holds its own
// refresh token.
func (s *Service) IssuePair(ctx context.Context, userID uint64, email, role string) (Pair, error) {
	access, accessExp, err := s.signed(s.cfg.AccessSecret, userID, email, role, s.cfg.AccessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, refreshExp, err := s.signed(s.cfg.RefreshSecret, userID, email, role, s.cfg.RefreshTTL)
	if err != nil {
		return Pair{}, err
	}
	if err := s.tokens.Store(ctx, userID, HashRefresh(refresh), refreshExp); err != nil {
		return Pair{}, err
	}
	return Pair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// VerifyAccess checks an access token's signature and expiry and returns
// the embedded identity.  No store lookup happens here: access tokens are
// bearer-stateless and unrevocable until they expire.
func (s *Service) VerifyAccess(raw string) (Identity, error) {
	// Expiry is checked against the service clock, not the wall clock, so
	// issuance and verification always agree on the time.
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.cfg.AccessSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !tok.Valid {
		return Identity{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	userID, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || userID == 0 {
		return Identity{}, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if role == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: userID, Email: email, Role: role}, nil
}

// RotateAccess exchanges a valid refresh token for a fresh access token.
// The refresh token itself is not rotated: it stays usable until its own
// expiry or logout.  The user's role is re-read from the store rather than
// trusted from the (possibly stale) refresh claims, so a demoted seller
// cannot keep minting SELLER access tokens.
func (s *Service) RotateAccess(ctx context.Context, refreshRaw string) (string, time.Time, error) {
	hash := HashRefresh(refreshRaw)
	row, err := s.tokens.Find(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return "", time.Time{}, ErrInvalidRefresh
		}
		return "", time.Time{}, err
	}
	if s.now().After(row.ExpiresAt) {
		// Lazy purge: the dead row goes away on its first use attempt.
		if err := s.tokens.DeleteByHash(ctx, hash); err != nil {
			return "", time.Time{}, err
		}
		return "", time.Time{}, ErrExpiredRefresh
	}

	u, err := s.users.GetByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", time.Time{}, ErrInvalidRefresh
		}
		return "", time.Time{}, err
	}
	return s.signedAccess(u)
}

func (s *Service) signedAccess(u model.User) (string, time.Time, error) {
	return s.signed(s.cfg.AccessSecret, u.ID, u.Email, u.Role, s.cfg.AccessTTL)
}

// Revoke deletes the row for the given refresh token.  No-op when the row
// is already gone, so logout is idempotent.
func (s *Service) Revoke(ctx context.Context, refreshRaw string) error {
	return s.tokens.DeleteByHash(ctx, HashRefresh(refreshRaw))
}
