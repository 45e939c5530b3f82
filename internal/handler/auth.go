package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fabrichub/fabrichub/internal/middleware"
	"github.com/fabrichub/fabrichub/internal/model"
	"github.com/fabrichub/fabrichub/internal/repository"
	"github.com/fabrichub/fabrichub/internal/token"
	"github.com/fabrichub/fabrichub/internal/utils"
)

// dbTimeout bounds every per-request database call.
const dbTimeout = 5 * time.Second

// UserStore is the slice of the user repository the auth endpoints need.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash, firstName, lastName, phone, role string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Users      UserStore
	Tokens     *token.Service
	BcryptCost int
}

func NewAuthHandler(users UserStore, tokens *token.Service, bcryptCost int) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens, BcryptCost: bcryptCost}
}

// ----- DTOs -----

type registerReq struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type authData struct {
	User         userResp `json:"user"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
}

// Register handles POST /api/auth/register.  Every new account starts as a
// CUSTOMER; promotion is an admin-only operation elsewhere.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		return fail(c, http.StatusBadRequest, "All fields are required")
	}

	hash, err := utils.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Registration failed")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Email, hash, req.FirstName, req.LastName, req.Phone, model.RoleCustomer)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return fail(c, http.StatusBadRequest, "Email already registered")
		}
		return fail(c, http.StatusInternalServerError, "Registration failed")
	}

	pair, err := h.Tokens.IssuePair(ctx, u.ID, u.Email, u.Role)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Registration failed")
	}

	return respond(c, http.StatusCreated, authData{
		User:         newUserResp(u),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Login handles POST /api/auth/login.  Unknown email and wrong password are
// answered with the exact same payload so the endpoint cannot be used to
// enumerate accounts.  Each login issues a fresh pair and leaves prior
// sessions untouched.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "Email and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fail(c, http.StatusUnauthorized, "Invalid credentials")
		}
		return fail(c, http.StatusInternalServerError, "Login failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, "Invalid credentials")
	}

	pair, err := h.Tokens.IssuePair(ctx, u.ID, u.Email, u.Role)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Login failed")
	}

	return respond(c, http.StatusOK, authData{
		User:         newUserResp(u),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Refresh handles POST /api/auth/refresh-token: exchange a live refresh
// token for a new access token.  The refresh token is not rotated.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return fail(c, http.StatusBadRequest, "Refresh token required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	access, _, err := h.Tokens.RotateAccess(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		switch {
		case errors.Is(err, token.ErrExpiredRefresh):
			return fail(c, http.StatusUnauthorized, "Refresh token expired")
		case errors.Is(err, token.ErrInvalidRefresh):
			return fail(c, http.StatusUnauthorized, "Invalid refresh token")
		}
		return fail(c, http.StatusInternalServerError, "Refresh failed")
	}

	return respond(c, http.StatusOK, echo.Map{"accessToken": access})
}

// Me handles GET /api/auth/me.  The identity comes from the auth
// middleware; the full profile is read fresh so the response reflects the
// current row, not the token snapshot.  A 404 here means the account was
// deleted while its access token was still live, an accepted race since
// access tokens cannot be revoked before they expire.
func (h *AuthHandler) Me(c echo.Context) error {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "No token provided")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, ident.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fail(c, http.StatusNotFound, "User not found")
		}
		return fail(c, http.StatusInternalServerError, "Lookup failed")
	}
	return respond(c, http.StatusOK, newUserResp(u))
}

// Logout handles POST /api/auth/logout.  Deletes exactly the presented
// refresh token: other sessions of the same user stay valid.  Idempotent;
// an unknown or already-deleted token still gets a 200 ack.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)

	raw := strings.TrimSpace(req.RefreshToken)
	if raw != "" {
		ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
		defer cancel()
		if err := h.Tokens.Revoke(ctx, raw); err != nil {
			return fail(c, http.StatusInternalServerError, "Logout failed")
		}
	}
	return respondMsg(c, http.StatusOK, nil, "Logged out successfully")
}
