package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fabrichub/fabrichub/internal/middleware"
	"github.com/fabrichub/fabrichub/internal/model"
	"github.com/fabrichub/fabrichub/internal/repository"
	"github.com/fabrichub/fabrichub/internal/utils"
)

// UserAdminStore extends the auth store with the management operations used
// by the profile and admin endpoints.
type UserAdminStore interface {
	UserStore
	List(ctx context.Context, f repository.UserFilter) ([]model.User, int, error)
	UpdateProfile(ctx context.Context, id uint64, p repository.ProfileUpdate) (model.User, error)
	UpdateRole(ctx context.Context, id uint64, role string) (model.User, error)
	UpdatePassword(ctx context.Context, id uint64, passwordHash string) error
	Delete(ctx context.Context, id uint64) error
}

// SessionRevoker kills every refresh token of a user.  Wired to the token
// repository; used when an admin deletes an account so the deleted user
// cannot mint new access tokens (their last access token decays on its own
// within minutes).
type SessionRevoker interface {
	DeleteAllForUser(ctx context.Context, userID uint64) error
}

// UserHandler bundles dependencies for user management endpoints.
type UserHandler struct {
	Users      UserAdminStore
	Sessions   SessionRevoker
	BcryptCost int
}

func NewUserHandler(users UserAdminStore, sessions SessionRevoker, bcryptCost int) *UserHandler {
	return &UserHandler{Users: users, Sessions: sessions, BcryptCost: bcryptCost}
}

// pathID parses the numeric :id path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// canAccessUser reports whether the authenticated identity may read or
// mutate the target user: the user themselves, or any admin.
func canAccessUser(c echo.Context, targetID uint64) bool {
	ident, ok := middleware.IdentityFrom(c)
	return ok && (ident.UserID == targetID || ident.Role == model.RoleAdmin)
}

// List handles GET /api/users (admin only, enforced by the router).
// Supports ?page, ?limit, ?role and ?search.
func (h *UserHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	f := repository.UserFilter{
		Role:   strings.TrimSpace(c.QueryParam("role")),
		Search: strings.TrimSpace(c.QueryParam("search")),
		Page:   page,
		Limit:  limit,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, total, err := h.Users.List(ctx, f)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to fetch users")
	}
	out := make([]userResp, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResp(u))
	}
	return respond(c, http.StatusOK, echo.Map{
		"users":      out,
		"pagination": newPagination(page, limit, total),
	})
}

// Get handles GET /api/users/:id (self or admin).
func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid user id")
	}
	if !canAccessUser(c, id) {
		return fail(c, http.StatusForbidden, "Access denied")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fail(c, http.StatusNotFound, "User not found")
		}
		return fail(c, http.StatusInternalServerError, "Failed to fetch user")
	}
	return respond(c, http.StatusOK, newUserResp(u))
}

type updateUserReq struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	Avatar    *string `json:"avatar"`
	Bio       *string `json:"bio"`
}

// Update handles PUT /api/users/:id (self or admin).  Absent fields are
// left untouched; email and role are not updatable here.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid user id")
	}
	if !canAccessUser(c, id) {
		return fail(c, http.StatusForbidden, "Access denied")
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.UpdateProfile(ctx, id, repository.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Avatar:    req.Avatar,
		Bio:       req.Bio,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fail(c, http.StatusNotFound, "User not found")
		}
		return fail(c, http.StatusInternalServerError, "Failed to update user")
	}
	return respondMsg(c, http.StatusOK, newUserResp(u), "Profile updated successfully")
}

// UpdateRole handles PUT /api/users/:id/role (admin only, enforced by the
// router).
func (h *UserHandler) UpdateRole(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid user id")
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if !model.ValidRole(role) {
		return fail(c, http.StatusBadRequest, "Invalid role")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.UpdateRole(ctx, id, role)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fail(c, http.StatusNotFound, "User not found")
		}
		return fail(c, http.StatusInternalServerError, "Failed to update role")
	}
	return respondMsg(c, http.StatusOK, newUserResp(u), "User role updated successfully")
}

// Delete handles DELETE /api/users/:id (admin only, enforced by the
// router).  Refresh tokens are revoked explicitly before the row goes, so
// no session of the deleted user can mint new access tokens afterwards.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid user id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Sessions.DeleteAllForUser(ctx, id); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to delete user")
	}
	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fail(c, http.StatusNotFound, "User not found")
		}
		return fail(c, http.StatusInternalServerError, "Failed to delete user")
	}
	return respondMsg(c, http.StatusOK, nil, "User deleted successfully")
}

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword handles PUT /api/users/:id/password.  Strictly self: not
// even an admin may change someone else's password through this flow.  The
// current password is re-verified and the new one must be at least six
// characters before any write happens.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid user id")
	}
	ident, ok := middleware.IdentityFrom(c)
	if !ok || ident.UserID != id {
		return fail(c, http.StatusForbidden, "Access denied")
	}

	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return fail(c, http.StatusBadRequest, "Current and new passwords are required")
	}
	if len(req.NewPassword) < utils.MinPasswordLen {
		return fail(c, http.StatusBadRequest, "New password must be at least 6 characters")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fail(c, http.StatusNotFound, "User not found")
		}
		return fail(c, http.StatusInternalServerError, "Failed to change password")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		return fail(c, http.StatusUnauthorized, "Current password is incorrect")
	}

	hash, err := utils.HashPassword(req.NewPassword, h.BcryptCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to change password")
	}
	if err := h.Users.UpdatePassword(ctx, id, hash); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to change password")
	}
	return respondMsg(c, http.StatusOK, nil, "Password changed successfully")
}
