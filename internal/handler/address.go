package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fabrichub/fabrichub/internal/middleware"
	"github.com/fabrichub/fabrichub/internal/model"
	"github.com/fabrichub/fabrichub/internal/repository"
)

// AddressStore is the slice of the address repository the handlers use.
type AddressStore interface {
	ListByUser(ctx context.Context, userID uint64) ([]model.Address, error)
	Create(ctx context.Context, a *model.Address) error
	Update(ctx context.Context, id, userID uint64, u repository.AddressUpdate) (model.Address, error)
	Delete(ctx context.Context, id, userID uint64) error
}

// AddressHandler serves the address book under /api/users/:id/addresses.
// Strictly self-scoped: the :id must match the authenticated user.
type AddressHandler struct {
	Addresses AddressStore
}

func NewAddressHandler(addresses AddressStore) *AddressHandler {
	return &AddressHandler{Addresses: addresses}
}

// ownAddressBook resolves the :id param and checks it belongs to the caller.
func ownAddressBook(c echo.Context) (uint64, error) {
	id, err := pathID(c, "id")
	if err != nil {
		return 0, fail(c, http.StatusBadRequest, "Invalid user id")
	}
	ident, ok := middleware.IdentityFrom(c)
	if !ok || ident.UserID != id {
		return 0, fail(c, http.StatusForbidden, "Access denied")
	}
	return id, nil
}

// List handles GET /api/users/:id/addresses, default address first.
func (h *AddressHandler) List(c echo.Context) error {
	userID, errResp := ownAddressBook(c)
	if errResp != nil {
		return errResp
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	addrs, err := h.Addresses.ListByUser(ctx, userID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to fetch addresses")
	}
	return respond(c, http.StatusOK, addrs)
}

type addressReq struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	IsDefault bool   `json:"isDefault"`
}

func (r *addressReq) complete() bool {
	for _, v := range []string{r.FirstName, r.LastName, r.Phone, r.Address, r.City, r.State, r.Zip, r.Country} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// Create handles POST /api/users/:id/addresses.  All fields are required;
// flagging the new address default demotes any existing default.
func (h *AddressHandler) Create(c echo.Context) error {
	userID, errResp := ownAddressBook(c)
	if errResp != nil {
		return errResp
	}
	var req addressReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if !req.complete() {
		return fail(c, http.StatusBadRequest, "All address fields are required")
	}

	a := model.Address{
		UserID:    userID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		Zip:       req.Zip,
		Country:   req.Country,
		IsDefault: req.IsDefault,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Addresses.Create(ctx, &a); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to add address")
	}
	return respondMsg(c, http.StatusCreated, a, "Address added successfully")
}

type updateAddressReq struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	State     *string `json:"state"`
	Zip       *string `json:"zip"`
	Country   *string `json:"country"`
	IsDefault *bool   `json:"isDefault"`
}

// Update handles PUT /api/users/:id/addresses/:addressId (partial).
func (h *AddressHandler) Update(c echo.Context) error {
	userID, errResp := ownAddressBook(c)
	if errResp != nil {
		return errResp
	}
	addrID, err := pathID(c, "addressId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid address id")
	}
	var req updateAddressReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	a, err := h.Addresses.Update(ctx, addrID, userID, repository.AddressUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		Zip:       req.Zip,
		Country:   req.Country,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			return fail(c, http.StatusNotFound, "Address not found")
		}
		return fail(c, http.StatusInternalServerError, "Failed to update address")
	}
	return respondMsg(c, http.StatusOK, a, "Address updated successfully")
}

// Delete handles DELETE /api/users/:id/addresses/:addressId.
func (h *AddressHandler) Delete(c echo.Context) error {
	userID, errResp := ownAddressBook(c)
	if errResp != nil {
		return errResp
	}
	addrID, err := pathID(c, "addressId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid address id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Addresses.Delete(ctx, addrID, userID); err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			return fail(c, http.StatusNotFound, "Address not found")
		}
		return fail(c, http.StatusInternalServerError, "Failed to delete address")
	}
	return respondMsg(c, http.StatusOK, nil, "Address deleted successfully")
}
