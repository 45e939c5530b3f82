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
)

// ProductStore is the slice of the product repository the handlers use.
type ProductStore interface {
	List(ctx context.Context, f repository.ProductFilter) ([]model.Product, int, error)
	GetByID(ctx context.Context, id uint64) (model.Product, error)
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, id, sellerID uint64, u repository.ProductUpdate) (model.Product, error)
}

// ProductHandler serves the fabric catalog.  Reads are public (and sit
// behind the response cache); writes require SELLER or ADMIN.
type ProductHandler struct {
	Products ProductStore
}

func NewProductHandler(products ProductStore) *ProductHandler {
	return &ProductHandler{Products: products}
}

// List handles GET /api/products with ?category, ?search, ?page, ?limit.
func (h *ProductHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	f := repository.ProductFilter{
		Category: strings.TrimSpace(c.QueryParam("category")),
		Search:   strings.TrimSpace(c.QueryParam("search")),
		Page:     page,
		Limit:    limit,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, total, err := h.Products.List(ctx, f)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to fetch products")
	}
	return respond(c, http.StatusOK, echo.Map{
		"products":   items,
		"pagination": newPagination(page, limit, total),
	})
}

// Get handles GET /api/products/:id.
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid product id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return fail(c, http.StatusNotFound, "Product not found")
		}
		return fail(c, http.StatusInternalServerError, "Failed to fetch product")
	}
	return respond(c, http.StatusOK, p)
}

type createProductReq struct {
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	Category           string   `json:"category"`
	Material           string   `json:"material"`
	Width              string   `json:"width"`
	Colors             []string `json:"colors"`
	PricePerMeterCents uint32   `json:"pricePerMeterCents"`
	PricePerRollCents  uint32   `json:"pricePerRollCents"`
	RollLengthMeters   uint32   `json:"rollLengthMeters"`
	Stock              uint32   `json:"stock"`
}

// Create handles POST /api/products (SELLER or ADMIN, enforced by the
// router).  The listing is owned by the caller.
func (h *ProductHandler) Create(c echo.Context) error {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "No token provided")
	}
	var req createProductReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if req.Name == "" || req.Category == "" || req.PricePerMeterCents == 0 {
		return fail(c, http.StatusBadRequest, "Missing required fields")
	}

	p := model.Product{
		SellerID:           ident.UserID,
		Name:               req.Name,
		Description:        req.Description,
		Category:           req.Category,
		Material:           req.Material,
		Width:              req.Width,
		Colors:             req.Colors,
		PricePerMeterCents: req.PricePerMeterCents,
		PricePerRollCents:  req.PricePerRollCents,
		RollLengthMeters:   req.RollLengthMeters,
		Stock:              req.Stock,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Products.Create(ctx, &p); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to create product")
	}
	return respondMsg(c, http.StatusCreated, p, "Product created successfully")
}

type updateProductReq struct {
	Name               *string   `json:"name"`
	Description        *string   `json:"description"`
	Category           *string   `json:"category"`
	Material           *string   `json:"material"`
	Width              *string   `json:"width"`
	Colors             *[]string `json:"colors"`
	PricePerMeterCents *uint32   `json:"pricePerMeterCents"`
	PricePerRollCents  *uint32   `json:"pricePerRollCents"`
	RollLengthMeters   *uint32   `json:"rollLengthMeters"`
	Stock              *uint32   `json:"stock"`
}

// Update handles PUT /api/products/:id.  Sellers can only update their own
// listings; admins can update any.
func (h *ProductHandler) Update(c echo.Context) error {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "No token provided")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid product id")
	}
	var req updateProductReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	// Zero seller id disables the ownership filter for admins.
	sellerScope := ident.UserID
	if ident.Role == model.RoleAdmin {
		sellerScope = 0
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Products.Update(ctx, id, sellerScope, repository.ProductUpdate{
		Name:               req.Name,
		Description:        req.Description,
		Category:           req.Category,
		Material:           req.Material,
		Width:              req.Width,
		Colors:             req.Colors,
		PricePerMeterCents: req.PricePerMeterCents,
		PricePerRollCents:  req.PricePerRollCents,
		RollLengthMeters:   req.RollLengthMeters,
		Stock:              req.Stock,
	})
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return fail(c, http.StatusNotFound, "Product not found")
		}
		return fail(c, http.StatusInternalServerError, "Failed to update product")
	}
	return respondMsg(c, http.StatusOK, p, "Product updated successfully")
}
