package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/fabrichub/fabrichub/internal/middleware"
	"github.com/fabrichub/fabrichub/internal/model"
	"github.com/fabrichub/fabrichub/internal/queue"
	"github.com/fabrichub/fabrichub/internal/repository"
	queue_publisher "github.com/fabrichub/fabrichub/internal/service"
)

// Shipping is free above the threshold, flat otherwise. Tax is applied to
// goods plus shipping. All values in cents.
const (
	freeShippingOverCents = 5000
	flatShippingCents     = 1000
	taxRatePercent        = 10
)

// maxItemQuantity bounds a single order line. Anything larger is a typo or
// an abuse attempt, not a fabric order.
const maxItemQuantity = 10000

// OrderStore is the slice of the order repository the handlers use.
type OrderStore interface {
	Create(ctx context.Context, o *model.Order) error
	GetByID(ctx context.Context, id uint64) (model.Order, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id uint64, status string) (model.Order, error)
}

// OrderPricer resolves catalog prices at checkout time.
type OrderPricer interface {
	GetByID(ctx context.Context, id uint64) (model.Product, error)
}

// OrderHandler serves checkout and order history. Publish is called after a
// successful checkout; failures are logged, never surfaced to the customer.
type OrderHandler struct {
	Orders   OrderStore
	Products OrderPricer
	Publish  func(ctx context.Context, ev queue.OrderPlacedEvent) error
}

func NewOrderHandler(orders OrderStore, products OrderPricer) *OrderHandler {
	return &OrderHandler{
		Orders:   orders,
		Products: products,
		Publish:  queue_publisher.PublishOrderPlaced,
	}
}

// colorOffered reports whether the requested color is one the listing
// offers. Matching is case-insensitive.
func colorOffered(offered []string, color string) bool {
	for _, c := range offered {
		if strings.EqualFold(c, color) {
			return true
		}
	}
	return false
}

type orderItemReq struct {
	ProductID uint64 `json:"productId"`
	Color     string `json:"color"`
	Unit      string `json:"unit"`
	Quantity  uint32 `json:"quantity"`
}

type createOrderReq struct {
	Items    []orderItemReq `json:"items"`
	Shipping struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Phone     string `json:"phone"`
		Address   string `json:"address"`
		City      string `json:"city"`
		State     string `json:"state"`
		Zip       string `json:"zip"`
		Country   string `json:"country"`
	} `json:"shippingAddress"`
}

// Create handles POST /api/orders. Prices come from the catalog, never from
// the request body, and totals are computed server side.
func (h *OrderHandler) Create(c echo.Context) error {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "No token provided")
	}
	var req createOrderReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if len(req.Items) == 0 {
		return fail(c, http.StatusBadRequest, "Cart cannot be empty")
	}
	if strings.TrimSpace(req.Shipping.Address) == "" || strings.TrimSpace(req.Shipping.City) == "" {
		return fail(c, http.StatusBadRequest, "Shipping address is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	// Money math runs in uint64 so a large (but JSON-valid) quantity can
	// never wrap the subtotal or the derived tax and total.
	var subtotal uint64
	items := make([]model.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity == 0 || it.Quantity > maxItemQuantity {
			return fail(c, http.StatusBadRequest, "Invalid item quantity")
		}
		p, err := h.Products.GetByID(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return fail(c, http.StatusBadRequest, "Product not found")
			}
			return fail(c, http.StatusInternalServerError, "Failed to create order")
		}
		if len(p.Colors) > 0 && !colorOffered(p.Colors, it.Color) {
			return fail(c, http.StatusBadRequest, "Invalid color selection")
		}
		var unitPrice uint32
		switch it.Unit {
		case "roll":
			if p.PricePerRollCents == 0 {
				return fail(c, http.StatusBadRequest, "Product is not sold by the roll")
			}
			unitPrice = p.PricePerRollCents
		default:
			unitPrice = p.PricePerMeterCents
		}
		subtotal += uint64(unitPrice) * uint64(it.Quantity)
		items = append(items, model.OrderItem{
			ProductID:  p.ID,
			Name:       p.Name,
			Color:      it.Color,
			Unit:       it.Unit,
			Quantity:   it.Quantity,
			PriceCents: unitPrice,
		})
	}

	var shipping uint64
	if subtotal <= freeShippingOverCents {
		shipping = flatShippingCents
	}
	tax := (subtotal + shipping) * taxRatePercent / 100

	o := model.Order{
		OrderNumber:   "ORD-" + uuid.NewString(),
		UserID:        ident.UserID,
		Status:        model.OrderPending,
		SubtotalCents: subtotal,
		ShippingCents: shipping,
		TaxCents:      tax,
		TotalCents:    subtotal + shipping + tax,
		ShipName:      strings.TrimSpace(req.Shipping.FirstName + " " + req.Shipping.LastName),
		ShipPhone:     req.Shipping.Phone,
		ShipAddress:   req.Shipping.Address,
		ShipCity:      req.Shipping.City,
		ShipState:     req.Shipping.State,
		ShipZip:       req.Shipping.Zip,
		ShipCountry:   req.Shipping.Country,
		Items:         items,
	}

	if err := h.Orders.Create(ctx, &o); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to create order")
	}

	if h.Publish != nil {
		ev := queue.OrderPlacedEvent{
			OrderID:     o.ID,
			OrderNumber: o.OrderNumber,
			UserID:      o.UserID,
			TotalCents:  o.TotalCents,
			ItemCount:   len(o.Items),
			PlacedAt:    time.Now().UTC(),
		}
		if err := h.Publish(c.Request().Context(), ev); err != nil {
			log.Printf("order: publish order.placed failed for %s: %v", o.OrderNumber, err)
		}
	}

	return respondMsg(c, http.StatusCreated, o, "Order placed successfully")
}

// List handles GET /api/orders and returns the caller's own orders.
func (h *OrderHandler) List(c echo.Context) error {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "No token provided")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	orders, err := h.Orders.ListByUser(ctx, ident.UserID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to fetch orders")
	}
	return respond(c, http.StatusOK, orders)
}

// Get handles GET /api/orders/:id. Customers can only see their own orders;
// admins can see any.
func (h *OrderHandler) Get(c echo.Context) error {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "No token provided")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid order id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	o, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return fail(c, http.StatusNotFound, "Order not found")
		}
		return fail(c, http.StatusInternalServerError, "Failed to fetch order")
	}
	if o.UserID != ident.UserID && ident.Role != model.RoleAdmin {
		return fail(c, http.StatusForbidden, "Access denied")
	}
	return respond(c, http.StatusOK, o)
}

type updateStatusReq struct {
	Status string `json:"status"`
}

// UpdateStatus handles PUT /api/orders/:id/status (SELLER or ADMIN,
// enforced by the router).
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid order id")
	}
	var req updateStatusReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	req.Status = strings.ToUpper(strings.TrimSpace(req.Status))
	if !model.ValidOrderStatus(req.Status) {
		return fail(c, http.StatusBadRequest, "Invalid status")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	o, err := h.Orders.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return fail(c, http.StatusNotFound, "Order not found")
		}
		return fail(c, http.StatusInternalServerError, "Failed to update order")
	}
	return respondMsg(c, http.StatusOK, o, "Order status updated successfully")
}
