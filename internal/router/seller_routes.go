package router

import (
	"github.com/labstack/echo/v4"

	"github.com/fabrichub/fabrichub/internal/handler"
	"github.com/fabrichub/fabrichub/internal/middleware"
	"github.com/fabrichub/fabrichub/internal/model"
	"github.com/fabrichub/fabrichub/internal/token"
)

// RegisterSeller registers catalog write endpoints and order fulfilment.
// All routes require a valid access token and the SELLER or ADMIN role.
// Sellers can only touch their own listings; that scoping is applied in the
// product handler.
func RegisterSeller(e *echo.Echo, p *handler.ProductHandler, o *handler.OrderHandler, ts *token.Service) {
	g := e.Group(
		"/api",
		middleware.Auth(ts),
		middleware.RequireRole(model.RoleSeller, model.RoleAdmin),
	)

	// ---- Catalog ----
	g.POST("/products", p.Create)
	g.PUT("/products/:id", p.Update)

	// ---- Fulfilment ----
	g.PUT("/orders/:id/status", o.UpdateStatus)
}
