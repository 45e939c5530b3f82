package router

import (
	"github.com/labstack/echo/v4"

	"github.com/fabrichub/fabrichub/internal/handler"
	"github.com/fabrichub/fabrichub/internal/middleware"
	"github.com/fabrichub/fabrichub/internal/token"
)

// RegisterCustomer registers the endpoints every authenticated user can
// reach: checkout and order history, the personal address book, and profile
// management. Ownership checks (self or admin) live in the handlers, so no
// role middleware is attached here.
func RegisterCustomer(e *echo.Echo, o *handler.OrderHandler, addr *handler.AddressHandler, u *handler.UserHandler, ts *token.Service) {
	g := e.Group("/api", middleware.Auth(ts))

	// ---- Orders ----
	g.POST("/orders", o.Create)
	g.GET("/orders", o.List)
	g.GET("/orders/:id", o.Get)

	// ---- Address book (strictly self, enforced in the handler) ----
	g.GET("/users/:id/addresses", addr.List)
	g.POST("/users/:id/addresses", addr.Create)
	g.PUT("/users/:id/addresses/:addressId", addr.Update)
	g.DELETE("/users/:id/addresses/:addressId", addr.Delete)

	// ---- Profile (self or admin, enforced in the handler) ----
	g.GET("/users/:id", u.Get)
	g.PUT("/users/:id", u.Update)
	g.PUT("/users/:id/password", u.ChangePassword)
}
