package router

import (
	"github.com/labstack/echo/v4"

	"github.com/fabrichub/fabrichub/internal/handler"
	"github.com/fabrichub/fabrichub/internal/middleware"
	"github.com/fabrichub/fabrichub/internal/model"
	"github.com/fabrichub/fabrichub/internal/token"
)

// RegisterAdmin registers user administration endpoints. All routes require
// a valid access token and the ADMIN role.
func RegisterAdmin(e *echo.Echo, u *handler.UserHandler, ts *token.Service) {
	g := e.Group(
		"/api",
		middleware.Auth(ts),
		middleware.RequireRole(model.RoleAdmin),
	)

	g.GET("/users", u.List)
	g.PUT("/users/:id/role", u.UpdateRole)
	g.DELETE("/users/:id", u.Delete)
}
