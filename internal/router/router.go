// Package router wires HTTP routes to handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/fabrichub/fabrichub/internal/handler"
	"github.com/fabrichub/fabrichub/internal/middleware"
	"github.com/fabrichub/fabrichub/internal/token"
)

// RegisterRoutes registers routes that require no authentication. Currently
// this is only the health check used by load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints. Register, login,
// refresh and logout are unauthenticated and sit behind the rate limiter so
// credential stuffing cannot hammer the bcrypt path; /api/auth/me requires a
// valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, ts *token.Service, limiter echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh-token", a.Refresh)
	// Logout takes the refresh token in the body, so it works even after the
	// access token has expired.
	g.POST("/logout", a.Logout)

	me := e.Group("/api/auth", middleware.Auth(ts))
	me.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated catalog browse endpoints.
// Responses are served through the Redis cache middleware when available.
func RegisterPublic(e *echo.Echo, p *handler.ProductHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/api")
	if cache != nil {
		g.Use(cache)
	}
	g.GET("/products", p.List)
	g.GET("/products/:id", p.Get)
}
