package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole returns a middleware that enforces that the authenticated
// identity carries one of the given roles.  It assumes Auth ran earlier in
// the chain; a missing identity is treated the same as a wrong role.  The
// two combinations used by the routers are ADMIN-only and SELLER-or-ADMIN.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, ok := IdentityFrom(c)
			if !ok || !allowed[ident.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{
					"success": false, "error": "Insufficient permissions",
				})
			}
			return next(c)
		}
	}
}
