package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fabrichub/fabrichub/internal/token"
)

// identityKey is the single context key under which the verified identity is
// stored.  Handlers never poke at loose "user_id"/"role" entries; they go
// through IdentityFrom, which keeps the contract typed.
const identityKey = "auth.identity"

// Auth returns an Echo middleware that validates a Bearer access token and
// attaches the verified identity to the request context.  Verification is
// delegated to the token service so the signature check lives in exactly
// one place.  This middleware must wrap every protected route.
func Auth(ts *token.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "error": "No token provided",
				})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			ident, err := ts.VerifyAccess(raw)
			if err != nil {
				// One message for every failure mode: expiry, tampering and
				// clock skew are indistinguishable to the client.
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "error": "Invalid or expired token",
				})
			}
			c.Set(identityKey, ident)
			return next(c)
		}
	}
}

// IdentityFrom returns the identity attached by Auth, if any.
func IdentityFrom(c echo.Context) (token.Identity, bool) {
	ident, ok := c.Get(identityKey).(token.Identity)
	return ident, ok
}
