package middleware // middleware contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ciaapp/seat-reservation/internal/utils"
)

// identityKey is the context key under which the normalized identity is
// stored for downstream middleware and handlers.
const identityKey = "identity"

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and stores the normalized model.Identity in the request
// context.  The provided secret must match the one used when issuing
// tokens.  Handlers access the identity via CurrentIdentity.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")
			ident, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(identityKey, ident)
			return next(c)
		}
	}
}
