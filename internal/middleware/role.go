package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ciaapp/seat-reservation/internal/model"
)

// CurrentIdentity returns the identity stored by JWTAuth.  It fails
// when the middleware did not run or stored an unexpected type.
func CurrentIdentity(c echo.Context) (model.Identity, error) {
	ident, ok := c.Get(identityKey).(model.Identity)
	if !ok {
		return model.Identity{}, errors.New("no identity in context")
	}
	return ident, nil
}

// RequireAdmin aborts with 403 unless the authenticated identity
// carries the admin role.  The role is a closed enum normalized at
// token verification; no scope-string inspection happens here.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, err := CurrentIdentity(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			if ident.Role != model.RoleAdmin {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "admin privileges required"})
			}
			return next(c)
		}
	}
}
