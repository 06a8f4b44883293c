package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciaapp/seat-reservation/internal/model"
	"github.com/ciaapp/seat-reservation/internal/utils"
)

const testSecret = "middleware-test-secret"

func newContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestRequireAdmin(t *testing.T) {
	t.Run("no identity", func(t *testing.T) {
		c, rec := newContext(t)
		require.NoError(t, RequireAdmin()(okHandler)(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("standard role", func(t *testing.T) {
		c, rec := newContext(t)
		c.Set(identityKey, model.Identity{UserID: 1, Role: model.RoleStandard})
		require.NoError(t, RequireAdmin()(okHandler)(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin role", func(t *testing.T) {
		c, rec := newContext(t)
		c.Set(identityKey, model.Identity{UserID: 1, Role: model.RoleAdmin})
		require.NoError(t, RequireAdmin()(okHandler)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestJWTAuth(t *testing.T) {
	u := model.User{ID: 9, FullName: "Grace", Email: "grace@example.com", Scopes: "default,admin"}
	access, err := utils.NewAccessToken(testSecret, u, 60)
	require.NoError(t, err)

	t.Run("valid token stores identity", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+access.Token)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		var seen model.Identity
		handler := JWTAuth(testSecret)(func(c echo.Context) error {
			ident, err := CurrentIdentity(c)
			require.NoError(t, err)
			seen = ident
			return c.NoContent(http.StatusOK)
		})
		require.NoError(t, handler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, uint64(9), seen.UserID)
		assert.Equal(t, model.RoleAdmin, seen.Role)
	})

	t.Run("missing header", func(t *testing.T) {
		c, rec := newContext(t)
		require.NoError(t, JWTAuth(testSecret)(okHandler)(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+access.Token)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		require.NoError(t, JWTAuth("other-secret")(okHandler)(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
