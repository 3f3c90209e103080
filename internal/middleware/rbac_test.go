package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func roleApp(userID interface{}, role interface{}, handler fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Get("/guarded",
		func(c *fiber.Ctx) error {
			if userID != nil {
				c.Locals("user_id", userID)
			}
			if role != nil {
				c.Locals("user_role", role)
			}
			return c.Next()
		},
		handler,
		func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) },
	)
	return app
}

func TestRequireRoleAllowsListedRole(t *testing.T) {
	app := roleApp(uint(7), "instructor", RequireRole("admin", "instructor"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRoleForbidsOtherRole(t *testing.T) {
	app := roleApp(uint(7), "student", RequireRole("admin", "instructor"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRequireRoleRequiresAuthentication(t *testing.T) {
	app := roleApp(nil, nil, RequireRole("admin"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireRoleNormalisesCase(t *testing.T) {
	app := roleApp(uint(7), " Admin ", RequireRole("admin"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
