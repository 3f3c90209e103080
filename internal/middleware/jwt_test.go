package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "jwt-test-secret"

func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func protectedApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", JWTProtected(testSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":   c.Locals("user_id"),
			"user_role": c.Locals("user_role"),
		})
	})
	return app
}

func TestJWTProtectedAcceptsValidToken(t *testing.T) {
	app := protectedApp()
	token := signedToken(t, testSecret, jwt.MapClaims{
		"sub":  float64(7),
		"role": "student",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestJWTProtectedRejectsMissingHeader(t *testing.T) {
	app := protectedApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedRejectsWrongSecret(t *testing.T) {
	app := protectedApp()
	token := signedToken(t, "some-other-secret", jwt.MapClaims{
		"sub": float64(7),
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedRejectsExpiredToken(t *testing.T) {
	app := protectedApp()
	token := signedToken(t, testSecret, jwt.MapClaims{
		"sub": float64(7),
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedRejectsTokenWithoutSubject(t *testing.T) {
	app := protectedApp()
	token := signedToken(t, testSecret, jwt.MapClaims{
		"role": "student",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSubjectFromClaims(t *testing.T) {
	tests := []struct {
		name    string
		claims  jwt.MapClaims
		want    uint
		wantErr bool
	}{
		{"float subject", jwt.MapClaims{"sub": float64(7)}, 7, false},
		{"string subject", jwt.MapClaims{"sub": "42"}, 42, false},
		{"negative subject", jwt.MapClaims{"sub": float64(-1)}, 0, true},
		{"absent subject", jwt.MapClaims{}, 0, true},
		{"unsupported type", jwt.MapClaims{"sub": true}, 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := subjectFromClaims(tc.claims)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestRoleFromClaims(t *testing.T) {
	require.Equal(t, "admin", roleFromClaims(jwt.MapClaims{"role": " Admin "}))
	require.Empty(t, roleFromClaims(jwt.MapClaims{"role": 3}))
	require.Empty(t, roleFromClaims(jwt.MapClaims{}))
}
