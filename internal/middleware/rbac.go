package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/nivora-labs/bootcamp-api/internal/utils"
)

// RequireRole ensures that the authenticated user possesses one of the allowed roles.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		normalized := strings.ToLower(strings.TrimSpace(role))
		if normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		if c.Locals("user_id") == nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		role := normalizeRoleValue(c.Locals("user_role"))
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}

		return c.Next()
	}
}

func normalizeRoleValue(value interface{}) string {
	if value == nil {
		return ""
	}
	if role, ok := value.(string); ok {
		return strings.ToLower(strings.TrimSpace(role))
	}
	return ""
}
