package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/saathi-ai/saathi-core/internal/domain"
	"github.com/saathi-ai/saathi-core/internal/service/auth"
)

// RequirePermission gates a route on the caller's role. It runs after
// AuthRequired, which stores the role in locals.
func RequirePermission(rbac *auth.RBACService, resource, action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("user_role").(domain.UserRole)
		if !ok || role == "" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Role not resolved"})
		}

		if !rbac.CheckPermission(c.Context(), string(role), resource, action) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions"})
		}

		return c.Next()
	}
}
