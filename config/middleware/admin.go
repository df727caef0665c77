package middleware

import (
	"github.com/gofiber/fiber/v2"

	"attendance-core/models"
)

// SuperAdminMiddleware gates destructive operations behind the super_admin
// role. Runs after AuthMiddleware.
func SuperAdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("admin").(*models.Claims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
		}

		if claims.Role != models.RoleSuperAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Super admin access required"})
		}

		return c.Next()
	}
}
