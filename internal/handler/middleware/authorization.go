package middleware

import (
	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/gofiber/fiber/v2"
)

// RequireRole middleware verifies that the session has at least one of the required roles.
// It must run after RequireSession or RequireSessionPage.
func RequireRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := SessionFrom(c)
		if err != nil || session == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		if !session.HasRole(roles...) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":          "Forbidden: insufficient permissions",
				"required_roles": roles,
			})
		}

		return c.Next()
	}
}

// RequireAdmin is a convenience middleware for requiring admin role
func RequireAdmin() fiber.Handler {
	return RequireRole(domain.RoleAdmin)
}

// RequireManager allows managers and admins.
func RequireManager() fiber.Handler {
	return RequireRole(domain.RoleAdmin, domain.RoleManager)
}
