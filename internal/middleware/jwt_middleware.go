package middleware

import (
	"strings"

	"todo/internal/credentials"
	"todo/internal/logger"

	"github.com/gofiber/fiber/v2"
)

// UserKey is the fiber.Ctx local holding the authenticated *credentials.Identity.
const UserKey = "user"

// AuthRequired is a Fiber middleware to check for a valid bearer token.
// Every failure is answered with the same 401 before the handler runs.
func AuthRequired(tokens *credentials.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c)
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return unauthorized(c)
		}

		identity, err := tokens.Parse(parts[1])
		if err != nil {
			logger.WarnContext(c.UserContext(), "token rejected", "path", c.Path(), "error", err)
			return unauthorized(c)
		}

		c.Locals(UserKey, identity)
		return c.Next()
	}
}

// CurrentUser returns the identity stored by AuthRequired.
func CurrentUser(c *fiber.Ctx) (*credentials.Identity, bool) {
	identity, ok := c.Locals(UserKey).(*credentials.Identity)
	return identity, ok && identity != nil
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   true,
		"message": "Unauthorized",
	})
}
