package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pollhive/api.pollhive.dev/auth"
	"github.com/pollhive/api.pollhive.dev/poll"
)

const identityKey = "identity"

// RequireAuth verifies the bearer token and stashes the resulting identity
// for the handlers. No identity, no routing.
func RequireAuth(audience string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := auth.FromHeader(c.Get(fiber.HeaderAuthorization), audience)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}
		c.Locals(identityKey, user)
		return c.Next()
	}
}

func identityFrom(c *fiber.Ctx) poll.User {
	user, _ := c.Locals(identityKey).(poll.User)
	return user
}
