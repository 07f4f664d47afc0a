package middleware

import (
	"log"
	"strings"

	"yamdb/internal/models"

	"github.com/gofiber/fiber/v2"
)

const actorKey = "actor"

// Authenticator resolves a bearer token to the user it was issued for.
type Authenticator interface {
	Authenticate(token string) (*models.User, error)
}

// Authenticate is a Fiber middleware that attaches the token's user to the
// request. Requests without an Authorization header continue anonymously;
// a malformed or invalid token is rejected with 401.
func Authenticate(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Next()
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		user, err := auth.Authenticate(strings.TrimSpace(parts[1]))
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals(actorKey, user)
		return c.Next()
	}
}

// Actor returns the authenticated user of the request, or nil when the
// request is anonymous.
func Actor(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(actorKey).(*models.User)
	return user
}
