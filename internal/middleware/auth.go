package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/cargolink/internal/config"
	"github.com/example/cargolink/internal/models"
	"github.com/example/cargolink/internal/utils"
)

const actorContextKey = "currentActor"

// AuthMiddleware validates staff JWT tokens and loads the authenticated actor
// into the request context.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		actor, err := utils.ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(actorContextKey, actor)
		return c.Next()
	}
}

// GetCurrentActor extracts the authenticated actor from context.
func GetCurrentActor(c *fiber.Ctx) (models.Actor, bool) {
	value := c.Locals(actorContextKey)
	if value == nil {
		return models.Actor{}, false
	}

	if actor, ok := value.(models.Actor); ok {
		return actor, true
	}

	return models.Actor{}, false
}
