package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	fiberlogger "github.com/anindta/task-management-project/internal/logger/adapter/fiber"
)

// LocalsClaims is the fiber.Locals key holding the verified *Claims.
const LocalsClaims = "claims"

const bearerPrefix = "bearer "

// RequireToken creates Fiber middleware that requires a valid bearer token.
// On success the user id and claims are stored in fiber.Locals.
func RequireToken(tokens *TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}

		claims, err := tokens.Verify(strings.TrimSpace(header[len(bearerPrefix):]))
		if err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("rejected bearer token")

			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}

		userID, _ := claims.UserID() //nolint:errcheck // Verify already checked the subject

		c.Locals(fiberlogger.LocalsUserID, userID)
		c.Locals(LocalsClaims, claims)

		return c.Next()
	}
}

// RequireMenu creates Fiber middleware that requires a menu grant on the caller's role.
// It must run after RequireToken.
func RequireMenu(resolver *Resolver, menuName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := UserIDFromContext(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}

		hasMenu, err := resolver.HasMenu(c.UserContext(), userID, menuName)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", userID).Str("menu", menuName).
				Msg("Failed to check menu grant")

			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		}

		if !hasMenu {
			log.Warn().Uint64("user_id", userID).Str("menu", menuName).
				Msg("User lacks required menu")

			return c.Status(fiber.StatusForbidden).SendString("Forbidden: You don't have access to this resource")
		}

		return c.Next()
	}
}

// UserIDFromContext returns the user id stored by RequireToken.
func UserIDFromContext(c *fiber.Ctx) (uint64, bool) {
	id, ok := c.Locals(fiberlogger.LocalsUserID).(uint64)

	return id, ok && id != 0
}

// ClaimsFromContext returns the claims stored by RequireToken.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, error) {
	claims, ok := c.Locals(LocalsClaims).(*Claims)
	if !ok {
		return nil, errors.New("no claims in context")
	}

	return claims, nil
}
