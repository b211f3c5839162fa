package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sentryvision/review-service/internal/auth"
	"github.com/sentryvision/review-service/internal/domain"
)

const (
	// LocalUser is the key to retrieve the authenticated user from context
	LocalUser = "user"
)

// Auth creates an authentication middleware using a bearer token verified
// against the auth service.
func Auth(verifier auth.TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			return domain.ErrUnauthorized
		}

		user, err := verifier.Verify(c.Context(), token)
		if err != nil {
			// Don't reveal why the token was rejected
			return domain.ErrUnauthorized
		}

		c.Locals(LocalUser, user)

		return c.Next()
	}
}

// RequireRole restricts a route to the listed roles
func RequireRole(roles ...domain.Role) fiber.Handler {
	allowed := make(map[domain.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(c *fiber.Ctx) error {
		user, err := GetUser(c)
		if err != nil {
			return err
		}
		if !allowed[user.Role] {
			return domain.ErrForbidden
		}
		return c.Next()
	}
}

// extractBearerToken extracts token from Authorization header
func extractBearerToken(c *fiber.Ctx) string {
	header := c.Get("Authorization")
	if header == "" {
		return ""
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// GetUser retrieves the authenticated user from Fiber context
func GetUser(c *fiber.Ctx) (*domain.User, error) {
	user, ok := c.Locals(LocalUser).(*domain.User)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}
