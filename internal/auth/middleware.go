package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/moon-community/fto-queue-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated interaction actor.
type Principal struct {
	ActorID      int64
	DisplayName  string
	Capabilities []string
}

// AuthMiddleware validates bearer tokens issued by the gateway.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for interaction routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(principalKey, &Principal{
		ActorID:      claims.ActorID,
		DisplayName:  claims.DisplayName,
		Capabilities: claims.Capabilities,
	})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated actor.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
