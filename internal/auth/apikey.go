package auth

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/moon-community/fto-queue-service/pkg/util"
)

// HashAPIKey hashes a plaintext API key for storage in configuration.
func HashAPIKey(key string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CompareAPIKey verifies a presented key against its stored hash.
func CompareAPIKey(hashed, presented string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(presented))
}

// RequireAPIKey guards read endpoints with the X-API-Key header, checked
// against the configured bcrypt hash. An empty hash disables the routes.
func RequireAPIKey(keyHash string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if keyHash == "" {
			return apperrors.NewForbidden("board API disabled")
		}
		presented := c.Get("X-API-Key")
		if presented == "" {
			return apperrors.NewUnauthorized("missing API key")
		}
		if err := CompareAPIKey(keyHash, presented); err != nil {
			return apperrors.NewUnauthorized("invalid API key")
		}
		return c.Next()
	}
}
