package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const apiKeyHeader = "X-API-Key"

// APIKey authenticates callers against a bcrypt hash of the shared API key.
// An empty hash disables the check.
func APIKey(hash string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if hash == "" {
			return c.Next()
		}
		key := c.Get(apiKeyHeader)
		if key == "" {
			return fiber.NewError(http.StatusUnauthorized, "missing API key")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid API key")
		}
		return c.Next()
	}
}

// fingerprintKey keeps raw API keys out of Redis key names.
func fingerprintKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}
