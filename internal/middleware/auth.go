// Package middleware provides authentication, logging and request-context
// middleware for the application.
package middleware

import (
	"strings"

	"wander/internal/models"
	"wander/internal/token"

	"github.com/gofiber/fiber/v2"
)

var accessSecret string

// InitMiddleware initializes authentication middleware with the access token
// secret.
func InitMiddleware(secret string) {
	accessSecret = secret
}

// bearerToken extracts the raw token from an "Authorization: Bearer <token>"
// header, or returns "".
func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// AuthOptional deserializes the current user from the Authorization header
// when a valid access token is present. It never rejects the request; routes
// behind it render differently for anonymous callers.
func AuthOptional(c *fiber.Ctx) error {
	raw := bearerToken(c)
	if raw == "" {
		return c.Next()
	}

	res := token.Verify(raw, accessSecret)
	if res.Valid {
		c.Locals("userID", res.Claims.UserID)
		c.Locals("userEmail", res.Claims.Email)
	}
	return c.Next()
}

// AuthRequired is a middleware that enforces authentication for protected
// routes.
func AuthRequired(c *fiber.Ctx) error {
	raw := bearerToken(c)
	if raw == "" {
		return models.RespondError(c, models.NewUnauthorized("You are not authorized"))
	}

	res := token.Verify(raw, accessSecret)
	if !res.Valid {
		if res.Expired {
			return models.RespondError(c, models.NewUnauthorized("Token has expired"))
		}
		return models.RespondError(c, models.NewUnauthorized("You are not authorized"))
	}

	c.Locals("userID", res.Claims.UserID)
	c.Locals("userEmail", res.Claims.Email)

	return c.Next()
}

// CurrentUserID returns the authenticated user's ID from Fiber locals.
// The second return is false on routes not behind AuthRequired.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	uid, ok := c.Locals("userID").(uint)
	return uid, ok
}
