package user

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
	"github.com/wichananm65/campus-market-backend/internal/validation"
)

// NewAuthMiddleware verifies bearer tokens on protected routes. When required
// is false, requests without an Authorization header pass through and the
// handlers fall back to client-supplied ids.
func NewAuthMiddleware(secret string, required bool) fiber.Handler {
	if secret == "" {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return jwtware.New(jwtware.Config{
		SigningKey: []byte(secret),
		Filter: func(c *fiber.Ctx) bool {
			return !required && c.Get(fiber.HeaderAuthorization) == ""
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return apperr.Unauthorized(apperr.CodeUnauthorized, "Missing or invalid token")
		},
	})
}

// PrincipalID extracts the user_id claim from the JWT token stored
// in `c.Locals("user")`.
func PrincipalID(c *fiber.Ctx) (int64, bool) {
	tok, ok := c.Locals("user").(*jwt.Token)
	if !ok || tok == nil {
		return 0, false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	switch v := claims["user_id"].(type) {
	case float64:
		return int64(v), v >= 1
	case int:
		return int64(v), v >= 1
	case int64:
		return v, v >= 1
	case string:
		return validation.PositiveID(v)
	}
	return 0, false
}

// BindPrincipal fills an absent id field from the principal and rejects an id
// that names someone else. Malformed values are left for validation.
func BindPrincipal(c *fiber.Ctx, f *validation.Field) error {
	pid, ok := PrincipalID(c)
	if !ok {
		return nil
	}
	if !f.Present() {
		*f = validation.FieldOf(pid)
		return nil
	}
	if id, ok := f.Int(); ok && id != pid {
		return apperr.Forbidden("Cannot act on behalf of another user")
	}
	return nil
}

// BindPrincipalQuery is BindPrincipal for query string ids.
func BindPrincipalQuery(c *fiber.Ctx, raw string) (string, error) {
	pid, ok := PrincipalID(c)
	if !ok {
		return raw, nil
	}
	if raw == "" {
		return strconv.FormatInt(pid, 10), nil
	}
	if id, ok := validation.PositiveID(raw); ok && id != pid {
		return "", apperr.Forbidden("Cannot act on behalf of another user")
	}
	return raw, nil
}

// RequireOwner rejects the request when a principal is present and is not ownerID.
func RequireOwner(c *fiber.Ctx, ownerID int64) error {
	if pid, ok := PrincipalID(c); ok && pid != ownerID {
		return apperr.Forbidden("Only the seller can modify this product")
	}
	return nil
}
