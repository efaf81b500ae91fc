package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithClaimsContext sets the JWTClaims in the given context
func WithClaimsContext(r context.Context, claims *JWTClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the JWTClaims from the standard context
func GetClaims(ctx context.Context) (*JWTClaims, bool) {
	if ctx == nil {
		return nil, false
	}
	raw, ok := ctx.Value(claimsCtxKey).(*JWTClaims)
	return raw, ok && raw != nil
}

// GetFiberClaims extracts the JWTClaims stored by the gate under key
func GetFiberClaims(c *fiber.Ctx, key string) (*JWTClaims, bool) {
	if key == "" {
		key = "user" // Default key used by JWT middleware
	}
	claims, ok := c.Locals(key).(*JWTClaims)
	return claims, ok && claims != nil
}
