package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTClaims is the claim set carried by every token. It is produced once
// at registration or login and never mutated, a new token replaces it.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID      int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	UserRole Role   `json:"role"`
}

// UserID returns the identity id as a string
func (c *JWTClaims) UserID() string {
	return strconv.FormatInt(c.UID, 10)
}

// Role returns the role asserted by the token
func (c *JWTClaims) Role() string {
	return string(c.UserRole)
}

// HasRole checks the asserted role, matching is exact
func (c *JWTClaims) HasRole(role string) bool {
	return string(c.UserRole) == role
}

// Public returns the claim set as the client facing identity shape
func (c *JWTClaims) Public() PublicUser {
	return PublicUser{
		ID:    c.UID,
		Name:  c.Name,
		Email: c.Email,
		Role:  c.UserRole,
	}
}

// Identity adapts the claims to the Identity interface
func (c *JWTClaims) Identity() Identity {
	return authIdentity{
		id:    c.UID,
		name:  c.Name,
		email: c.Email,
		role:  c.UserRole,
	}
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
