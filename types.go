package auth

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the public attributes of an identity
type Identity interface {
	ID() int64
	Name() string
	Email() string
	Role() Role
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() int
	GetTokenLookup() string
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() []string
	GetPasswordHashCost() int
}

// IdentityStore is the narrow contract the credential flows need from
// storage. Implementations own their concurrency control, in particular
// email uniqueness must be enforced by the store itself.
type IdentityStore interface {
	// FindByEmail returns ErrIdentityNotFound when no record matches
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindByIDAndRole returns ErrIdentityNotFound when id exists under a different role
	FindByIDAndRole(ctx context.Context, id int64, role Role) (*User, error)
	// Insert returns the new id, or ErrDuplicateEmail on a unique violation
	Insert(ctx context.Context, user *User) (int64, error)
	UpdateProfile(ctx context.Context, id int64, role Role, profile Profile) error
	UpdateSecret(ctx context.Context, id int64, role Role, passwordHash string) error
	// Delete ignores role, it is only reachable by admins
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*User, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// TokenService issues and validates signed credential tokens
type TokenService interface {
	Generate(identity Identity) (string, error)
	SignClaims(claims *JWTClaims) (string, error)
	Validate(tokenString string) (*JWTClaims, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
