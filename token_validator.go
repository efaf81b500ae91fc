package auth

import "github.com/osnetwork/go-auth/middleware/jwtware"

// TokenValidator validates tokens and extracts claims without tying callers
// to a specific signing implementation.
type TokenValidator interface {
	Validate(tokenString string) (*JWTClaims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (*JWTClaims, error)

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (*JWTClaims, error) {
	if f == nil {
		return nil, ErrTokenMalformed
	}
	return f(tokenString)
}

// gateValidator exposes a TokenValidator to the jwtware middleware
type gateValidator struct {
	validator TokenValidator
}

func (g gateValidator) Validate(tokenString string) (jwtware.Claims, error) {
	claims, err := g.validator.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// GateValidator adapts a TokenValidator for use by jwtware.New
func GateValidator(v TokenValidator) jwtware.TokenValidator {
	return gateValidator{validator: v}
}
