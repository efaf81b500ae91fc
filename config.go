package auth

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTokenExpiration is the token lifetime in hours, 7 days
const DefaultTokenExpiration = 7 * 24

// Options is the concrete Config. It is loaded once at startup and never
// mutated afterwards; rotating the signing key invalidates every token.
type Options struct {
	SigningKey       string   `mapstructure:"signing_key" json:"-"`
	SigningMethod    string   `mapstructure:"signing_method" json:"signing_method"`
	ContextKey       string   `mapstructure:"context_key" json:"context_key"`
	TokenExpiration  int      `mapstructure:"token_expiration" json:"token_expiration"`
	TokenLookup      string   `mapstructure:"token_lookup" json:"token_lookup"`
	AuthScheme       string   `mapstructure:"auth_scheme" json:"auth_scheme"`
	Issuer           string   `mapstructure:"issuer" json:"issuer"`
	Audience         []string `mapstructure:"audience" json:"audience"`
	PasswordHashCost int      `mapstructure:"password_hash_cost" json:"password_hash_cost"`
}

var _ Config = Options{}

// DefaultOptions returns every tunable except the signing key
func DefaultOptions() Options {
	return Options{
		SigningMethod:    "HS256",
		ContextKey:       "user",
		TokenExpiration:  DefaultTokenExpiration,
		TokenLookup:      "header:Authorization",
		AuthScheme:       "Bearer",
		PasswordHashCost: DefaultPasswordHashCost,
	}
}

// Validate checks the options can back a token service
func (o Options) Validate() error {
	err := validation.ValidateStruct(&o,
		validation.Field(&o.SigningKey, validation.Required),
		validation.Field(&o.SigningMethod, validation.Required, validation.In("HS256", "HS384", "HS512")),
		validation.Field(&o.TokenExpiration, validation.Required, validation.Min(1)),
		validation.Field(&o.PasswordHashCost, validation.Min(bcrypt.MinCost), validation.Max(bcrypt.MaxCost)),
	)
	if err != nil {
		return errors.FromOzzoValidation(err, "invalid auth options")
	}
	return nil
}

func (o Options) GetSigningKey() string {
	return o.SigningKey
}

func (o Options) GetSigningMethod() string {
	if o.SigningMethod == "" {
		return "HS256"
	}
	return o.SigningMethod
}

func (o Options) GetContextKey() string {
	if o.ContextKey == "" {
		return "user"
	}
	return o.ContextKey
}

func (o Options) GetTokenExpiration() int {
	if o.TokenExpiration <= 0 {
		return DefaultTokenExpiration
	}
	return o.TokenExpiration
}

func (o Options) GetTokenLookup() string {
	if o.TokenLookup == "" {
		return "header:Authorization"
	}
	return o.TokenLookup
}

func (o Options) GetAuthScheme() string {
	if o.AuthScheme == "" {
		return "Bearer"
	}
	return o.AuthScheme
}

func (o Options) GetIssuer() string {
	return o.Issuer
}

func (o Options) GetAudience() []string {
	return o.Audience
}

func (o Options) GetPasswordHashCost() int {
	if o.PasswordHashCost == 0 {
		return DefaultPasswordHashCost
	}
	return o.PasswordHashCost
}
