package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"

	"github.com/osnetwork/go-auth/middleware/jwtware"
)

// RouteAuthenticator builds the authorization gate for fiber routes
type RouteAuthenticator struct {
	cfg          Config
	validator    TokenValidator
	metrics      *Metrics
	Logger       Logger
	ErrorHandler func(c *fiber.Ctx, err error) error
}

func NewHTTPAuthenticator(validator TokenValidator, cfg Config) *RouteAuthenticator {
	a := &RouteAuthenticator{
		cfg:       cfg,
		validator: validator,
		Logger:    defLogger{},
	}
	a.ErrorHandler = a.defaultErrHandler
	return a
}

// WithMetrics counts gate decisions
func (a *RouteAuthenticator) WithMetrics(m *Metrics) *RouteAuthenticator {
	a.metrics = m
	return a
}

// WithLogger sets the logger
func (a *RouteAuthenticator) WithLogger(l Logger) *RouteAuthenticator {
	if l != nil {
		a.Logger = l
	}
	return a
}

// Protected admits any caller holding a valid token
func (a *RouteAuthenticator) Protected() fiber.Handler {
	return a.RequireRole("")
}

// RequireRole admits only callers whose token asserts exactly role. Token
// validity is always checked before the role.
func (a *RouteAuthenticator) RequireRole(role Role) fiber.Handler {
	required := string(role)
	return jwtware.New(jwtware.Config{
		TokenValidator: GateValidator(a.validator),
		RequiredRole:   required,
		AuthScheme:     a.cfg.GetAuthScheme(),
		ContextKey:     a.cfg.GetContextKey(),
		TokenLookup:    a.cfg.GetTokenLookup(),
		ContextEnricher: func(ctx context.Context, claims jwtware.Claims) context.Context {
			if jc, ok := claims.(*JWTClaims); ok {
				return WithClaimsContext(ctx, jc)
			}
			return ctx
		},
		SuccessHandler: func(c *fiber.Ctx) error {
			a.metrics.RecordGateDecision(required, OutcomeAdmitted)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			gateErr := gateError(err)
			a.metrics.RecordGateDecision(required, gateOutcome(gateErr))
			return a.ErrorHandler(c, gateErr)
		},
	})
}

// gateError maps middleware failures onto the package sentinels
func gateError(err error) error {
	switch {
	case errors.Is(err, jwtware.ErrJWTMissingOrMalformed):
		return ErrUnableToFindSession
	case errors.Is(err, jwtware.ErrJWTRoleForbidden):
		return ErrForbiddenRole
	case IsTokenError(err):
		return err
	default:
		return ErrTokenMalformed
	}
}

func gateOutcome(err error) string {
	switch {
	case errors.Is(err, ErrUnableToFindSession):
		return OutcomeMissing
	case errors.Is(err, ErrForbiddenRole):
		return OutcomeForbidden
	default:
		return OutcomeInvalid
	}
}

func (a *RouteAuthenticator) defaultErrHandler(c *fiber.Ctx, err error) error {
	return WriteError(c, a.Logger, err)
}

// WriteError sends the public status and message for err. Detail is logged,
// never returned.
func WriteError(c *fiber.Ctx, logger Logger, err error) error {
	status, message := ErrorStatus(err)
	body := fiber.Map{"message": message}

	var richErr *errors.Error
	if errors.As(err, &richErr) && status == fiber.StatusBadRequest && len(richErr.ValidationErrors) > 0 {
		fields := make(map[string]string, len(richErr.ValidationErrors))
		for _, fe := range richErr.ValidationErrors {
			fields[fe.Field] = fe.Message
		}
		body["errors"] = fields
	}

	if logger != nil {
		if richErr != nil {
			logger.Debug("request error %s %s: status=%d category=%s text_code=%s details=%s",
				c.Method(), c.Path(), status, richErr.Category, richErr.TextCode,
				print.MaybeSecureJSON(richErr.Metadata))
		} else {
			logger.Error("request error %s %s: status=%d error=%v", c.Method(), c.Path(), status, err)
		}
	}

	return c.Status(status).JSON(body)
}
