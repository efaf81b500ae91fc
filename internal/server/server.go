package server

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/osnetwork/go-auth"
)

const CorrelationIDHeader = "X-Correlation-ID"

// maxCorrelationIDLen fits a uuid or an xid with room for a prefix
const maxCorrelationIDLen = 64

type correlationKey struct{}

// CorrelationCtx retrieves the correlation ID from the context.
func CorrelationCtx(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// Deps are the collaborators New wires together
type Deps struct {
	Auther   *auth.Auther
	Gate     *auth.RouteAuthenticator
	Logger   auth.Logger
	Registry *prometheus.Registry
	Routes   auth.RouteOptions
}

// New builds the fiber app with middleware, health, metrics and the auth routes
func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
			}
			return auth.WriteError(c, deps.Logger, err)
		},
	})

	app.Use(CorrelationID())
	app.Use(RequestLogger())
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if deps.Registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	if deps.Routes.Logger == nil {
		deps.Routes.Logger = deps.Logger
	}
	auth.RegisterRoutes(app, deps.Auther, deps.Gate, deps.Routes)

	return app
}

// CorrelationID propagates or creates the request correlation id
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(CorrelationIDHeader)
		if validCorrelationID(id) {
			id = strings.Clone(id)
		} else {
			id = xid.New().String()
		}
		c.Set(CorrelationIDHeader, id)
		c.Locals("correlation_id", id)
		c.SetUserContext(context.WithValue(c.UserContext(), correlationKey{}, id))
		return c.Next()
	}
}

// validCorrelationID accepts short ids made of letters, digits, '-', '_' and '.'
func validCorrelationID(id string) bool {
	if id == "" || len(id) > maxCorrelationIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		ch := id[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '-', ch == '_', ch == '.':
		default:
			return false
		}
	}
	return true
}

// RequestLogger logs one line per handled request, health checks excluded
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		l := log.With().
			Str("correlation_id", CorrelationCtx(c.UserContext())).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("remote", c.IP()).
			Logger()
		c.SetUserContext(l.WithContext(c.UserContext()))

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		if c.Path() == "/healthz" && status < 400 {
			return err
		}

		var evt *zerolog.Event
		if status >= 500 {
			evt = l.Error()
		} else {
			evt = l.Info()
		}
		evt.Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("request.handled")

		return err
	}
}
