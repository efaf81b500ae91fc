package auth

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
)

// AuthController serves registration, login and the current identity
type AuthController struct {
	Logger Logger
	Auther *Auther
	Routes *AuthControllerRoutes
}

type AuthControllerRoutes struct {
	Register string
	Login    string
	Me       string
}

type AuthControllerOption func(*AuthController) *AuthController

// WithAuthControllerLogger sets the controller logger
func WithAuthControllerLogger(l Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if l != nil {
			c.Logger = l
		}
		return c
	}
}

// WithAuthControllerRoutes overrides the default paths
func WithAuthControllerRoutes(r *AuthControllerRoutes) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if r != nil {
			c.Routes = r
		}
		return c
	}
}

func NewAuthController(auther *Auther, opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Auther: auther,
		Routes: &AuthControllerRoutes{
			Register: "/register",
			Login:    "/login",
			Me:       "/me",
		},
	}

	for _, opt := range opts {
		if opt != nil {
			c = opt(c)
		}
	}

	return c
}

func (a *AuthController) Register(c *fiber.Ctx) error {
	var msg RegisterUserMessage
	if err := c.BodyParser(&msg); err != nil {
		return WriteError(c, a.Logger, invalidPayload(err))
	}

	res, err := a.Auther.Register(c.UserContext(), msg)
	if err != nil {
		return WriteError(c, a.Logger, err)
	}

	return c.JSON(res)
}

func (a *AuthController) Login(c *fiber.Ctx) error {
	var msg LoginMessage
	if err := c.BodyParser(&msg); err != nil {
		return WriteError(c, a.Logger, invalidPayload(err))
	}

	res, err := a.Auther.Login(c.UserContext(), msg)
	if err != nil {
		return WriteError(c, a.Logger, err)
	}

	return c.JSON(res)
}

// Me echoes the identity asserted by the caller's token
func (a *AuthController) Me(c *fiber.Ctx) error {
	claims, ok := GetClaims(c.UserContext())
	if !ok {
		return WriteError(c, a.Logger, ErrUnableToFindSession)
	}
	return c.JSON(claims.Public())
}

// AccountController serves the per-role self-service endpoints and the
// admin listing. The gate only proves the caller's role, with
// EnforceOwnership off any holder of the role can act on any id of that role.
type AccountController struct {
	Logger           Logger
	Auther           *Auther
	EnforceOwnership bool
	PhoneRegion      string
}

type AccountControllerOption func(*AccountController) *AccountController

// WithEnforceOwnership requires the path id to match the token id
func WithEnforceOwnership(enforce bool) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.EnforceOwnership = enforce
		return c
	}
}

// WithPhoneRegion sets the default region for numbers without a country code
func WithPhoneRegion(region string) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		if region != "" {
			c.PhoneRegion = strings.ToUpper(region)
		}
		return c
	}
}

// WithAccountControllerLogger sets the controller logger
func WithAccountControllerLogger(l Logger) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		if l != nil {
			c.Logger = l
		}
		return c
	}
}

func NewAccountController(auther *Auther, opts ...AccountControllerOption) *AccountController {
	c := &AccountController{
		Logger:      defLogger{},
		Auther:      auther,
		PhoneRegion: "US",
	}

	for _, opt := range opts {
		if opt != nil {
			c = opt(c)
		}
	}

	return c
}

// Profile returns the record for the path id within role. An id that does
// not exist under role yields an empty object.
func (a *AccountController) Profile(role Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := a.targetID(c)
		if err != nil {
			return WriteError(c, a.Logger, err)
		}

		user, err := a.Auther.Profile(c.UserContext(), id, role)
		if err != nil {
			if errors.Is(err, ErrIdentityNotFound) {
				return c.JSON(fiber.Map{})
			}
			return WriteError(c, a.Logger, err)
		}

		return c.JSON(user.Profile())
	}
}

func (a *AccountController) UpdateProfile(role Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := a.targetID(c)
		if err != nil {
			return WriteError(c, a.Logger, err)
		}

		var msg UpdateProfileMessage
		if err := c.BodyParser(&msg); err != nil {
			return WriteError(c, a.Logger, invalidPayload(err))
		}

		if msg.Phone, err = NormalizePhone(msg.Phone, a.PhoneRegion); err != nil {
			return WriteError(c, a.Logger, err)
		}

		if err := a.Auther.UpdateProfile(c.UserContext(), id, role, msg); err != nil {
			return WriteError(c, a.Logger, err)
		}

		return c.JSON(fiber.Map{"message": "Profile updated"})
	}
}

func (a *AccountController) ChangePassword(role Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := a.targetID(c)
		if err != nil {
			return WriteError(c, a.Logger, err)
		}

		var msg ChangePasswordMessage
		if err := c.BodyParser(&msg); err != nil {
			return WriteError(c, a.Logger, invalidPayload(err))
		}

		if err := a.Auther.ChangePassword(c.UserContext(), id, role, msg); err != nil {
			return WriteError(c, a.Logger, err)
		}

		return c.JSON(fiber.Map{"message": "Password updated"})
	}
}

func (a *AccountController) ListUsers(c *fiber.Ctx) error {
	users, err := a.Auther.ListUsers(c.UserContext())
	if err != nil {
		return WriteError(c, a.Logger, err)
	}

	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	return c.JSON(out)
}

func (a *AccountController) DeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return WriteError(c, a.Logger, err)
	}

	if err := a.Auther.DeleteUser(c.UserContext(), id); err != nil {
		return WriteError(c, a.Logger, err)
	}

	return c.JSON(fiber.Map{"message": "User deleted"})
}

func (a *AccountController) targetID(c *fiber.Ctx) (int64, error) {
	id, err := parseID(c)
	if err != nil {
		return 0, err
	}

	if a.EnforceOwnership {
		claims, ok := GetClaims(c.UserContext())
		if !ok {
			return 0, ErrUnableToFindSession
		}
		if claims.UID != id {
			return 0, ErrForbiddenRole
		}
	}

	return id, nil
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("Invalid id", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest).
			WithTextCode(TextCodeInvalidPayload)
	}
	return id, nil
}

func invalidPayload(err error) error {
	return errors.Wrap(err, errors.CategoryBadInput, "Invalid request body").
		WithCode(errors.CodeBadRequest).
		WithTextCode(TextCodeInvalidPayload)
}

// NormalizePhone formats raw as E.164. Numbers without a country code are
// read in region. Empty input clears the field.
func NormalizePhone(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	num, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", errors.New("Invalid phone number", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest).
			WithTextCode(TextCodeInvalidPhoneNumber)
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}
