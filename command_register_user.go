package auth

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-errors"
)

// RegisterUserMessage is the registration payload. Role is kept as the raw
// string so an unknown role is reported instead of silently dropped.
type RegisterUserMessage struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// Validate requires every field and a known role
func (e RegisterUserMessage) Validate() error {
	if err := validation.ValidateStruct(&e,
		validation.Field(&e.Name, validation.Required),
		validation.Field(&e.Email, validation.Required),
		validation.Field(&e.Password, validation.Required),
		validation.Field(&e.Role, validation.Required),
	); err != nil {
		return errors.FromOzzoValidation(err, MessageFillAllFields).
			WithTextCode(TextCodeInvalidPayload)
	}

	if _, ok := ParseRole(e.Role); !ok {
		return errors.New("Invalid role", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest).
			WithTextCode(TextCodeInvalidPayload).
			WithMetadata(map[string]any{"role": e.Role})
	}

	return nil
}

// LoginMessage is the login payload
type LoginMessage struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (e LoginMessage) Type() string { return "user.login" }

// Validate requires both fields
func (e LoginMessage) Validate() error {
	if err := validation.ValidateStruct(&e,
		validation.Field(&e.Email, validation.Required),
		validation.Field(&e.Password, validation.Required),
	); err != nil {
		return errors.FromOzzoValidation(err, MessageFillAllFields).
			WithTextCode(TextCodeInvalidPayload)
	}
	return nil
}

// ChangePasswordMessage carries the replacement secret
type ChangePasswordMessage struct {
	Password string `json:"password"`
}

func (e ChangePasswordMessage) Type() string { return "user.password.change" }

// Validate requires the new password
func (e ChangePasswordMessage) Validate() error {
	if err := validation.ValidateStruct(&e,
		validation.Field(&e.Password, validation.Required),
	); err != nil {
		return errors.FromOzzoValidation(err, MessageFillAllFields).
			WithTextCode(TextCodeInvalidPayload)
	}
	return nil
}

// UpdateProfileMessage overwrites the mutable profile fields
type UpdateProfileMessage struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	City  string `json:"city"`
	Age   *int   `json:"age"`
}

func (e UpdateProfileMessage) Type() string { return "user.profile.update" }

// Validate requires a name and email, age must be sane when present
func (e UpdateProfileMessage) Validate() error {
	if err := validation.ValidateStruct(&e,
		validation.Field(&e.Name, validation.Required),
		validation.Field(&e.Email, validation.Required),
		validation.Field(&e.Age, validation.Min(0), validation.Max(150)),
	); err != nil {
		return errors.FromOzzoValidation(err, MessageFillAllFields).
			WithTextCode(TextCodeInvalidPayload)
	}
	return nil
}

// Profile converts the message to the store shape
func (e UpdateProfileMessage) Profile() Profile {
	return Profile{
		Name:  strings.TrimSpace(e.Name),
		Email: e.Email,
		Phone: strings.TrimSpace(e.Phone),
		City:  strings.TrimSpace(e.City),
		Age:   e.Age,
	}
}
