package auth

import (
	"net/http"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCreds       = errors.TextCodeInvalidCredentials
	TextCodeEmptyPassword      = errors.TextCodeEmptyPassword
	TextCodeTokenExpired       = errors.TextCodeTokenExpired
	TextCodeTokenMalformed     = errors.TextCodeTokenMalformed
	TextCodeSessionNotFound    = errors.TextCodeSessionNotFound
	TextCodeTokenSignature     = "TOKEN_SIGNATURE_INVALID"
	TextCodeDuplicateEmail     = "DUPLICATE_EMAIL"
	TextCodeIdentityNotFound   = "IDENTITY_NOT_FOUND"
	TextCodeForbiddenRole      = "FORBIDDEN_ROLE"
	TextCodePasswordTooLong    = "PASSWORD_TOO_LONG"
	TextCodeStoreFailure       = "STORE_FAILURE"
	TextCodeInvalidPayload     = "INVALID_PAYLOAD"
	TextCodeInvalidPhoneNumber = "INVALID_PHONE_NUMBER"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode(TextCodeIdentityNotFound)

// ErrDuplicateEmail is returned when an email is already registered,
// regardless of the role it was registered under.
var ErrDuplicateEmail = errors.New("email already exists", errors.CategoryConflict).
	WithCode(errors.CodeConflict).
	WithTextCode(TextCodeDuplicateEmail)

// ErrInvalidCredentials covers both an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeInvalidCreds)

// ErrMismatchedHashAndPassword is returned by the hasher on a failed comparison
var ErrMismatchedHashAndPassword = errors.New("password does not match hash", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeInvalidCreds)

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = errors.New("password can not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest).
	WithTextCode(TextCodeEmptyPassword)

// ErrPasswordTooLong is returned for passwords bcrypt would truncate
var ErrPasswordTooLong = errors.New("password must be 72 bytes or fewer", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest).
	WithTextCode(TextCodePasswordTooLong)

// ErrTokenMalformed the token could not be parsed or is structurally invalid
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenMalformed)

// ErrTokenSignatureInvalid the signature does not match, tampered or wrong key
var ErrTokenSignatureInvalid = errors.New("token signature is invalid", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenSignature)

// ErrTokenExpired the token is past its expiration time
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenExpired)

// ErrUnableToFindSession is the error when our request carries no bearer token
var ErrUnableToFindSession = errors.New("unable to find session", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeSessionNotFound)

// ErrForbiddenRole the token is valid but asserts a different role
var ErrForbiddenRole = errors.New("role is not allowed to access resource", errors.CategoryAuthz).
	WithCode(errors.CodeForbidden).
	WithTextCode(TextCodeForbiddenRole)

// Public messages, these are the only strings that reach the client.
const (
	MessageUnauthorized       = "Unauthorized"
	MessageInvalidToken       = "Invalid Token"
	MessageForbidden          = "Forbidden"
	MessageInvalidCredentials = "Invalid credentials"
	MessageDuplicateEmail     = "Email already exists"
	MessageFillAllFields      = "Fill all fields"
	MessageNotFound           = "Not found"
	MessageServerError        = "Server error"
)

// IsTokenError reports whether err is one of the token codec failures.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrTokenSignatureInvalid) ||
		errors.Is(err, ErrTokenExpired)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	return errors.Is(err, ErrTokenExpired)
}

// IsMalformedError will check for malformed tokens
func IsMalformedError(err error) bool {
	return errors.Is(err, ErrTokenMalformed)
}

// storeError wraps an unexpected store failure. The source is kept for
// logging, the category makes it opaque to clients.
func storeError(err error, message string) error {
	if err == nil {
		return nil
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.Category != errors.CategoryInternal {
		return err
	}
	return errors.Wrap(err, errors.CategoryInternal, message).
		WithCode(errors.CodeInternal).
		WithTextCode(TextCodeStoreFailure)
}

// ErrorStatus maps any error produced by this package to the status code
// and public message sent to the client. Internal detail never crosses.
func ErrorStatus(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.Is(err, ErrUnableToFindSession):
		return http.StatusUnauthorized, MessageUnauthorized
	case IsTokenError(err):
		return http.StatusUnauthorized, MessageInvalidToken
	case errors.Is(err, ErrForbiddenRole):
		return http.StatusForbidden, MessageForbidden
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrMismatchedHashAndPassword):
		return http.StatusUnauthorized, MessageInvalidCredentials
	case errors.Is(err, ErrDuplicateEmail):
		return http.StatusConflict, MessageDuplicateEmail
	case errors.Is(err, ErrIdentityNotFound):
		return http.StatusNotFound, MessageNotFound
	case errors.IsValidation(err), errors.IsCategory(err, errors.CategoryBadInput):
		return http.StatusBadRequest, validationMessage(err)
	default:
		return http.StatusInternalServerError, MessageServerError
	}
}

func validationMessage(err error) string {
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.Message != "" {
		return richErr.Message
	}
	return MessageFillAllFields
}
