package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Authentication & Authorization Errors
var (
	ErrMissingToken = errors.New("missing access token")
	ErrInvalidToken = errors.New("invalid access token")
	ErrUserNotFound = errors.New("user profile not found")
)

func NewMissingTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        fmt.Errorf("%w: %w", ErrUnauthorized, ErrMissingToken),
		Details:    "Missing access token",
		Field:      "authorization",
	}
}

func NewInvalidTokenError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        fmt.Errorf("%w: %w", ErrUnauthorized, ErrInvalidToken),
		Details:    "Invalid access token",
		Field:      "authorization",
		Cause:      cause,
	}
}

// NewUnauthenticatedError is returned when an operation needs a verified session and has none.
func NewUnauthenticatedError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrUnauthorized,
		Details:    "Sign in to continue",
	}
}

func NewUserNotFoundError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        ErrUserNotFound,
		Details:    "Please set up your profile first",
	}
}

func IsInvalidTokenError(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}
