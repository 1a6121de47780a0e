// Package apperr carries typed errors for the callable user functions. The
// HTTP layer renders them as {"code": ..., "error": ...}.
package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type Code string

const (
	InvalidArgument  Code = "invalid-argument"
	AlreadyExists    Code = "already-exists"
	NotFound         Code = "not-found"
	Unauthenticated  Code = "unauthenticated"
	PermissionDenied Code = "permission-denied"
	Internal         Code = "internal"
)

type Error struct {
	Code    Code
	Message string
	Err     error
}

func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches the underlying cause, kept for logs and never rendered.
func Wrap(code Code, msg string, err error) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Code) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status maps the code to an HTTP status.
func (e *Error) Status() int {
	switch e.Code {
	case InvalidArgument:
		return fiber.StatusBadRequest
	case AlreadyExists:
		return fiber.StatusConflict
	case NotFound:
		return fiber.StatusNotFound
	case Unauthenticated:
		return fiber.StatusUnauthorized
	case PermissionDenied:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// CodeOf returns the code of the first *Error in err's chain, or Internal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Internal
}
