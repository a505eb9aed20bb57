package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Codes shared by more than one package. Domain specific codes live with
// the handlers that produce them.
const (
	CodeInvalidBody  = "INVALID_BODY"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeRateLimited  = "RATE_LIMITED"
	CodeServerError  = "SERVER_ERROR"
)

// Error is the typed error every handler returns. It carries the HTTP status,
// a stable machine readable code and a short message for the client.
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Body is the uniform JSON error shape.
type Body struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func Validation(code, msg string) *Error {
	return &Error{Status: fiber.StatusBadRequest, Code: code, Message: msg}
}

func NotFound(code, msg string) *Error {
	return &Error{Status: fiber.StatusNotFound, Code: code, Message: msg}
}

func Conflict(code, msg string) *Error {
	return &Error{Status: fiber.StatusConflict, Code: code, Message: msg}
}

func Unauthorized(code, msg string) *Error {
	return &Error{Status: fiber.StatusUnauthorized, Code: code, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Status: fiber.StatusForbidden, Code: CodeForbidden, Message: msg}
}

func TooManyRequests(msg string) *Error {
	return &Error{Status: fiber.StatusTooManyRequests, Code: CodeRateLimited, Message: msg}
}

func InvalidBody(err error) *Error {
	return &Error{Status: fiber.StatusBadRequest, Code: CodeInvalidBody, Message: "Request body must be valid JSON", Err: err}
}

// Internal wraps an unexpected failure. The underlying message is exposed to
// the client, so callers must never wrap errors that carry secrets.
func Internal(err error) *Error {
	msg := "Internal server error"
	if err != nil {
		msg += ": " + err.Error()
	}
	return &Error{Status: fiber.StatusInternalServerError, Code: CodeServerError, Message: msg, Err: err}
}

// From converts any error into an *Error. Unknown errors become internal.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return &Error{Status: fe.Code, Code: codeForStatus(fe.Code), Message: fe.Message}
	}
	return Internal(err)
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return CodeNotFound
	case fiber.StatusUnauthorized:
		return CodeUnauthorized
	case fiber.StatusForbidden:
		return CodeForbidden
	case fiber.StatusTooManyRequests:
		return CodeRateLimited
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "BODY_TOO_LARGE"
	case fiber.StatusUnprocessableEntity, fiber.StatusBadRequest:
		return CodeInvalidBody
	}
	if status >= fiber.StatusInternalServerError {
		return CodeServerError
	}
	return "ERROR"
}
