// Package apperr holds the typed boundary errors of the editor services.
// Decision functions never return these for "no access"; only the service
// layer converts a denied decision into one of them.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable machine-readable reason codes.
const (
	ReasonNoAccess = "no-access"
	ReasonNoUser   = "no-user"
)

type Error struct {
	Code      int    `json:"code"`
	ClassName string `json:"className"`
	Message   string `json:"message"`
	// Reason is a stable machine-readable code, e.g. "no-access".
	Reason string `json:"reason,omitempty"`
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func Forbidden(reason, message string) *Error {
	return &Error{Code: http.StatusForbidden, ClassName: "forbidden", Message: message, Reason: reason}
}

func NotFound(message string) *Error {
	return &Error{Code: http.StatusNotFound, ClassName: "not-found", Message: message}
}

func MethodNotAllowed(message string) *Error {
	return &Error{Code: http.StatusMethodNotAllowed, ClassName: "method-not-allowed", Message: message}
}

// Conflict reports a concurrent-write conflict from the store. Retryable.
func Conflict(message string, cause error) *Error {
	return &Error{Code: http.StatusConflict, ClassName: "conflict", Message: message, cause: cause}
}

func BadRequest(message string) *Error {
	return &Error{Code: http.StatusBadRequest, ClassName: "bad-request", Message: message}
}

func GeneralError(message string, cause error) *Error {
	return &Error{Code: http.StatusInternalServerError, ClassName: "general-error", Message: message, cause: cause}
}

func is(err error, className string) bool {
	var e *Error
	return errors.As(err, &e) && e.ClassName == className
}

func IsForbidden(err error) bool        { return is(err, "forbidden") }
func IsNotFound(err error) bool         { return is(err, "not-found") }
func IsMethodNotAllowed(err error) bool { return is(err, "method-not-allowed") }
func IsConflict(err error) bool         { return is(err, "conflict") }
func IsBadRequest(err error) bool       { return is(err, "bad-request") }

// StatusCode maps any error to the HTTP status the transport should answer
// with. Unknown errors become 500 without leaking internals.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return http.StatusInternalServerError
}

// AsError returns the typed error inside err, or a generic 500 wrapper.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return GeneralError("server error", err)
}
