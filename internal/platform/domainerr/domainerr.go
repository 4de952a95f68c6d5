// Package domainerr defines the error taxonomy shared by every service:
// NotFound, PreconditionFailed, Conflict, and Unexpected. Services return
// these; the echo error handler maps them to status codes. Unexpected errors
// carry full detail for the log but clients only ever see a generic message.
package domainerr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindUnexpected Kind = iota
	KindNotFound
	KindPreconditionFailed
	KindConflict
	KindUnauthorized
)

// Error is a typed domain error. Message is safe to show to callers for
// every kind except KindUnexpected.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func PreconditionFailed(format string, args ...interface{}) error {
	return &Error{Kind: KindPreconditionFailed, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...interface{}) error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// Unexpected wraps an underlying store or serialization failure.
func Unexpected(msg string, cause error) error {
	return &Error{Kind: KindUnexpected, Message: msg, cause: cause}
}

func kindOf(err error) (Kind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return KindUnexpected, false
}

func IsNotFound(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindNotFound
}

func IsPreconditionFailed(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindPreconditionFailed
}

func IsConflict(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindConflict
}

func IsUnauthorized(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindUnauthorized
}

// HTTPStatus maps a domain error to the wire-level status code. Anything
// that is not a typed domain error is treated as unexpected.
func HTTPStatus(err error) int {
	switch k, _ := kindOf(err); k {
	case KindNotFound:
		return http.StatusNotFound
	case KindPreconditionFailed:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage returns the message a caller may see. Unexpected failures
// are reduced to a generic message so internals never leak.
func ClientMessage(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Kind != KindUnexpected {
		return de.Message
	}
	return "internal server error"
}
