// Package apierror provides standardized error response structures for the API
// and the typed domain errors services return. Handlers map an error to a status
// code through HTTPStatus so internal details (SQL errors, stack traces) never
// reach clients.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Validation failed", Fields: fields}
}

// Kind classifies a domain error.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
)

// Error is a domain failure raised by a service. Anything that is not an *Error
// is treated as an infrastructure failure.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Invalid returns a validation error with the given message.
func Invalid(msg string) *Error { return &Error{Kind: KindValidation, Msg: msg} }

// Invalidf is Invalid with formatting.
func Invalidf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// NotFound returns a not-found error with the given message.
func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Msg: msg} }

// IsKind reports whether err (or anything it wraps) is a domain error of kind k.
func IsKind(err error, k Kind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == k
}

// HTTPStatus maps err to a status code and a client-safe message.
func HTTPStatus(err error) (int, string) {
	var de *Error
	if errors.As(err, &de) {
		switch de.Kind {
		case KindValidation:
			return http.StatusBadRequest, de.Msg
		case KindNotFound:
			return http.StatusNotFound, de.Msg
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}
