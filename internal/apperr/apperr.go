// Package apperr defines the closed error taxonomy shared by the service
// layer and the HTTP handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a failure. The set is closed; handlers map codes to HTTP
// statuses and never invent new ones ad hoc.
type Code string

const (
	CodeValidation   Code = "validation"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeOutOfRange   Code = "out_of_range"
)

// Error is a classified failure with an end-user message and optional
// structured details (the geofence rejection carries measured distance and
// required radius so the client can show how far over the limit it is).
type Error struct {
	Code    Code
	Message string
	Details map[string]any
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

// New builds a classified error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds a classified error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// OutOfRange builds the geofence rejection. Distance and radius are reported
// in whole meters.
func OutOfRange(distance float64, radius int) *Error {
	d := int(distance)
	return &Error{
		Code:    CodeOutOfRange,
		Message: fmt.Sprintf("you are %dm away from the class location, check-in requires being within %dm", d, radius),
		Details: map[string]any{"distance": d, "required_radius": radius},
	}
}

// Is reports whether err is a classified error with the given code.
func Is(err error, code Code) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Code == code
}

// HTTPStatus maps an error to its HTTP status. Unclassified errors are
// treated as internal.
func HTTPStatus(err error) int {
	var ae *Error
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError
	}
	switch ae.Code {
	case CodeValidation, CodeOutOfRange:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
