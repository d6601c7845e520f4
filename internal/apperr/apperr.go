package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a failure for callers and for the HTTP surface.
type Code string

const (
	CodeValidation           Code = "VALIDATION"            // 400
	CodeUnauthenticated      Code = "UNAUTHENTICATED"       // 401
	CodeNotFound             Code = "NOT_FOUND"             // 404
	CodeConflict             Code = "CONFLICT"              // 409
	CodeStoreUnavailable     Code = "STORE_UNAVAILABLE"     // 502
	CodeGeneratorUnavailable Code = "GENERATOR_UNAVAILABLE" // 502
	CodeMalformedResponse    Code = "MALFORMED_RESPONSE"    // 502
	CodeTimeout              Code = "TIMEOUT"               // 504
	CodeInternal             Code = "INTERNAL"              // 500
)

// Error is a structured failure with a code, an HTTP status and an
// optional offending field.
type Error struct {
	Code    Code
	Status  int
	Message string
	Field   string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewValidation reports a missing or invalid field. No network call is
// made once this is returned.
func NewValidation(field, msg string) *Error {
	return &Error{
		Code:    CodeValidation,
		Status:  http.StatusBadRequest,
		Message: msg,
		Field:   field,
	}
}

// NewUnauthenticated is returned when an operation needs a resolved owner.
func NewUnauthenticated(action string) *Error {
	return &Error{
		Code:    CodeUnauthenticated,
		Status:  http.StatusUnauthorized,
		Message: fmt.Sprintf("cannot %s: user not authenticated", action),
	}
}

func NewNotFound(kind, id string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("%s not found: %s", kind, id),
		Details: map[string]any{"id": id},
	}
}

// NewConflict reports an operation on an entry that is still pending.
func NewConflict(msg string) *Error {
	return &Error{
		Code:    CodeConflict,
		Status:  http.StatusConflict,
		Message: msg,
	}
}

// NewStore wraps a remote store failure. A context deadline becomes a
// timeout error.
func NewStore(action string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeout(action, err)
	}
	return &Error{
		Code:    CodeStoreUnavailable,
		Status:  http.StatusBadGateway,
		Message: fmt.Sprintf("failed to %s", action),
		Err:     err,
	}
}

func NewGenerator(msg string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeout(msg, err)
	}
	return &Error{
		Code:    CodeGeneratorUnavailable,
		Status:  http.StatusBadGateway,
		Message: msg,
		Err:     err,
	}
}

// NewMalformedResponse reports a generator payload none of the extraction
// strategies could read.
func NewMalformedResponse(tried []string) *Error {
	return &Error{
		Code:    CodeMalformedResponse,
		Status:  http.StatusBadGateway,
		Message: "generator response carried no usable text",
		Details: map[string]any{"strategies": tried},
	}
}

func NewTimeout(action string, err error) *Error {
	return &Error{
		Code:    CodeTimeout,
		Status:  http.StatusGatewayTimeout,
		Message: fmt.Sprintf("timed out: %s", action),
		Err:     err,
	}
}

func NewInternal(err error) *Error {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    CodeInternal,
		Status:  http.StatusInternalServerError,
		Message: msg,
		Err:     err,
	}
}

// Is reports whether err, or anything it wraps, is an *Error with code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// From returns err as an *Error, wrapping unknown errors as internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewInternal(err)
}
