package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for HTTP mapping and retry policy.
type Kind int

const (
	KindValidation Kind = iota // precondition or input failure, 400
	KindUnauthorized           // missing/invalid credentials, 401
	KindForbidden              // actor lacks the role/relationship, 403
	KindNotFound               // referenced entity absent, 404
	KindConflict               // lost a read-check-write race, 409
	KindDependency             // external collaborator failed, 502
)

// Error is a structured error carrying a machine field name and a human message.
type Error struct {
	Kind    Kind   `json:"-"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	wrapped error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.wrapped }

// Validation reports a field-keyed precondition violation.
func Validation(field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized reports missing or invalid credentials.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Forbidden reports an actor that is not allowed to perform the action.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NotFound reports an absent entity.
func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Field: what, Message: what + " not found"}
}

// Conflict reports a transition whose precondition became false between
// check and write because another actor won the race.
func Conflict(field, message string) *Error {
	return &Error{Kind: KindConflict, Field: field, Message: message}
}

// Dependency wraps a failure from an external collaborator.
func Dependency(name string, err error) *Error {
	return &Error{Kind: KindDependency, Field: name, Message: name + " unavailable", wrapped: err}
}

// StatusCode maps an error to an HTTP status. Unknown errors map to 500.
func StatusCode(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindDependency:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// Body returns the JSON error body for an error.
func Body(err error) map[string]any {
	var e *Error
	if !errors.As(err, &e) {
		return map[string]any{"status": "error", "message": "internal error"}
	}
	body := map[string]any{"status": "error", "message": e.Message}
	if e.Field != "" {
		body["field"] = e.Field
	}
	return body
}
