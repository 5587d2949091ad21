// Package apperr defines the typed failures business logic raises and the
// HTTP boundary renders. Every failure carries a stable numeric status code;
// field-level details are optional.
package apperr

import "net/http"

// Error is a business-rule violation surfaced to the API caller.
type Error struct {
	Status  int
	Message string
	Fields  map[string][]string
}

func (e *Error) Error() string {
	return e.Message
}

func BadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

// NotFound reports a missing resource. Not-owned resources use the same
// failure so callers cannot probe for existence.
func NotFound(resource string) *Error {
	return &Error{Status: http.StatusNotFound, Message: resource + " not found"}
}

func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

// UnprocessableEntity reports structured validation failures per field.
func UnprocessableEntity(message string, fields map[string][]string) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Message: message, Fields: fields}
}

func Internal() *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "Internal server error"}
}
