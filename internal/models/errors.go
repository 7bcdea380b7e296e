package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the stable name of an application error class. It is what
// clients see in the `error` field of the response envelope, and it maps
// one-to-one onto an HTTP status code at the boundary.
type ErrorKind string

const (
	KindBadRequest    ErrorKind = "BadRequest"
	KindUnauthorized  ErrorKind = "Unauthorized"
	KindForbidden     ErrorKind = "Forbidden"
	KindNotFound      ErrorKind = "NotFound"
	KindConflict      ErrorKind = "Conflict"
	KindUnprocessable ErrorKind = "UnprocessableEntity"
	KindServerError   ErrorKind = "ServerError"
)

// AppError is a classified application error. Known failures carry a kind,
// a human message, an optional description and an optional field-error map;
// they propagate unchanged to the HTTP boundary.
type AppError struct {
	Kind        ErrorKind
	Message     string
	Description string
	Fields      map[string]string
	Err         error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code for the error kind.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnprocessable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Predefined error constructors

func NewBadRequest(message string) *AppError {
	return &AppError{Kind: KindBadRequest, Message: message}
}

// NewFieldErrors builds a BadRequest carrying a field-name to message map,
// used for validation-style failures and duplicate-key translations.
func NewFieldErrors(message string, fields map[string]string) *AppError {
	return &AppError{Kind: KindBadRequest, Message: message, Fields: fields}
}

func NewUnauthorized(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

func NewForbidden(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func NewNotFound(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf("Unable to find the %s", resource)}
}

func NewConflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

func NewUnprocessable(message string) *AppError {
	return &AppError{Kind: KindUnprocessable, Message: message}
}

func NewInternal(err error) *AppError {
	return &AppError{Kind: KindServerError, Message: "Internal server error", Err: err}
}

// AsAppError extracts an *AppError from err's chain, or nil.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
