package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error for transport-level mapping.
type ErrorKind string

const (
	KindNotFound     ErrorKind = "not_found"
	KindValidation   ErrorKind = "validation"
	KindForbidden    ErrorKind = "forbidden"
	KindConflict     ErrorKind = "conflict"
	KindInvalidState ErrorKind = "invalid_state"
)

// Error is a kind-tagged domain error. Services return these; the HTTP
// layer maps the kind to a status code without inspecting messages.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewNotFoundError reports that the referenced entity does not exist.
func NewNotFoundError(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s with id %s not found", entity, id)}
}

// NewValidationError reports a business-rule violation on the input.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewForbiddenError reports that the caller is not allowed to perform the operation.
func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NewConflictError reports a uniqueness or concurrent-modification conflict.
func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewInvalidStateError reports an illegal state transition, carrying the
// current and expected states for diagnostics.
func NewInvalidStateError(current, expected string) *Error {
	return &Error{
		Kind:    KindInvalidState,
		Message: fmt.Sprintf("current status is %s, but should be %s", current, expected),
	}
}

// KindOf returns the kind of err if it is a domain error, or "" otherwise.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsNotFound reports whether err is a not-found domain error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
