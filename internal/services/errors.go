package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error for transport mapping.
type ErrorKind int

const (
	ErrKindValidation ErrorKind = iota
	ErrKindStateConflict
	ErrKindPermission
	ErrKindNotFound
)

// DomainError is a user-renderable failure from a core operation. Any
// DomainError returned inside a transaction aborts and rolls back the whole
// unit.
type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewValidationError reports missing or invalid input.
func NewValidationError(format string, args ...any) *DomainError {
	return &DomainError{Kind: ErrKindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewStateConflictError reports an operation disallowed in the current state.
func NewStateConflictError(format string, args ...any) *DomainError {
	return &DomainError{Kind: ErrKindStateConflict, Message: fmt.Sprintf(format, args...)}
}

// NewPermissionError reports a missing capability.
func NewPermissionError(format string, args ...any) *DomainError {
	return &DomainError{Kind: ErrKindPermission, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(format string, args ...any) *DomainError {
	return &DomainError{Kind: ErrKindNotFound, Message: fmt.Sprintf(format, args...)}
}

// AsDomainError unwraps err into a DomainError if it is one.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
