package application

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrForbidden          = errors.New("not authorized to access this task")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUser      = errors.New("duplicate field value entered")
	ErrCannotDeleteSelf   = errors.New("cannot delete your own account")
	ErrCannotDeleteAdmin  = errors.New("cannot delete admin users")
)

// ValidationError lists every rejected input field with its message.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
