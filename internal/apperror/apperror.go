// Package apperror defines the error taxonomy surfaced to API callers.
package apperror

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrStoreUnavailable   = errors.New("store unavailable")
)

// ValidationError reports malformed field values on a write or filter.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, message string) error {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// FromValidation converts the result of an ozzo-validation call. A nil input
// yields nil; internal (non field-level) errors are returned untouched.
func FromValidation(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		var internal validation.InternalError
		if errors.As(err, &internal) {
			return err
		}
		return &ValidationError{Fields: map[string]string{"non_field_errors": err.Error()}}
	}
	fields := make(map[string]string, len(errs))
	for k, v := range errs {
		if v != nil {
			fields[k] = v.Error()
		}
	}
	return &ValidationError{Fields: fields}
}

// Unavailable wraps a persistence failure so callers can match ErrStoreUnavailable
// while the cause stays reachable through errors.Unwrap chains.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return &storeError{cause: err}
}

type storeError struct {
	cause error
}

func (e *storeError) Error() string {
	return ErrStoreUnavailable.Error() + ": " + e.cause.Error()
}

func (e *storeError) Unwrap() []error {
	return []error{ErrStoreUnavailable, e.cause}
}
