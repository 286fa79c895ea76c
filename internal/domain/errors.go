package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrBadCredentials  = errors.New("wrong credentials")
	ErrForbidden       = errors.New("not the owner")
	ErrNotFound        = errors.New("not found")
	ErrDuplicateReview = errors.New("ticket already reviewed by this user")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrSelfFollow      = errors.New("cannot follow self")
	ErrNotFollowing    = errors.New("not following this user")
)

// ValidationError carries per-field messages and matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
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
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Merge folds other's fields into e. Either side may be nil.
func (e *ValidationError) Merge(other *ValidationError) *ValidationError {
	if other == nil {
		return e
	}
	if e == nil {
		return other
	}
	for k, v := range other.Fields {
		e.Fields[k] = v
	}
	return e
}
