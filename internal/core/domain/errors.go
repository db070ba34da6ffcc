package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("email/username pair mismatch")
	ErrDuplicateReview = errors.New("review for this title already exists")
	ErrNotFound        = errors.New("not found")
	ErrInvalidCode     = errors.New("invalid confirmation code")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access forbidden")
	ErrDelivery        = errors.New("confirmation delivery failed")
	ErrUserExists      = errors.New("user with this username or email already exists")
	ErrSlugExists      = errors.New("slug already in use")
)

var (
	ErrUserNotFound     error = &notFoundError{entity: "user"}
	ErrCategoryNotFound error = &notFoundError{entity: "category"}
	ErrGenreNotFound    error = &notFoundError{entity: "genre"}
	ErrTitleNotFound    error = &notFoundError{entity: "title"}
	ErrReviewNotFound   error = &notFoundError{entity: "review"}
	ErrCommentNotFound  error = &notFoundError{entity: "comment"}
)

// notFoundError names the missing entity and matches ErrNotFound.
type notFoundError struct {
	entity string
}

func (e *notFoundError) Error() string { return e.entity + " not found" }

func (e *notFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError reports malformed or out-of-range input, keyed by field.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
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
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Add records msg for field and returns the receiver.
func (e *ValidationError) Add(field, msg string) *ValidationError {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
	return e
}

// OrNil returns nil when no field failed.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
