package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrForbidden is returned when the caller's role may not perform an action
var ErrForbidden = errors.New("forbidden")

// ValidationError reports malformed input, keyed by field
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
