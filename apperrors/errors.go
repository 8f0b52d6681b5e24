package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStoreUnavailable marks persistence failures. Requests are not retried;
// callers answer with a generic 500 and the cause is logged.
var ErrStoreUnavailable = errors.New("store unavailable")

// FieldError is a single validation failure on one submitted field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every failed field of a submission so the caller
// can render them together instead of one at a time.
type ValidationErrors struct {
	Fields []FieldError `json:"errors"`
}

func (v *ValidationErrors) Error() string {
	parts := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field error. Safe to call on an empty collector.
func (v *ValidationErrors) Add(field, message string) {
	v.Fields = append(v.Fields, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any field failed.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Fields) > 0
}

// InvalidTransitionError is returned when a requested report status change is
// not in the lifecycle transition table. The record is left unchanged.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %q -> %q", e.From, e.To)
}

// AuthorizationError is returned when the acting user may not perform the
// requested operation on the target record.
type AuthorizationError struct {
	Operation string
}

func (e *AuthorizationError) Error() string {
	return "not authorized to " + e.Operation
}
