package schema

import (
	"sort"
	"strings"
)

// BodyField is the key used for problems with the payload as a whole.
const BodyField = "_"

// ValidationError collects field-level problems found in a payload.
// Fields maps a JSON field name to its messages.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError creates a ValidationError with a single problem.
func NewValidationError(field, message string) *ValidationError {
	e := &ValidationError{}
	e.Add(field, message)
	return e
}

// Add records a message for field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Empty reports whether no problem has been recorded.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// Error renders the problems in field order, e.g. "article: is required; name: is required".
func (e *ValidationError) Error() string {
	if e.Empty() {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// orNil returns nil for an empty error so callers can `return e.orNil()`.
func (e *ValidationError) orNil() error {
	if e.Empty() {
		return nil
	}
	return e
}
