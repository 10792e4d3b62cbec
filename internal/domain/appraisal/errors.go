package appraisal

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound             = errors.New("appraisal not found")
	ErrTransitionNotAllowed = errors.New("transition not allowed for current appraisal status")
	ErrStaleStatus          = errors.New("appraisal status changed since it was read")
)

// ValidationError carries field-keyed messages for recoverable input
// problems. It is returned, never panicked, so callers can re-render the
// form without losing user input.
type ValidationError map[string]string

func (v ValidationError) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+v[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidationError unwraps err into a ValidationError if it is one.
func AsValidationError(err error) (ValidationError, bool) {
	var v ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
