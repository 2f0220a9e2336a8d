package mpc

import "fmt"

// FieldError reports a single observation field that failed validation:
// which field, what was required, and what was actually seen. Batch
// readers catch and skip these; direct construction surfaces them.
type FieldError struct {
	Field       string
	Requirement string
	Actual      string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %s; but was %q", e.Field, e.Requirement, e.Actual)
}

func fieldErr(field, requirement, actual string) *FieldError {
	return &FieldError{Field: field, Requirement: requirement, Actual: actual}
}
