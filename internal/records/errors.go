package records

import (
	"fmt"
	"strings"
)

// ViolationKind classifies why a field was rejected.
type ViolationKind string

const (
	KindMissing      ViolationKind = "missing"
	KindTypeMismatch ViolationKind = "type_mismatch"
	KindOutOfBounds  ViolationKind = "out_of_bounds"
	KindInvalidEnum  ViolationKind = "invalid_enum"
	KindCrossField   ViolationKind = "cross_field"
)

// Violation is one rejected field or rule.
type Violation struct {
	Field   string        `json:"field"`
	Kind    ViolationKind `json:"kind"`
	Message string        `json:"message"`
}

// ValidationError lists every violation found in a record.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = fmt.Sprintf("%s: %s", v.Field, v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether a violation of kind was recorded for field.
func (e *ValidationError) Has(field string, kind ViolationKind) bool {
	for _, v := range e.Violations {
		if v.Field == field && v.Kind == kind {
			return true
		}
	}
	return false
}
