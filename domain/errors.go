package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Violation flags one invalid value on one input row. Violations are data,
// not errors: the row stays in the normalized output and the caller decides
// whether to filter it.
type Violation struct {
	Kind    string `json:"kind"`
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Violation kinds emitted by the normalizer.
const (
	ViolationMissingIdentifier = "missing_identifier"
	ViolationNonNumericPoints  = "non_numeric_points"
	ViolationNegativePoints    = "negative_points"
)

// SchemaError means a required column is absent from the input header set.
// This is the one condition that blocks all downstream use of the dataset.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// MappingError means an attempt to persist a placeholder concept value.
// The store rejects the whole write and keeps its prior contents.
type MappingError struct {
	Item  string
	Value string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("placeholder concept value %q for rubric item %q", e.Value, e.Item)
}

// OrderingError means the supplied exam order does not cover the data's
// exam-id set exactly. Fatal to persistence/trajectory computation only.
type OrderingError struct {
	Missing    []string // exam ids present in the data but absent from the order
	Unknown    []string // exam ids in the order that never occur in the data
	Duplicates []string // exam ids listed more than once
}

func (e *OrderingError) Error() string {
	parts := make([]string, 0, 3)
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing exams %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, fmt.Sprintf("unknown exams %s", strings.Join(e.Unknown, ", ")))
	}
	if len(e.Duplicates) > 0 {
		parts = append(parts, fmt.Sprintf("duplicate exams %s", strings.Join(e.Duplicates, ", ")))
	}
	return "invalid exam order: " + strings.Join(parts, "; ")
}

// ErrInsufficientData is returned when the predictive model has no usable
// training data at all (for per-concept skips see SkippedConcept).
var ErrInsufficientData = errors.New("insufficient data to fit predictive model")

// SkippedConcept records why one concept was excluded from risk predictions.
type SkippedConcept struct {
	Concept string `json:"concept"`
	Reason  string `json:"reason"`
}
