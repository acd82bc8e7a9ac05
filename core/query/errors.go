package query

import "fmt"

// ErrorKind classifies a validation failure raised while parsing or compiling
// a clause.
type ErrorKind string

// Validation error kinds.
const (
	ErrShape              ErrorKind = "shape"
	ErrMixedProjection    ErrorKind = "mixed_projection"
	ErrUnknownField       ErrorKind = "unknown_field"
	ErrUnknownRelation    ErrorKind = "unknown_relation"
	ErrOperatorConstraint ErrorKind = "operator_constraint"
	ErrUnknownOperator    ErrorKind = "unknown_operator"
	ErrAggregateShape     ErrorKind = "aggregate_shape"
	ErrDirection          ErrorKind = "direction"
)

// Clause names used in validation errors.
const (
	ClauseProjection = "projection"
	ClauseSort       = "sort"
	ClauseGroup      = "group"
	ClauseCriteria   = "criteria"
	ClauseJoin       = "join"
	ClauseAggregate  = "aggregate"
)

// ValidationError is the error the parsers and compilers produce for invalid
// clause input; a nil query passed to a compiler is reported as a plain
// error instead. Token
// carries the offending field, relation, or operator name so callers can
// report the location; it is empty for pure shape failures.
type ValidationError struct {
	Kind    ErrorKind
	Clause  string
	Token   string
	Message string
}

// NewValidationError constructs a ValidationError for the given clause.
func NewValidationError(clause string, kind ErrorKind, token, message string) *ValidationError {
	return &ValidationError{Kind: kind, Clause: clause, Token: token, Message: message}
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("%s: %s (%s: %q)", e.Clause, e.Message, e.Kind, e.Token)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Clause, e.Message, e.Kind)
}

func errShape(clause, format string, args ...any) *ValidationError {
	return NewValidationError(clause, ErrShape, "", fmt.Sprintf(format, args...))
}
