// Package plan defines the typed plan fragments query compilation emits -
// column load directives, predicate trees, sort keys, relation loading
// directives, and labeled selectables - and the schema-aware compilers that
// produce them from canonical clause forms. Fragments are value types,
// immutable after construction, and carry schema column handles so a dialect
// backend can render them without re-resolving names.
package plan

import (
	"github.com/asaidimu/go-tafsiri/core/query"
	"github.com/asaidimu/go-tafsiri/core/schema"
)

// ColumnLoad is a load-only directive: fetch exactly this column of the
// primary entity.
type ColumnLoad struct {
	Column schema.Column
}

// RelationLoad is a lazy-load directive: defer loading this relation until it
// is separately requested.
type RelationLoad struct {
	Relation schema.Relation
}

// SortKey is one entry of the compiled ordering.
type SortKey struct {
	Column    schema.Column
	Direction query.SortDirection
}

// CompareOperator identifies the comparison a Compare node performs.
type CompareOperator string

// Comparison operators a backend must be able to render. The array-specific
// operators are only ever emitted for array-valued columns.
const (
	CompareEqual          CompareOperator = "eq"
	CompareNotEqual       CompareOperator = "neq"
	CompareLess           CompareOperator = "lt"
	CompareLessOrEqual    CompareOperator = "lte"
	CompareGreaterOrEqual CompareOperator = "gte"
	CompareGreater        CompareOperator = "gt"
	CompareIn             CompareOperator = "in"
	CompareIsNull         CompareOperator = "is_null"
	CompareIsNotNull      CompareOperator = "is_not_null"
	CompareAnyEqual       CompareOperator = "any_eq"         // value = ANY(column)
	CompareAllNotEqual    CompareOperator = "all_neq"        // value <> ALL(column)
	CompareOverlap        CompareOperator = "overlap"        // column && value
	CompareContainsAll    CompareOperator = "contains_all"   // column @> value
	CompareLengthEqual    CompareOperator = "length_eq"      // array_length(column, 1) = value
	CompareLengthIsNull   CompareOperator = "length_is_null" // array_length(column, 1) IS NULL
)

// Predicate is a node of a compiled filter tree. Backends parenthesize
// And/Or nodes with more than one child; single-child nodes never occur
// (the compiler collapses them).
type Predicate interface {
	predicate()
}

// And is the conjunction of two or more child predicates.
type And struct {
	Children []Predicate
}

// Or is the disjunction of two or more child predicates.
type Or struct {
	Children []Predicate
}

// Not negates its child predicate.
type Not struct {
	Child Predicate
}

// Compare is a leaf comparison of a column against an operand value.
// ElementType is set when the operand is a list bound for an array column, so
// the backend can cast it to the column's element type.
type Compare struct {
	Column      schema.Column
	Operator    CompareOperator
	Value       any
	ElementType schema.FieldType
}

func (*And) predicate()     {}
func (*Or) predicate()      {}
func (*Not) predicate()     {}
func (*Compare) predicate() {}

// AggregateFunc is an aggregate function a backend must be able to render.
type AggregateFunc string

// Aggregate functions.
const (
	AggregateMin AggregateFunc = "min"
	AggregateMax AggregateFunc = "max"
	AggregateAvg AggregateFunc = "avg"
	AggregateSum AggregateFunc = "sum"
)

// SelectExpr is a compiled selectable expression.
type SelectExpr interface {
	selectExpr()
}

// ColumnExpr selects a plain column.
type ColumnExpr struct {
	Column schema.Column
}

// PredicateExpr is a boolean predicate used as a numeric operand; the backend
// casts it to an integer. A nil Predicate stands for the constant TRUE.
type PredicateExpr struct {
	Predicate Predicate
}

// CountExpr is a row count, scaled by Multiplier (count() when Multiplier is
// one).
type CountExpr struct {
	Multiplier int64
}

// AggregateExpr applies an aggregate function to an operand expression.
type AggregateExpr struct {
	Func    AggregateFunc
	Operand SelectExpr
}

func (*ColumnExpr) selectExpr()    {}
func (*PredicateExpr) selectExpr() {}
func (*CountExpr) selectExpr()     {}
func (*AggregateExpr) selectExpr() {}

// Selectable is a compiled expression labeled with its output name.
type Selectable struct {
	Label string
	Expr  SelectExpr
}

// Plan is the compiled form of a whole query against one model. A nil Where
// means no filter (constant TRUE); empty Columns means the backend selects
// all columns.
type Plan struct {
	ID          string
	Model       string
	Columns     []ColumnLoad
	Relations   []RelationLoad
	Where       Predicate
	OrderBy     []SortKey
	GroupBy     []schema.Column
	Selectables []Selectable
}
