package query

// Operator is a comparison operator token as it appears in a criteria object.
type Operator string

// Supported comparison operators. For array-valued columns, $eq, $ne, $in,
// and $nin take on containment semantics; $all and $size only apply to
// array-valued columns.
const (
	OperatorEq     Operator = "$eq"
	OperatorNe     Operator = "$ne"
	OperatorLt     Operator = "$lt"
	OperatorLte    Operator = "$lte"
	OperatorGte    Operator = "$gte"
	OperatorGt     Operator = "$gt"
	OperatorIn     Operator = "$in"
	OperatorNin    Operator = "$nin"
	OperatorExists Operator = "$exists"
	OperatorAll    Operator = "$all"
	OperatorSize   Operator = "$size"
)

// LogicalOperator is a boolean combinator token of a criteria object.
type LogicalOperator string

// Supported boolean combinators.
const (
	LogicalAnd LogicalOperator = "$and"
	LogicalOr  LogicalOperator = "$or"
	LogicalNor LogicalOperator = "$nor"
	LogicalNot LogicalOperator = "$not"
)

// ProjectionMode selects between inclusion and exclusion projections. The zero
// value is exclusion, so the empty Projection excludes nothing (select-all).
type ProjectionMode int

// Projection modes.
const (
	ProjectionExclude ProjectionMode = iota
	ProjectionInclude
)

// Projection is the canonical projection clause: a mode and the listed field
// names in the order the surface form gave them.
type Projection struct {
	Mode   ProjectionMode
	Fields []string
}

// SortDirection is a sort direction, +1 ascending or -1 descending.
type SortDirection int

// Sort directions.
const (
	SortAscending  SortDirection = 1
	SortDescending SortDirection = -1
)

// SortField is one entry of a sort or group clause.
type SortField struct {
	Field     string
	Direction SortDirection
}

// Sort is the canonical sort clause; order is significant.
type Sort []SortField

// Group shares the sort clause's canonical shape; compilation ignores the
// direction and emits only the column handles.
type Group = Sort

// Condition is a leaf of a criteria tree: a single field compared against a
// value. Value holds a plain Go value (nil, bool, string, int64, float64,
// []any for lists, or map[string]any for an object operand).
type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

// Branch is an inner node of a criteria tree, combining child criteria with a
// boolean operator.
type Branch struct {
	Operator LogicalOperator
	Children []*Criteria
}

// Criteria is a node of the canonical filter tree: either a single Condition
// or a Branch of combined children. A nil *Criteria means "no filter"
// (constant TRUE).
type Criteria struct {
	Condition *Condition
	Branch    *Branch
}

// Join is the canonical join clause: the relation names requested for eager
// loading. Compilation demotes every other declared relation to lazy loading.
type Join []string

// AggregateOperator is an aggregation operator token.
type AggregateOperator string

// Supported aggregation operators.
const (
	AggregateMin AggregateOperator = "$min"
	AggregateMax AggregateOperator = "$max"
	AggregateAvg AggregateOperator = "$avg"
	AggregateSum AggregateOperator = "$sum"
)

// AggregateOperand is the operand of an aggregation operator: a column name,
// an integer literal (only legal under $sum, where it denotes a scaled count),
// or an embedded criteria tree whose boolean result is coerced to an integer.
// Exactly one field is set.
type AggregateOperand struct {
	Column    *string
	Count     *int64
	Predicate *Criteria
}

// AggregateComputation is an applied aggregation operator.
type AggregateComputation struct {
	Operator AggregateOperator
	Operand  AggregateOperand
}

// AggregateField is one entry of the canonical aggregate clause: an output
// alias bound either to a plain column reference (Computation nil) or to a
// computation.
type AggregateField struct {
	Alias       string
	Column      string
	Computation *AggregateComputation
}

// Aggregate is the canonical aggregate clause; entries keep the order of the
// surface object's members.
type Aggregate []AggregateField

// Canonical bundles the canonical forms of all clauses of one query.
type Canonical struct {
	Projection Projection
	Sort       Sort
	Group      Group
	Criteria   *Criteria
	Join       Join
	Aggregate  Aggregate
}

// Query is the raw clause container a caller submits: each clause as the
// JSON-shaped Surface it arrived in. Absent clauses stay null.
type Query struct {
	Project   Surface `json:"project"`
	Sort      Surface `json:"sort"`
	Group     Surface `json:"group"`
	Filter    Surface `json:"filter"`
	Join      Surface `json:"join"`
	Aggregate Surface `json:"aggregate"`
}

// Parse normalizes every clause of the query into its canonical form. The
// first failing clause aborts the whole query; nothing is partially applied.
func (q *Query) Parse() (*Canonical, error) {
	projection, err := ParseProjection(q.Project)
	if err != nil {
		return nil, err
	}
	sortSpec, err := ParseSort(q.Sort)
	if err != nil {
		return nil, err
	}
	groupSpec, err := ParseGroup(q.Group)
	if err != nil {
		return nil, err
	}
	criteria, err := ParseCriteria(q.Filter)
	if err != nil {
		return nil, err
	}
	join, err := ParseJoin(q.Join)
	if err != nil {
		return nil, err
	}
	aggregate, err := ParseAggregate(q.Aggregate)
	if err != nil {
		return nil, err
	}
	return &Canonical{
		Projection: projection,
		Sort:       sortSpec,
		Group:      groupSpec,
		Criteria:   criteria,
		Join:       join,
		Aggregate:  aggregate,
	}, nil
}
