package plan

import (
	"fmt"

	"github.com/asaidimu/go-tafsiri/core/query"
	"github.com/asaidimu/go-tafsiri/core/schema"
)

// CompileCriteria translates a canonical criteria tree into a predicate tree.
// A nil criteria compiles to a nil predicate, the constant TRUE. $and and $or
// with a single surviving child collapse to that child, while $nor and $not
// wrap it in a Not; empty combinators contribute nothing.
func (c *Compiler) CompileCriteria(criteria *query.Criteria) (Predicate, error) {
	if criteria == nil {
		return nil, nil
	}
	return c.compileNode(criteria)
}

func (c *Compiler) compileNode(criteria *query.Criteria) (Predicate, error) {
	switch {
	case criteria.Condition != nil:
		return c.compileCondition(criteria.Condition)
	case criteria.Branch != nil:
		return c.compileBranch(criteria.Branch)
	}
	return nil, query.NewValidationError(query.ClauseCriteria, query.ErrShape, "",
		"criteria node carries neither a condition nor a branch")
}

func (c *Compiler) compileBranch(branch *query.Branch) (Predicate, error) {
	children := make([]Predicate, 0, len(branch.Children))
	for _, child := range branch.Children {
		compiled, err := c.compileNode(child)
		if err != nil {
			return nil, err
		}
		if compiled != nil {
			children = append(children, compiled)
		}
	}

	switch branch.Operator {
	case query.LogicalAnd:
		switch len(children) {
		case 0:
			return nil, nil
		case 1:
			return children[0], nil
		}
		return &And{Children: children}, nil
	case query.LogicalOr:
		switch len(children) {
		case 0:
			return nil, nil
		case 1:
			return children[0], nil
		}
		return &Or{Children: children}, nil
	case query.LogicalNor:
		switch len(children) {
		case 0:
			return nil, nil
		case 1:
			return &Not{Child: children[0]}, nil
		}
		return &Not{Child: &Or{Children: children}}, nil
	case query.LogicalNot:
		if len(children) == 0 {
			return nil, nil
		}
		return &Not{Child: children[0]}, nil
	}
	return nil, query.NewValidationError(query.ClauseCriteria, query.ErrUnknownOperator,
		string(branch.Operator), fmt.Sprintf("unsupported operator %q", branch.Operator))
}

// compileCondition is the operator dispatch table. The meaning of an operator
// depends on whether the column is array-valued and whether the operand is a
// list; when both hold, the column's element type is recorded on the
// comparison so the backend can cast the operand.
func (c *Compiler) compileCondition(cond *query.Condition) (Predicate, error) {
	col, ok := c.model.Column(cond.Field)
	if !ok {
		return nil, unknownField(query.ClauseCriteria, cond.Field)
	}

	colArray := col.IsArray()
	_, valueList := cond.Value.([]any)
	var elemType schema.FieldType
	if colArray && valueList {
		elemType = col.ElementType()
	}

	compare := func(op CompareOperator) *Compare {
		return &Compare{Column: col, Operator: op, Value: cond.Value, ElementType: elemType}
	}

	switch cond.Operator {
	case query.OperatorEq:
		if colArray && !valueList {
			// ANY(column) = value for a scalar operand; with a list operand
			// this is plain array equality.
			return compare(CompareAnyEqual), nil
		}
		return compare(CompareEqual), nil

	case query.OperatorNe:
		if colArray && !valueList {
			// ALL(column) <> value for a scalar operand; with a list operand
			// this is plain array inequality, matching the scalar case.
			return compare(CompareAllNotEqual), nil
		}
		return compare(CompareNotEqual), nil

	case query.OperatorLt:
		return compare(CompareLess), nil
	case query.OperatorLte:
		return compare(CompareLessOrEqual), nil
	case query.OperatorGte:
		return compare(CompareGreaterOrEqual), nil
	case query.OperatorGt:
		return compare(CompareGreater), nil

	case query.OperatorIn:
		if !valueList {
			return nil, operatorConstraint(cond.Field, "$in argument must be a list")
		}
		if colArray {
			return compare(CompareOverlap), nil
		}
		return compare(CompareIn), nil

	case query.OperatorNin:
		if !valueList {
			return nil, operatorConstraint(cond.Field, "$nin argument must be a list")
		}
		if colArray {
			return &Not{Child: compare(CompareOverlap)}, nil
		}
		return &Not{Child: compare(CompareIn)}, nil

	case query.OperatorExists:
		if query.Truthy(cond.Value) {
			return compare(CompareIsNotNull), nil
		}
		return compare(CompareIsNull), nil

	case query.OperatorAll:
		if !colArray {
			return nil, operatorConstraint(cond.Field, "$all can only be applied to an array column")
		}
		if !valueList {
			return nil, operatorConstraint(cond.Field, "$all argument must be a list")
		}
		return compare(CompareContainsAll), nil

	case query.OperatorSize:
		if !colArray {
			return nil, operatorConstraint(cond.Field, "$size can only be applied to an array column")
		}
		if n, ok := query.ToInt64(cond.Value); ok && n == 0 {
			return compare(CompareLengthIsNull), nil
		}
		return compare(CompareLengthEqual), nil
	}

	return nil, query.NewValidationError(query.ClauseCriteria, query.ErrUnknownOperator,
		string(cond.Operator), fmt.Sprintf("unsupported operator %q", cond.Operator))
}

func operatorConstraint(field, message string) error {
	return query.NewValidationError(query.ClauseCriteria, query.ErrOperatorConstraint, field, message)
}
