package plan

import (
	"fmt"

	"github.com/asaidimu/go-tafsiri/core/query"
)

var aggregateFuncs = map[query.AggregateOperator]AggregateFunc{
	query.AggregateMin: AggregateMin,
	query.AggregateMax: AggregateMax,
	query.AggregateAvg: AggregateAvg,
	query.AggregateSum: AggregateSum,
}

// CompileAggregate translates a canonical aggregate clause into labeled
// selectables, preserving entry order. A plain column reference selects the
// column under its alias; $sum with an integer operand becomes a scaled row
// count; a predicate operand is compiled as criteria and coerced to an
// integer by the backend.
func (c *Compiler) CompileAggregate(agg query.Aggregate) ([]Selectable, error) {
	if len(agg) == 0 {
		return nil, nil
	}
	out := make([]Selectable, 0, len(agg))
	for _, field := range agg {
		if field.Computation == nil {
			col, ok := c.model.Column(field.Column)
			if !ok {
				return nil, unknownField(query.ClauseAggregate, field.Column)
			}
			out = append(out, Selectable{Label: field.Alias, Expr: &ColumnExpr{Column: col}})
			continue
		}

		comp := field.Computation
		if comp.Operand.Count != nil {
			out = append(out, Selectable{Label: field.Alias, Expr: &CountExpr{Multiplier: *comp.Operand.Count}})
			continue
		}

		fn, ok := aggregateFuncs[comp.Operator]
		if !ok {
			return nil, query.NewValidationError(query.ClauseAggregate, query.ErrUnknownOperator,
				string(comp.Operator), fmt.Sprintf("unsupported operator %q", comp.Operator))
		}

		var operand SelectExpr
		switch {
		case comp.Operand.Column != nil:
			col, found := c.model.Column(*comp.Operand.Column)
			if !found {
				return nil, unknownField(query.ClauseAggregate, *comp.Operand.Column)
			}
			operand = &ColumnExpr{Column: col}
		case comp.Operand.Predicate != nil:
			pred, err := c.CompileCriteria(comp.Operand.Predicate)
			if err != nil {
				return nil, err
			}
			operand = &PredicateExpr{Predicate: pred}
		default:
			return nil, query.NewValidationError(query.ClauseAggregate, query.ErrAggregateShape,
				field.Alias, "expression should be either a column name, or an object")
		}
		out = append(out, Selectable{Label: field.Alias, Expr: &AggregateExpr{Func: fn, Operand: operand}})
	}
	return out, nil
}
