// Package postgres renders compiled query plans into PostgreSQL statements
// and executes them through pgx. It implements the full emission capability
// set the plan fragments assume: scalar comparisons, array operators
// (= ANY, <> ALL, &&, @>, array_length), boolean combinators with
// arity-driven grouping, predicate-to-integer casts, and labeled aggregates.
package postgres

import (
	"fmt"
	"strings"

	"github.com/asaidimu/go-tafsiri/core/plan"
	"github.com/asaidimu/go-tafsiri/core/query"
	"github.com/asaidimu/go-tafsiri/core/schema"
)

// Renderer translates a plan into SQL text plus positional arguments.
type Renderer struct{}

// NewRenderer creates a plan renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// quoteIdentifier safely quotes an identifier for use in a Postgres query.
func quoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// pgElementType maps a schema field type to the Postgres type used when
// casting array operands.
func pgElementType(t schema.FieldType) string {
	switch t {
	case schema.FieldTypeString:
		return "text"
	case schema.FieldTypeInteger:
		return "bigint"
	case schema.FieldTypeNumber:
		return "double precision"
	case schema.FieldTypeDecimal:
		return "numeric"
	case schema.FieldTypeBoolean:
		return "boolean"
	case schema.FieldTypeDatetime:
		return "timestamptz"
	}
	return "text"
}

// RenderSelect renders a plan as a SELECT statement. Aggregate selectables
// take precedence over the column load list; with neither, all columns are
// selected. Relation loading directives do not affect the statement; they are
// advisory to the caller's loading strategy.
func (r *Renderer) RenderSelect(p *plan.Plan) (string, []any, error) {
	if p == nil {
		return "", nil, fmt.Errorf("plan cannot be nil")
	}

	var args []any
	var selectList []string
	switch {
	case len(p.Selectables) > 0:
		for _, sel := range p.Selectables {
			expr, err := r.renderSelectExpr(sel.Expr, &args)
			if err != nil {
				return "", nil, err
			}
			selectList = append(selectList, expr+" AS "+quoteIdentifier(sel.Label))
		}
	case len(p.Columns) > 0:
		for _, load := range p.Columns {
			selectList = append(selectList, quoteIdentifier(load.Column.Name()))
		}
	default:
		selectList = append(selectList, "*")
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + strings.Join(selectList, ", ") + " FROM " + quoteIdentifier(p.Model))

	if p.Where != nil {
		whereSQL, err := r.renderPredicate(p.Where, &args)
		if err != nil {
			return "", nil, fmt.Errorf("error building WHERE clause: %w", err)
		}
		sb.WriteString(" WHERE " + whereSQL)
	}

	if len(p.GroupBy) > 0 {
		names := make([]string, 0, len(p.GroupBy))
		for _, col := range p.GroupBy {
			names = append(names, quoteIdentifier(col.Name()))
		}
		sb.WriteString(" GROUP BY " + strings.Join(names, ", "))
	}

	if len(p.OrderBy) > 0 {
		keys := make([]string, 0, len(p.OrderBy))
		for _, key := range p.OrderBy {
			direction := "ASC"
			if key.Direction == query.SortDescending {
				direction = "DESC"
			}
			keys = append(keys, quoteIdentifier(key.Column.Name())+" "+direction)
		}
		sb.WriteString(" ORDER BY " + strings.Join(keys, ", "))
	}

	return sb.String() + ";", args, nil
}

// renderPredicate recursively renders a predicate tree. And/Or nodes with
// more than one child are parenthesized so the expression survives later
// composition.
func (r *Renderer) renderPredicate(pred plan.Predicate, args *[]any) (string, error) {
	switch node := pred.(type) {
	case *plan.And:
		return r.renderJunction(node.Children, " AND ", args)
	case *plan.Or:
		return r.renderJunction(node.Children, " OR ", args)
	case *plan.Not:
		child, err := r.renderPredicate(node.Child, args)
		if err != nil {
			return "", err
		}
		return "NOT (" + child + ")", nil
	case *plan.Compare:
		return r.renderCompare(node, args)
	}
	return "", fmt.Errorf("unsupported predicate node %T", pred)
}

func (r *Renderer) renderJunction(children []plan.Predicate, joiner string, args *[]any) (string, error) {
	clauses := make([]string, 0, len(children))
	for _, child := range children {
		clause, err := r.renderPredicate(child, args)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, clause)
	}
	switch len(clauses) {
	case 0:
		return "", fmt.Errorf("boolean combinator with no children")
	case 1:
		return clauses[0], nil
	}
	return "(" + strings.Join(clauses, joiner) + ")", nil
}

// bind appends the comparison's operand to the argument list and returns its
// placeholder, adding an array cast when the compiler recorded an element
// type.
func bind(cmp *plan.Compare, args *[]any) string {
	*args = append(*args, cmp.Value)
	placeholder := fmt.Sprintf("$%d", len(*args))
	if cmp.ElementType != "" {
		placeholder += "::" + pgElementType(cmp.ElementType) + "[]"
	}
	return placeholder
}

func (r *Renderer) renderCompare(cmp *plan.Compare, args *[]any) (string, error) {
	col := quoteIdentifier(cmp.Column.Name())

	switch cmp.Operator {
	case plan.CompareEqual:
		return col + " = " + bind(cmp, args), nil
	case plan.CompareNotEqual:
		return col + " <> " + bind(cmp, args), nil
	case plan.CompareLess:
		return col + " < " + bind(cmp, args), nil
	case plan.CompareLessOrEqual:
		return col + " <= " + bind(cmp, args), nil
	case plan.CompareGreaterOrEqual:
		return col + " >= " + bind(cmp, args), nil
	case plan.CompareGreater:
		return col + " > " + bind(cmp, args), nil
	case plan.CompareIn:
		values, ok := cmp.Value.([]any)
		if !ok {
			return "", fmt.Errorf("IN operand must be a list, got %T", cmp.Value)
		}
		if len(values) == 0 {
			return "1=0", nil
		}
		placeholders := make([]string, 0, len(values))
		for _, v := range values {
			*args = append(*args, v)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(*args)))
		}
		return col + " IN (" + strings.Join(placeholders, ", ") + ")", nil
	case plan.CompareIsNull:
		return col + " IS NULL", nil
	case plan.CompareIsNotNull:
		return col + " IS NOT NULL", nil
	case plan.CompareAnyEqual:
		return bind(cmp, args) + " = ANY(" + col + ")", nil
	case plan.CompareAllNotEqual:
		return bind(cmp, args) + " <> ALL(" + col + ")", nil
	case plan.CompareOverlap:
		return col + " && " + bind(cmp, args), nil
	case plan.CompareContainsAll:
		return col + " @> " + bind(cmp, args), nil
	case plan.CompareLengthEqual:
		return "array_length(" + col + ", 1) = " + bind(cmp, args), nil
	case plan.CompareLengthIsNull:
		return "array_length(" + col + ", 1) IS NULL", nil
	}
	return "", fmt.Errorf("unsupported comparison operator %q", cmp.Operator)
}

func (r *Renderer) renderSelectExpr(expr plan.SelectExpr, args *[]any) (string, error) {
	switch node := expr.(type) {
	case *plan.ColumnExpr:
		return quoteIdentifier(node.Column.Name()), nil
	case *plan.CountExpr:
		if node.Multiplier == 1 {
			return "count(*)", nil
		}
		return fmt.Sprintf("count(*) * %d", node.Multiplier), nil
	case *plan.PredicateExpr:
		if node.Predicate == nil {
			return "cast(true as integer)", nil
		}
		pred, err := r.renderPredicate(node.Predicate, args)
		if err != nil {
			return "", err
		}
		return "cast(" + pred + " as integer)", nil
	case *plan.AggregateExpr:
		operand, err := r.renderSelectExpr(node.Operand, args)
		if err != nil {
			return "", err
		}
		return string(node.Func) + "(" + operand + ")", nil
	}
	return "", fmt.Errorf("unsupported selectable expression %T", expr)
}
