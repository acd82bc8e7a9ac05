package query

import (
	"fmt"
	"strings"
)

// ParseProjection normalizes a projection clause. Accepted surface forms:
//
//   - null / empty string     - empty projection (select-all)
//   - "a,b,c" or "+a,b,c"     - string inclusion
//   - "-a,b,c"                - string exclusion
//   - ["a", "b", "c"]         - list inclusion
//   - {a: 1, b: 1} / {a: 0}   - object inclusion/exclusion
func ParseProjection(s Surface) (Projection, error) {
	switch s.Kind() {
	case KindNull:
		return Projection{}, nil
	case KindString:
		raw, _ := s.Str()
		if raw == "" {
			return Projection{}, nil
		}
		mode := ProjectionInclude
		switch raw[0] {
		case '+':
			raw = raw[1:]
		case '-':
			mode = ProjectionExclude
			raw = raw[1:]
		}
		return Projection{Mode: mode, Fields: strings.Split(raw, ",")}, nil
	case KindList:
		items, _ := s.Items()
		fields := make([]string, 0, len(items))
		for _, item := range items {
			name, ok := item.Str()
			if !ok {
				return Projection{}, errShape(ClauseProjection, "projection list entries must be field names")
			}
			fields = append(fields, name)
		}
		return Projection{Mode: ProjectionInclude, Fields: fields}, nil
	case KindObject:
		members, _ := s.Members()
		var sum int64
		anyTruthy := false
		fields := make([]string, 0, len(members))
		for _, m := range members {
			v, ok := m.Value.Int()
			if !ok {
				return Projection{}, NewValidationError(ClauseProjection, ErrShape, m.Key,
					"projection object values must be 0 or 1")
			}
			sum += v
			anyTruthy = anyTruthy || v != 0
			fields = append(fields, m.Key)
		}
		if sum != 0 && sum != int64(len(members)) {
			return Projection{}, NewValidationError(ClauseProjection, ErrMixedProjection, "",
				"projection object values must be all 0s or all 1s")
		}
		mode := ProjectionExclude
		if anyTruthy {
			mode = ProjectionInclude
		}
		return Projection{Mode: mode, Fields: fields}, nil
	}
	return Projection{}, errShape(ClauseProjection, "projection must be one of: null, string, list, object")
}

// ParseSort normalizes a sort clause. Accepted surface forms:
//
//   - null / empty string       - no sorting
//   - "a,b-,c+"                 - string of tokens; trailing sign sets direction
//   - ["a", "b-", "c+"]         - list of such tokens
//   - {a: 1, b: -1}             - ordered object of explicit directions
func ParseSort(s Surface) (Sort, error) {
	return parseOrder(ClauseSort, s)
}

// ParseGroup normalizes a group clause; it accepts the same surface forms as
// ParseSort.
func ParseGroup(s Surface) (Group, error) {
	return parseOrder(ClauseGroup, s)
}

func parseOrder(clause string, s Surface) (Sort, error) {
	switch s.Kind() {
	case KindNull:
		return nil, nil
	case KindString:
		raw, _ := s.Str()
		if raw == "" {
			return nil, nil
		}
		return parseOrderTokens(strings.Split(raw, ","))
	case KindList:
		items, _ := s.Items()
		tokens := make([]string, 0, len(items))
		for _, item := range items {
			tok, ok := item.Str()
			if !ok {
				return nil, errShape(clause, "%s must be one of: null, string, list of strings, object", clause)
			}
			tokens = append(tokens, tok)
		}
		return parseOrderTokens(tokens)
	case KindObject:
		members, _ := s.Members()
		out := make(Sort, 0, len(members))
		for _, m := range members {
			dir, ok := m.Value.Int()
			if !ok || (dir != 1 && dir != -1) {
				return nil, NewValidationError(clause, ErrDirection, m.Key,
					"direction can be either +1 or -1")
			}
			out = append(out, SortField{Field: m.Key, Direction: SortDirection(dir)})
		}
		return out, nil
	}
	return nil, errShape(clause, "%s must be one of: null, string, list of strings, object", clause)
}

func parseOrderTokens(tokens []string) (Sort, error) {
	out := make(Sort, 0, len(tokens))
	for _, tok := range tokens {
		field := SortField{Field: tok, Direction: SortAscending}
		if n := len(tok); n > 0 {
			switch tok[n-1] {
			case '-':
				field = SortField{Field: tok[:n-1], Direction: SortDescending}
			case '+':
				field = SortField{Field: tok[:n-1], Direction: SortAscending}
			}
		}
		out = append(out, field)
	}
	return out, nil
}

// ParseCriteria normalizes a criteria clause into a canonical filter tree.
// The surface form is null (no filter) or an object whose entries are either
// boolean combinators ($and, $or, $nor, $not) or field comparisons. Sibling
// entries of one object are joined by AND; an object with a single entry
// collapses to that entry's node.
func ParseCriteria(s Surface) (*Criteria, error) {
	switch s.Kind() {
	case KindNull:
		return nil, nil
	case KindObject:
		return parseCriteriaObject(s)
	}
	return nil, errShape(ClauseCriteria, "criteria must be one of: null, object")
}

func parseCriteriaObject(s Surface) (*Criteria, error) {
	members, _ := s.Members()
	children := make([]*Criteria, 0, len(members))
	for _, m := range members {
		node, err := parseCriteriaEntry(m.Key, m.Value)
		if err != nil {
			return nil, err
		}
		if node != nil {
			children = append(children, node)
		}
	}
	switch len(children) {
	case 0:
		return nil, nil
	case 1:
		return children[0], nil
	}
	return &Criteria{Branch: &Branch{Operator: LogicalAnd, Children: children}}, nil
}

func parseCriteriaEntry(key string, value Surface) (*Criteria, error) {
	switch LogicalOperator(key) {
	case LogicalAnd, LogicalOr, LogicalNor:
		items, ok := value.Items()
		if !ok {
			return nil, NewValidationError(ClauseCriteria, ErrShape, key,
				fmt.Sprintf("%s argument must be a list", key))
		}
		children := make([]*Criteria, 0, len(items))
		for _, item := range items {
			if item.Kind() != KindObject {
				return nil, NewValidationError(ClauseCriteria, ErrShape, key,
					fmt.Sprintf("%s entries must be objects", key))
			}
			child, err := parseCriteriaObject(item)
			if err != nil {
				return nil, err
			}
			if child != nil {
				children = append(children, child)
			}
		}
		return &Criteria{Branch: &Branch{Operator: LogicalOperator(key), Children: children}}, nil
	case LogicalNot:
		if value.Kind() != KindObject {
			return nil, NewValidationError(ClauseCriteria, ErrShape, key,
				"$not argument must be an object")
		}
		child, err := parseCriteriaObject(value)
		if err != nil {
			return nil, err
		}
		var children []*Criteria
		if child != nil {
			children = append(children, child)
		}
		return &Criteria{Branch: &Branch{Operator: LogicalNot, Children: children}}, nil
	}

	// Any other key is a field name. An object value spells out operator
	// comparisons; any other value is shorthand for {$eq: value}.
	if value.Kind() == KindObject {
		members, _ := value.Members()
		conditions := make([]*Criteria, 0, len(members))
		for _, m := range members {
			conditions = append(conditions, &Criteria{Condition: &Condition{
				Field:    key,
				Operator: Operator(m.Key),
				Value:    m.Value.GoValue(),
			}})
		}
		switch len(conditions) {
		case 0:
			return nil, nil
		case 1:
			return conditions[0], nil
		}
		return &Criteria{Branch: &Branch{Operator: LogicalAnd, Children: conditions}}, nil
	}
	return &Criteria{Condition: &Condition{Field: key, Operator: OperatorEq, Value: value.GoValue()}}, nil
}

// ParseJoin normalizes a join clause. Accepted surface forms: null, a
// comma-separated string of relation names, or a list of relation names.
func ParseJoin(s Surface) (Join, error) {
	switch s.Kind() {
	case KindNull:
		return nil, nil
	case KindString:
		raw, _ := s.Str()
		if raw == "" {
			return nil, nil
		}
		return strings.Split(raw, ","), nil
	case KindList:
		items, _ := s.Items()
		names := make(Join, 0, len(items))
		for _, item := range items {
			name, ok := item.Str()
			if !ok {
				return nil, errShape(ClauseJoin, "join list entries must be relation names")
			}
			names = append(names, name)
		}
		return names, nil
	}
	return nil, errShape(ClauseJoin, "join must be one of: null, string, list")
}

// ParseAggregate normalizes an aggregate clause: an object mapping output
// aliases to expressions. An expression is a column name, or an object with
// exactly one operator entry whose operand is an integer (only under $sum),
// a column name, or an embedded criteria object.
func ParseAggregate(s Surface) (Aggregate, error) {
	switch s.Kind() {
	case KindNull:
		return nil, nil
	case KindObject:
		members, _ := s.Members()
		out := make(Aggregate, 0, len(members))
		for _, m := range members {
			field, err := parseAggregateField(m.Key, m.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, field)
		}
		return out, nil
	}
	return nil, errShape(ClauseAggregate, "aggregate spec must be one of: null, object")
}

func parseAggregateField(alias string, expr Surface) (AggregateField, error) {
	switch expr.Kind() {
	case KindString:
		column, _ := expr.Str()
		return AggregateField{Alias: alias, Column: column}, nil
	case KindObject:
		members, _ := expr.Members()
		if len(members) != 1 {
			return AggregateField{}, NewValidationError(ClauseAggregate, ErrAggregateShape, alias,
				"expression can only contain a single operator")
		}
		op := AggregateOperator(members[0].Key)
		switch op {
		case AggregateMin, AggregateMax, AggregateAvg, AggregateSum:
		default:
			return AggregateField{}, NewValidationError(ClauseAggregate, ErrUnknownOperator,
				members[0].Key, fmt.Sprintf("unsupported operator %q", members[0].Key))
		}
		operand, err := parseAggregateOperand(alias, op, members[0].Value)
		if err != nil {
			return AggregateField{}, err
		}
		return AggregateField{
			Alias:       alias,
			Computation: &AggregateComputation{Operator: op, Operand: operand},
		}, nil
	}
	return AggregateField{}, NewValidationError(ClauseAggregate, ErrAggregateShape, alias,
		"expression should be either a column name, or an object")
}

func parseAggregateOperand(alias string, op AggregateOperator, operand Surface) (AggregateOperand, error) {
	switch operand.Kind() {
	case KindNumber:
		n, ok := operand.Int()
		if !ok || op != AggregateSum {
			return AggregateOperand{}, NewValidationError(ClauseAggregate, ErrAggregateShape, alias,
				"expression should be either a column name, or an object")
		}
		return AggregateOperand{Count: &n}, nil
	case KindString:
		column, _ := operand.Str()
		return AggregateOperand{Column: &column}, nil
	case KindObject:
		criteria, err := parseCriteriaObject(operand)
		if err != nil {
			return AggregateOperand{}, err
		}
		if criteria == nil {
			// An empty criteria object still denotes a predicate operand;
			// it compiles to the constant TRUE.
			criteria = &Criteria{Branch: &Branch{Operator: LogicalAnd}}
		}
		return AggregateOperand{Predicate: criteria}, nil
	}
	return AggregateOperand{}, NewValidationError(ClauseAggregate, ErrAggregateShape, alias,
		"expression should be either a column name, or an object")
}
