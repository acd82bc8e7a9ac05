package plan

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/asaidimu/go-tafsiri/core/query"
	"github.com/asaidimu/go-tafsiri/core/schema"
)

// Compiler translates canonical clause forms into plan fragments for one
// model. It holds no mutable state and is safe for concurrent use as long as
// the model view is immutable.
type Compiler struct {
	model  schema.Model
	logger *zap.Logger
}

// NewCompiler creates a compiler for the given model. A nil logger defaults
// to a no-op logger.
func NewCompiler(model schema.Model, logger *zap.Logger) *Compiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compiler{model: model, logger: logger}
}

// Compile translates a full canonical query into a Plan. The first failing
// clause aborts compilation; nothing is partially applied.
func (c *Compiler) Compile(canon *query.Canonical) (*Plan, error) {
	if canon == nil {
		return nil, fmt.Errorf("canonical query cannot be nil")
	}
	columns, err := c.CompileProjection(canon.Projection)
	if err != nil {
		return nil, err
	}
	where, err := c.CompileCriteria(canon.Criteria)
	if err != nil {
		return nil, err
	}
	orderBy, err := c.CompileSort(canon.Sort)
	if err != nil {
		return nil, err
	}
	groupBy, err := c.CompileGroup(canon.Group)
	if err != nil {
		return nil, err
	}
	relations, err := c.CompileJoin(canon.Join)
	if err != nil {
		return nil, err
	}
	selectables, err := c.CompileAggregate(canon.Aggregate)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("compiled query plan",
		zap.String("model", c.model.ModelName()),
		zap.Int("columns", len(columns)),
		zap.Int("sort_keys", len(orderBy)),
		zap.Int("selectables", len(selectables)),
		zap.Bool("filtered", where != nil))

	return &Plan{
		Model:       c.model.ModelName(),
		Columns:     columns,
		Relations:   relations,
		Where:       where,
		OrderBy:     orderBy,
		GroupBy:     groupBy,
		Selectables: selectables,
	}, nil
}

// CompileProjection emits load-only directives for a canonical projection.
// In include mode the listed columns are emitted in listed order; in exclude
// mode every other column is emitted in declaration order. The empty
// projection emits nothing, which backends treat as select-all.
func (c *Compiler) CompileProjection(p query.Projection) ([]ColumnLoad, error) {
	if len(p.Fields) == 0 {
		return nil, nil
	}
	listed := make(map[string]struct{}, len(p.Fields))
	for _, name := range p.Fields {
		if _, ok := c.model.Column(name); !ok {
			return nil, unknownField(query.ClauseProjection, name)
		}
		listed[name] = struct{}{}
	}
	if p.Mode == query.ProjectionInclude {
		loads := make([]ColumnLoad, 0, len(p.Fields))
		for _, name := range p.Fields {
			col, _ := c.model.Column(name)
			loads = append(loads, ColumnLoad{Column: col})
		}
		return loads, nil
	}
	var loads []ColumnLoad
	for _, col := range c.model.Columns() {
		if _, excluded := listed[col.Name()]; !excluded {
			loads = append(loads, ColumnLoad{Column: col})
		}
	}
	return loads, nil
}

// CompileSort emits sort keys for a canonical sort, preserving entry order.
func (c *Compiler) CompileSort(s query.Sort) ([]SortKey, error) {
	if len(s) == 0 {
		return nil, nil
	}
	keys := make([]SortKey, 0, len(s))
	for _, entry := range s {
		col, ok := c.model.Column(entry.Field)
		if !ok {
			return nil, unknownField(query.ClauseSort, entry.Field)
		}
		keys = append(keys, SortKey{Column: col, Direction: entry.Direction})
	}
	return keys, nil
}

// CompileGroup emits the grouping columns for a canonical group, preserving
// entry order. Directions are ignored.
func (c *Compiler) CompileGroup(g query.Group) ([]schema.Column, error) {
	if len(g) == 0 {
		return nil, nil
	}
	cols := make([]schema.Column, 0, len(g))
	for _, entry := range g {
		col, ok := c.model.Column(entry.Field)
		if !ok {
			return nil, unknownField(query.ClauseGroup, entry.Field)
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// CompileJoin validates the requested relation names and emits a lazy-load
// directive for every declared relation that was NOT requested. Requested
// relations are left to the backend's default eager loading.
func (c *Compiler) CompileJoin(j query.Join) ([]RelationLoad, error) {
	requested := make(map[string]struct{}, len(j))
	for _, name := range j {
		if _, ok := c.model.Relation(name); !ok {
			return nil, query.NewValidationError(query.ClauseJoin, query.ErrUnknownRelation, name,
				fmt.Sprintf("unknown relation %q", name))
		}
		requested[name] = struct{}{}
	}
	var loads []RelationLoad
	for _, rel := range c.model.Relations() {
		if _, ok := requested[rel.Name()]; !ok {
			loads = append(loads, RelationLoad{Relation: rel})
		}
	}
	return loads, nil
}

func unknownField(clause, name string) error {
	return query.NewValidationError(clause, query.ErrUnknownField, name,
		fmt.Sprintf("unknown column %q", name))
}
