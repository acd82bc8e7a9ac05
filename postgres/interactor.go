package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/asaidimu/go-tafsiri/core/plan"
	"github.com/asaidimu/go-tafsiri/core/schema"
)

// Interactor executes rendered plans against a Postgres connection pool and
// decodes result rows into documents.
type Interactor struct {
	pool     *pgxpool.Pool
	renderer *Renderer
	logger   *zap.Logger
}

// NewInteractor creates an interactor over the given pool. A nil logger
// defaults to a no-op logger.
func NewInteractor(pool *pgxpool.Pool, logger *zap.Logger) *Interactor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interactor{
		pool:     pool,
		renderer: NewRenderer(),
		logger:   logger,
	}
}

// Renderer returns the interactor's plan renderer.
func (i *Interactor) Renderer() *Renderer { return i.renderer }

// Select renders and executes a plan, returning the result rows as documents.
// The plan's relation loading directives are not acted on here; callers that
// load relations consult plan.Relations themselves.
func (i *Interactor) Select(ctx context.Context, p *plan.Plan) ([]schema.Document, error) {
	sql, args, err := i.renderer.RenderSelect(p)
	if err != nil {
		return nil, err
	}

	i.logger.Debug("executing plan",
		zap.String("plan_id", p.ID),
		zap.String("model", p.Model),
		zap.String("sql", sql))

	rows, err := i.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var results []schema.Document
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		doc := make(schema.Document, len(values))
		for idx, field := range fields {
			doc[field.Name] = values[idx]
		}
		results = append(results, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}
	return results, nil
}
