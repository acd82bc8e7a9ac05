package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/asaidimu/go-events"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/asaidimu/go-tafsiri/core/plan"
	"github.com/asaidimu/go-tafsiri/core/query"
	"github.com/asaidimu/go-tafsiri/core/schema"
)

// PlanEventCallback handles a plan event delivered through a subscription.
type PlanEventCallback func(ctx context.Context, event PlanEvent) error

// SubscriptionInfo records a registered event subscription and how to undo it.
type SubscriptionInfo struct {
	ID          string
	Event       PlanEventType
	Unsubscribe func()
}

// Planner translates document-style queries against one model into typed
// query plans. Compilation itself is a pure function of the query and the
// model view; the planner adds plan identifiers, logging, and compile events
// around it. A Planner is safe for concurrent use as long as the model view
// is immutable.
type Planner struct {
	model         schema.Model
	compiler      *plan.Compiler
	bus           *events.TypedEventBus[PlanEvent]
	logger        *zap.Logger
	subscriptions map[string]*SubscriptionInfo
	subMu         sync.RWMutex
}

// PlannerOption configures a Planner.
type PlannerOption func(*Planner)

// WithLogger sets the planner's logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) PlannerOption {
	return func(p *Planner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPlanner creates a planner for the given model and initializes its event
// bus.
func NewPlanner(model schema.Model, opts ...PlannerOption) (*Planner, error) {
	if model == nil {
		return nil, fmt.Errorf("model cannot be nil")
	}
	bus, err := events.NewTypedEventBus[PlanEvent](events.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("could not initialize event bus: %w", err)
	}
	p := &Planner{
		model:         model,
		bus:           bus,
		logger:        zap.NewNop(),
		subscriptions: make(map[string]*SubscriptionInfo),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.compiler = plan.NewCompiler(model, p.logger)
	return p, nil
}

// Model returns the model view the planner compiles against.
func (p *Planner) Model() schema.Model { return p.model }

// Compiler returns the underlying clause compiler, for callers that already
// hold canonical forms.
func (p *Planner) Compiler() *plan.Compiler { return p.compiler }

// Compile parses and compiles a query into a plan. Each compilation gets a
// fresh plan identifier, and start, success, and failure events are published
// on the planner's bus.
func (p *Planner) Compile(q *query.Query) (*plan.Plan, error) {
	if q == nil {
		return nil, fmt.Errorf("query cannot be nil")
	}

	planID := uuid.New().String()
	start := time.Now()
	p.emitEvent(createEvent(PlanCompileStart, planID, p.model.ModelName(), nil, start))

	canonical, err := q.Parse()
	var compiled *plan.Plan
	if err == nil {
		compiled, err = p.compiler.Compile(canonical)
	}
	if err != nil {
		errStr := err.Error()
		p.emitEvent(createEvent(PlanCompileFailed, planID, p.model.ModelName(), &errStr, start))
		p.logger.Debug("plan compilation failed",
			zap.String("plan_id", planID),
			zap.String("model", p.model.ModelName()),
			zap.Error(err))
		return nil, err
	}

	compiled.ID = planID
	p.emitEvent(createEvent(PlanCompileSuccess, planID, p.model.ModelName(), nil, start))
	p.logger.Debug("compiled plan",
		zap.String("plan_id", planID),
		zap.String("model", p.model.ModelName()),
		zap.Duration("elapsed", time.Since(start)))
	return compiled, nil
}

func (p *Planner) emitEvent(event PlanEvent) {
	if p.bus != nil {
		p.bus.Emit(string(event.Type), event)
	}
}

// RegisterSubscription subscribes a callback to one plan event type and
// returns a subscription id for later removal.
func (p *Planner) RegisterSubscription(eventType PlanEventType, callback PlanEventCallback) string {
	p.subMu.Lock()
	defer p.subMu.Unlock()

	unsubscribe := p.bus.Subscribe(string(eventType),
		func(ctx context.Context, payload PlanEvent) error {
			return callback(ctx, payload)
		})

	id := uuid.New().String()
	p.subscriptions[id] = &SubscriptionInfo{
		ID:          id,
		Event:       eventType,
		Unsubscribe: unsubscribe,
	}
	return id
}

// UnregisterSubscription removes a subscription by its id.
func (p *Planner) UnregisterSubscription(id string) {
	p.subMu.Lock()
	defer p.subMu.Unlock()

	if info, ok := p.subscriptions[id]; ok {
		info.Unsubscribe()
		delete(p.subscriptions, id)
	}
}
