// Package engine turns a structured mutation plan into a validated
// change-set plus a before-snapshot, without executing anything.
//
// A resolution pass is a pure, synchronous computation over the plan and
// the current store state: forms are processed first, then fields, then
// options, then logic, so placeholders minted by earlier stages ground
// forward references in later ones. A pass ends in exactly one of four
// ways: a change-set, a clarification, a structural error, or a row-limit
// error. Nothing is retried internally and partial change-sets are never
// returned.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/formsmith/internal/changeset"
	"github.com/roach88/formsmith/internal/intent"
	"github.com/roach88/formsmith/internal/resolve"
	"github.com/roach88/formsmith/internal/schema"
	"github.com/roach88/formsmith/internal/store"
)

// DefaultMaxChangedRows caps the total insert+update+delete rows of one
// pass. Requests above the cap fail with RowLimitError rather than
// producing an unreviewably large change-set.
const DefaultMaxChangedRows = 100

// Engine resolves plans against one store and schema catalog. Safe for
// concurrent use: a pass mutates no shared state, and the catalog is
// immutable after construction.
type Engine struct {
	store    *store.Store
	catalog  *schema.Catalog
	strategy resolve.Strategy
	mint     changeset.Minter
	maxRows  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxChangedRows overrides the row ceiling.
func WithMaxChangedRows(n int) Option {
	return func(e *Engine) { e.maxRows = n }
}

// WithMinter substitutes the placeholder minter. Tests use
// changeset.SequentialMinter for stable output.
func WithMinter(m changeset.Minter) Option {
	return func(e *Engine) { e.mint = m }
}

// WithStrategy substitutes the fuzzy matching strategy.
func WithStrategy(s resolve.Strategy) Option {
	return func(e *Engine) { e.strategy = s }
}

// New builds an engine over a store and its schema catalog.
func New(s *store.Store, catalog *schema.Catalog, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		catalog:  catalog,
		strategy: resolve.DefaultStrategy(),
		mint:     changeset.UUIDMinter,
		maxRows:  DefaultMaxChangedRows,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Resolve runs one resolution pass over a plan.
//
// Ambiguity and grounding failures come back as a clarification Result,
// not an error. Structural failures (StructureError) and oversized plans
// (RowLimitError) come back as errors; the caller decides how to surface
// them. The plan is consumed exactly once and never mutated.
func (e *Engine) Resolve(ctx context.Context, plan *intent.Plan) (*Result, error) {
	if plan.NeedsClarification {
		question := plan.Question
		if question == "" {
			question = "Could you describe the change you want in more detail?"
		}
		return &Result{Type: ResultClarification, Question: question, Reason: ReasonPlannerRequest}, nil
	}

	p := newPass(e)
	if err := p.run(ctx, plan); err != nil {
		if ce, ok := AsClarification(err); ok {
			slog.Debug("resolution escalated to clarification",
				"reason", ce.Reason,
				"question", ce.Question,
			)
			return clarificationResult(ce), nil
		}
		return nil, err
	}

	formIDs := p.formIDs()
	snapshots, err := e.store.Snapshots(ctx, formIDs)
	if err != nil {
		return nil, fmt.Errorf("build before snapshot: %w", err)
	}

	validator := changeset.NewValidator(e.catalog, e.store)
	if err := validator.Validate(ctx, p.cs); err != nil {
		return nil, err
	}

	slog.Info("change-set assembled",
		"rows", p.cs.RowCount(),
		"tables", p.cs.Tables(),
		"forms", formIDs,
	)

	return &Result{
		Type:           ResultChangeSet,
		ChangeSet:      p.cs,
		BeforeSnapshot: snapshots,
	}, nil
}
