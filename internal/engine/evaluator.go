package engine

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/vcube/internal/ir"
	"github.com/roach88/vcube/internal/plan"
	"github.com/roach88/vcube/internal/restriction"
)

// Evaluator derives the metadata bundle of logical plans against one
// metadata source.
type Evaluator struct {
	source Source
	ids    IDGenerator
	logger *slog.Logger
}

// EvaluatorOption allows configuration of an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithIDGenerator sets the evaluation id generator.
//
// Default: UUIDv7Generator. Tests use NewFixedGenerator for stable ids.
func WithIDGenerator(g IDGenerator) EvaluatorOption {
	return func(e *Evaluator) {
		e.ids = g
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) EvaluatorOption {
	return func(e *Evaluator) {
		e.logger = l
	}
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewEvaluator creates an Evaluator reading base cubes from source.
func NewEvaluator(source Source, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		source: source,
		ids:    UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the outcome of one evaluation.
type Result struct {
	// ID correlates the evaluation's log records.
	ID string

	// Plan is the rendering of the evaluated plan.
	Plan string

	// Bundle is the metadata visible at the plan's root.
	Bundle *ir.Bundle

	// Filters are the dice filters carried by the plan, in pre-order.
	Filters []plan.Filter
}

// Evaluate builds the physical tree for op and derives its bundle under r.
func (e *Evaluator) Evaluate(ctx context.Context, op plan.Operator, r restriction.Restriction) (*Result, error) {
	id := e.ids.Generate()
	log := e.logger.With("evaluation", id)

	root, err := Build(op, e.source, r)
	if err != nil {
		log.Error("plan rejected", "error", err)
		return nil, err
	}

	start := time.Now()
	log.Debug("evaluating plan", "plan", op.String(), "nodes", len(Nodes(root)))

	bundle, err := Evaluate(ctx, root)
	if err != nil {
		log.Error("evaluation failed", "plan", op.String(), "error", err)
		return nil, err
	}

	log.Info("plan evaluated",
		"plan", op.String(),
		"cubes", bundle.Cubes.Len(),
		"measures", bundle.Measures.Len(),
		"dimensions", bundle.Dimensions.Len(),
		"members", bundle.Members.Len(),
		"elapsed", time.Since(start),
	)

	return &Result{
		ID:      id,
		Plan:    op.String(),
		Bundle:  bundle,
		Filters: Filters(root),
	}, nil
}
