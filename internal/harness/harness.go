package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/vcube/internal/compiler"
	"github.com/roach88/vcube/internal/engine"
	"github.com/roach88/vcube/internal/ir"
	"github.com/roach88/vcube/internal/plan"
	"github.com/roach88/vcube/internal/restriction"
	"github.com/roach88/vcube/internal/store"
	"github.com/roach88/vcube/internal/testutil"
)

// Harness is the test execution engine.
// It evaluates plans against a private store with a fixed evaluation id.
type Harness struct {
	store     *store.Store
	evaluator *engine.Evaluator
	logger    *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database and import the fixture
// 2. Load and compile the plan document
// 3. Build the restriction and evaluate the named plan
// 4. Evaluate assertions and return the result
//
// A planning error during evaluation is an outcome, recorded in the
// result; any other failure (bad fixture, bad plans) is returned.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	// Create fresh in-memory SQLite database
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	h := &Harness{
		store: st,
		evaluator: engine.NewEvaluator(st,
			engine.WithIDGenerator(testutil.NewFixedIDGenerator(scenario.EvaluationID)),
			engine.WithLogger(logger),
		),
		logger: logger,
	}

	result := NewResult()

	cubes, err := h.store.ImportFile(ctx, scenario.Fixture)
	if err != nil {
		return nil, fmt.Errorf("failed to import fixture: %w", err)
	}
	for _, c := range cubes {
		result.Imported = append(result.Imported, c.Value())
	}

	doc, err := compiler.LoadDocument(scenario.Plans, scenario.Prefixes)
	if err != nil {
		return nil, fmt.Errorf("failed to load plans: %w", err)
	}

	op, ok := doc.Plan(scenario.Plan)
	if !ok {
		return nil, fmt.Errorf("plan %q not found (have %v)", scenario.Plan, doc.PlanNames)
	}
	result.Plan = op.String()

	mode := plan.ModeDerived
	if scenario.Mode != "" {
		if mode, err = plan.ParseMode(scenario.Mode); err != nil {
			return nil, err
		}
	}

	if err := h.evaluate(ctx, op, scenario.Restrict, doc.Resolver, result); err != nil {
		return nil, err
	}

	actx := &AssertionContext{
		Op:       op,
		Mode:     mode,
		Resolver: doc.Resolver,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// evaluate runs the plan under the scenario restriction. Planning errors
// are recorded on result.
func (h *Harness) evaluate(ctx context.Context, op plan.Operator, restrict []string, resolver restriction.NameResolver, result *Result) error {
	res, err := h.run(ctx, op, restrict, resolver)
	if err == nil {
		result.Bundle = res.Bundle
		h.logger.Info("scenario evaluated", "evaluation", res.ID, "plan", res.Plan)
		return nil
	}

	var pe *ir.PlanningError
	if !errors.As(err, &pe) {
		return fmt.Errorf("failed to evaluate plan: %w", err)
	}
	result.ErrorCode = string(pe.Code)
	result.ErrorMessage = pe.Error()
	h.logger.Info("scenario failed to plan", "code", pe.Code, "error", err)
	return nil
}

func (h *Harness) run(ctx context.Context, op plan.Operator, restrict []string, resolver restriction.NameResolver) (*engine.Result, error) {
	kv, err := restriction.Assignments(restrict)
	if err != nil {
		return nil, err
	}
	r, err := restriction.Build(kv, resolver)
	if err != nil {
		return nil, err
	}
	return h.evaluator.Evaluate(ctx, op, r)
}
