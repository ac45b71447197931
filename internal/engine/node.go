package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/vcube/internal/ir"
	"github.com/roach88/vcube/internal/plan"
	"github.com/roach88/vcube/internal/restriction"
)

// Node is a physical operator. The physical tree mirrors the logical plan
// one node per operator.
//
// Lifecycle: Init acquires resources (only BaseCube leaves hold any),
// Produce derives the node's bundle from its children, Close releases
// resources. Close is idempotent and is called on every node on teardown,
// whether or not Init ran or succeeded.
type Node interface {
	Init(ctx context.Context) error
	Produce(ctx context.Context) (*ir.Bundle, error)
	Close() error

	// Operator returns the logical operator this node implements.
	Operator() plan.Operator

	// Children returns the child nodes, first input first.
	Children() []Node
}

// transform is embedded by the pure-transform nodes.
type transform struct {
	children []Node
}

func (transform) Init(context.Context) error { return nil }
func (transform) Close() error               { return nil }
func (t transform) Children() []Node         { return t.children }

// produceChild produces child i, refusing to start once ctx is done.
func (t transform) produceChild(ctx context.Context, i int) (*ir.Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, ir.WrapPlanningError(ir.ErrCodeCancelled, "evaluation stopped", err)
	}
	return t.children[i].Produce(ctx)
}

// baseCubeNode fetches one cube through a Session.
type baseCubeNode struct {
	op          *plan.BaseCube
	source      Source
	restriction restriction.Restriction
	session     Session
}

func (n *baseCubeNode) Operator() plan.Operator { return n.op }
func (n *baseCubeNode) Children() []Node        { return nil }

func (n *baseCubeNode) Init(ctx context.Context) error {
	if n.session != nil {
		return nil
	}
	s, err := n.source.Open(ctx)
	if err != nil {
		return ir.WrapPlanningError(ir.ErrCodeSourceFailed, "open session for "+n.op.Cube.Value(), err)
	}
	n.session = s
	return nil
}

func (n *baseCubeNode) Produce(ctx context.Context) (*ir.Bundle, error) {
	if n.session == nil {
		return nil, ir.NewPlanningError(ir.ErrCodeInvalidOperator, "%s produced before init", n.op)
	}
	if err := ctx.Err(); err != nil {
		return nil, ir.WrapPlanningError(ir.ErrCodeCancelled, "evaluation stopped", err)
	}
	if c := n.restriction.Cube; !c.IsZero() && c != n.op.Cube {
		return ir.EmptyBundle(), nil
	}

	// Tree operations navigate from the member, so the member filter is
	// applied after the fetch.
	fetch := n.restriction.WithCube(n.op.Cube)
	if len(fetch.TreeOps) > 0 {
		fetch.Member = ir.Term{}
	}

	b, err := n.session.Fetch(ctx, n.op.Cube, fetch)
	if err != nil {
		if ir.IsPlanningError(err) {
			return nil, err
		}
		return nil, ir.WrapPlanningError(ir.ErrCodeSourceFailed, "fetch "+n.op.Cube.Value(), err)
	}
	if err := b.Validate(); err != nil {
		return derived(n.op)(nil, err)
	}

	members, err := restriction.ApplyTreeOps(b.Members, n.restriction)
	if err != nil {
		return derived(n.op)(nil, err)
	}
	b = b.With(ir.KindMembers, members)

	slog.Debug("fetched base cube",
		"cube", n.op.Cube.Value(),
		"measures", b.Measures.Len(),
		"dimensions", b.Dimensions.Len(),
		"members", b.Members.Len(),
	)
	return b, nil
}

func (n *baseCubeNode) Close() error {
	if n.session == nil {
		return nil
	}
	s := n.session
	n.session = nil
	return s.Close()
}

type projectionNode struct {
	transform
	op *plan.Projection
}

func (n *projectionNode) Operator() plan.Operator { return n.op }

func (n *projectionNode) Produce(ctx context.Context) (*ir.Bundle, error) {
	in, err := n.produceChild(ctx, 0)
	if err != nil {
		return nil, err
	}
	return derived(n.op)(DeriveProjection(in, n.op.Measures))
}

type sliceNode struct {
	transform
	op *plan.Slice
}

func (n *sliceNode) Operator() plan.Operator { return n.op }

func (n *sliceNode) Produce(ctx context.Context) (*ir.Bundle, error) {
	in, err := n.produceChild(ctx, 0)
	if err != nil {
		return nil, err
	}
	return derived(n.op)(DeriveSlice(in, n.op.Dimensions))
}

// diceNode passes its input through and carries the member filter for the
// data-retrieval layer.
type diceNode struct {
	transform
	op     *plan.Dice
	filter plan.Filter
}

func (n *diceNode) Operator() plan.Operator { return n.op }

// Filter returns the disjunctive member filter of the dice.
func (n *diceNode) Filter() plan.Filter { return n.filter }

func (n *diceNode) Produce(ctx context.Context) (*ir.Bundle, error) {
	in, err := n.produceChild(ctx, 0)
	if err != nil {
		return nil, err
	}
	return in.With(ir.KindMembers, in.Members), nil
}

type rollupNode struct {
	transform
	op    *plan.Rollup
	pairs []plan.LevelPair
}

func (n *rollupNode) Operator() plan.Operator { return n.op }

func (n *rollupNode) Produce(ctx context.Context) (*ir.Bundle, error) {
	in, err := n.produceChild(ctx, 0)
	if err != nil {
		return nil, err
	}
	return derived(n.op)(DeriveRollup(in, n.pairs))
}

type convertNode struct {
	transform
	op *plan.ConvertCube
}

func (n *convertNode) Operator() plan.Operator { return n.op }

func (n *convertNode) Produce(ctx context.Context) (*ir.Bundle, error) {
	a, err := n.produceChild(ctx, 0)
	if err != nil {
		return nil, err
	}
	if !n.op.IsMerge() {
		return derived(n.op)(DeriveConvert(a, n.op.Correspondence, n.op.Domain))
	}
	b, err := n.produceChild(ctx, 1)
	if err != nil {
		return nil, err
	}
	return derived(n.op)(DeriveMerge(a, b, n.op.Correspondence, n.op.Domain))
}

type drillAcrossNode struct {
	transform
	op *plan.DrillAcross
}

func (n *drillAcrossNode) Operator() plan.Operator { return n.op }

func (n *drillAcrossNode) Produce(ctx context.Context) (*ir.Bundle, error) {
	a, err := n.produceChild(ctx, 0)
	if err != nil {
		return nil, err
	}
	b, err := n.produceChild(ctx, 1)
	if err != nil {
		return nil, err
	}
	return derived(n.op)(DeriveDrillAcross(a, b))
}

// derived records op on a PlanningError raised while deriving its bundle.
// Errors that already name an operator keep it.
func derived(op plan.Operator) func(*ir.Bundle, error) (*ir.Bundle, error) {
	return func(b *ir.Bundle, err error) (*ir.Bundle, error) {
		if err == nil {
			return b, nil
		}
		var pe *ir.PlanningError
		if errors.As(err, &pe) && pe.Op == "" {
			pe.Op = op.String()
		}
		return nil, err
	}
}
