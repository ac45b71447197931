package engine

import (
	"github.com/roach88/vcube/internal/ir"
	"github.com/roach88/vcube/internal/plan"
	"github.com/roach88/vcube/internal/restriction"
)

// Build creates the physical tree for op. The plan is validated first;
// BaseCube leaves fetch from source under r.
func Build(op plan.Operator, source Source, r restriction.Restriction) (Node, error) {
	if err := plan.Validate(op); err != nil {
		return nil, err
	}
	return build(op, source, r)
}

func build(op plan.Operator, source Source, r restriction.Restriction) (Node, error) {
	var children []Node
	for _, c := range plan.Children(op) {
		n, err := build(c, source, r)
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	t := transform{children: children}

	switch o := op.(type) {
	case *plan.BaseCube:
		if source == nil {
			return nil, ir.NewPlanningError(ir.ErrCodeSourceFailed, "no metadata source for %s", o)
		}
		return &baseCubeNode{op: o, source: source, restriction: r}, nil
	case *plan.Projection:
		return &projectionNode{transform: t, op: o}, nil
	case *plan.Slice:
		return &sliceNode{transform: t, op: o}, nil
	case *plan.Dice:
		f, err := o.Filter()
		if err != nil {
			return nil, err
		}
		return &diceNode{transform: t, op: o, filter: f}, nil
	case *plan.Rollup:
		pairs, err := o.Pairs()
		if err != nil {
			return nil, err
		}
		return &rollupNode{transform: t, op: o, pairs: pairs}, nil
	case *plan.ConvertCube:
		return &convertNode{transform: t, op: o}, nil
	case *plan.DrillAcross:
		return &drillAcrossNode{transform: t, op: o}, nil
	default:
		return nil, ir.NewPlanningError(ir.ErrCodeInvalidOperator, "unknown operator %T", op)
	}
}

// Nodes lists the tree rooted at root in pre-order.
func Nodes(root Node) []Node {
	out := []Node{root}
	for _, c := range root.Children() {
		out = append(out, Nodes(c)...)
	}
	return out
}

// Filters returns the dice filters of the tree rooted at root, in
// pre-order.
func Filters(root Node) []plan.Filter {
	var out []plan.Filter
	for _, n := range Nodes(root) {
		if d, ok := n.(*diceNode); ok {
			out = append(out, d.Filter())
		}
	}
	return out
}
