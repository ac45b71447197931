package plan

import (
	"fmt"

	"github.com/roach88/vcube/internal/ir"
)

// MaxDepth bounds the depth of plans the traversal accepts.
const MaxDepth = 64

// Mode selects how a traversal treats nodes whose bundle is already folded.
type Mode int

const (
	// ModeStructural visits every node of the tree.
	ModeStructural Mode = iota

	// ModeDerived stops descent at Slice and DrillAcross.
	ModeDerived
)

func (m Mode) String() string {
	switch m {
	case ModeStructural:
		return "structural"
	case ModeDerived:
		return "derived"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "structural" or "derived".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "structural":
		return ModeStructural, nil
	case "derived":
		return ModeDerived, nil
	default:
		return 0, ir.NewPlanningError(ir.ErrCodeUnsupportedMode, "unknown traversal mode %q", s)
	}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeStructural || m == ModeDerived
}

// Descends reports whether a traversal in mode continues below op.
func Descends(op Operator, mode Mode) bool {
	if mode != ModeDerived {
		return true
	}
	switch op.(type) {
	case *Slice, *DrillAcross:
		return false
	default:
		return true
	}
}

// Visitor has one callback per operator variant. A callback returning an
// error aborts the traversal.
type Visitor interface {
	VisitBaseCube(*BaseCube) error
	VisitProjection(*Projection) error
	VisitSlice(*Slice) error
	VisitDice(*Dice) error
	VisitRollup(*Rollup) error
	VisitConvertCube(*ConvertCube) error
	VisitDrillAcross(*DrillAcross) error
}

// Accept drives v over the plan rooted at op: the node's own callback first,
// then its children left to right unless Descends reports otherwise.
//
// Traversal is depth-first and pre-order. The first error aborts it.
func Accept(op Operator, v Visitor, mode Mode) error {
	if !mode.Valid() {
		return ir.NewPlanningError(ir.ErrCodeUnsupportedMode, "traversal mode %s is not supported", mode)
	}
	return accept(op, v, mode, 1)
}

func accept(op Operator, v Visitor, mode Mode, depth int) error {
	if isNil(op) {
		return ir.NewPlanningError(ir.ErrCodeInvalidOperator, "nil operator")
	}
	if depth > MaxDepth {
		return ir.NewPlanningError(ir.ErrCodeDepthExceeded, "plan deeper than %d", MaxDepth)
	}

	var err error
	switch o := op.(type) {
	case *BaseCube:
		err = v.VisitBaseCube(o)
	case *Projection:
		err = v.VisitProjection(o)
	case *Slice:
		err = v.VisitSlice(o)
	case *Dice:
		err = v.VisitDice(o)
	case *Rollup:
		err = v.VisitRollup(o)
	case *ConvertCube:
		err = v.VisitConvertCube(o)
	case *DrillAcross:
		err = v.VisitDrillAcross(o)
	default:
		return ir.NewPlanningError(ir.ErrCodeInvalidOperator, "unknown operator %T", op)
	}
	if err != nil {
		return err
	}

	if !Descends(op, mode) {
		return nil
	}
	for _, child := range Children(op) {
		if err := accept(child, v, mode, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Walk calls fn for every operator Accept would visit.
func Walk(op Operator, mode Mode, fn func(Operator) error) error {
	return Accept(op, funcVisitor(fn), mode)
}

type funcVisitor func(Operator) error

func (f funcVisitor) VisitBaseCube(o *BaseCube) error       { return f(o) }
func (f funcVisitor) VisitProjection(o *Projection) error   { return f(o) }
func (f funcVisitor) VisitSlice(o *Slice) error             { return f(o) }
func (f funcVisitor) VisitDice(o *Dice) error               { return f(o) }
func (f funcVisitor) VisitRollup(o *Rollup) error           { return f(o) }
func (f funcVisitor) VisitConvertCube(o *ConvertCube) error { return f(o) }
func (f funcVisitor) VisitDrillAcross(o *DrillAcross) error { return f(o) }

// Collector is a Visitor that records the operators it visits.
type Collector struct {
	ops []Operator
}

func (c *Collector) VisitBaseCube(o *BaseCube) error       { return c.add(o) }
func (c *Collector) VisitProjection(o *Projection) error   { return c.add(o) }
func (c *Collector) VisitSlice(o *Slice) error             { return c.add(o) }
func (c *Collector) VisitDice(o *Dice) error               { return c.add(o) }
func (c *Collector) VisitRollup(o *Rollup) error           { return c.add(o) }
func (c *Collector) VisitConvertCube(o *ConvertCube) error { return c.add(o) }
func (c *Collector) VisitDrillAcross(o *DrillAcross) error { return c.add(o) }

func (c *Collector) add(op Operator) error {
	c.ops = append(c.ops, op)
	return nil
}

// Operators returns the visited operators in visit order.
func (c *Collector) Operators() []Operator {
	out := make([]Operator, len(c.ops))
	copy(out, c.ops)
	return out
}

// BaseCubes lists the cubes at the leaves of op, left to right.
func BaseCubes(op Operator) ([]ir.Term, error) {
	var cubes []ir.Term
	err := Walk(op, ModeStructural, func(o Operator) error {
		if b, ok := o.(*BaseCube); ok {
			cubes = append(cubes, b.Cube)
		}
		return nil
	})
	return cubes, err
}

// Depth returns the height of the tree rooted at op. A nil plan has depth 0.
func Depth(op Operator) int {
	if isNil(op) {
		return 0
	}
	deepest := 0
	for _, c := range Children(op) {
		if d := Depth(c); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}
