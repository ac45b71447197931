package plan

import (
	"errors"

	"github.com/roach88/vcube/internal/ir"
)

// Validate checks op and every node below it and returns the first failure
// as a PlanningError. The failing operator's rendering is recorded in the
// error's Op field.
//
// Validate is a pure function with no side effects.
func Validate(op Operator) error {
	return validate(op, 1)
}

func validate(op Operator, depth int) error {
	if isNil(op) {
		return ir.NewPlanningError(ir.ErrCodeInvalidOperator, "nil operator")
	}
	if depth > MaxDepth {
		return ir.NewPlanningError(ir.ErrCodeDepthExceeded, "plan deeper than %d", MaxDepth)
	}
	if err := validateNode(op); err != nil {
		return withOp(err, op)
	}
	for _, child := range Children(op) {
		if err := validate(child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func validateNode(op Operator) error {
	switch o := op.(type) {
	case *BaseCube:
		if o.Cube.IsZero() {
			return ir.NewPlanningError(ir.ErrCodeInvalidOperator, "base cube has no cube")
		}
		return nil

	case *Projection:
		if isNil(o.Input) {
			return ir.NewPlanningError(ir.ErrCodeInvalidOperator, "projection has no input")
		}
		return requireKey(o.Measures, ir.FieldMeasureUnique)

	case *Slice:
		if isNil(o.Input) {
			return ir.NewPlanningError(ir.ErrCodeInvalidOperator, "slice has no input")
		}
		return requireKey(o.Dimensions, ir.FieldDimensionUnique)

	case *Dice:
		if isNil(o.Input) {
			return ir.NewPlanningError(ir.ErrCodeInvalidOperator, "dice has no input")
		}
		_, err := o.Filter()
		return err

	case *Rollup:
		if isNil(o.Input) {
			return ir.NewPlanningError(ir.ErrCodeInvalidOperator, "rollup has no input")
		}
		_, err := o.Pairs()
		return err

	case *ConvertCube:
		return validateConvert(o)

	case *DrillAcross:
		if isNil(o.Input1) || isNil(o.Input2) {
			return ir.NewPlanningError(ir.ErrCodeInvalidOperator, "drill-across needs two inputs")
		}
		return nil

	default:
		return ir.NewPlanningError(ir.ErrCodeInvalidOperator, "unknown operator %T", op)
	}
}

func validateConvert(c *ConvertCube) error {
	if isNil(c.Input1) {
		return ir.NewPlanningError(ir.ErrCodeInvalidOperator, "convert has no input")
	}
	if c.Correspondence == nil {
		return ir.NewPlanningError(ir.ErrCodeMissingCorrespondence, "no correspondence given")
	}
	if c.Domain.IsZero() {
		return ir.NewPlanningError(ir.ErrCodeInvalidOperator, "no domain given")
	}
	if c.IsMerge() != c.Correspondence.IsMerge() {
		return ir.NewPlanningError(ir.ErrCodeInvalidPairing,
			"correspondence %s maps %d inputs, operator has %d",
			c.Correspondence.Name(), inputCount(c.Correspondence.IsMerge()), inputCount(c.IsMerge()))
	}
	if !c.Correspondence.Outputs().Has(ir.FieldMemberUnique) {
		return ir.NewPlanningError(ir.ErrCodeMissingField,
			"correspondence %s outputs have no %s", c.Correspondence.Name(), ir.FieldMemberUnique)
	}
	return nil
}

func inputCount(merge bool) int {
	if merge {
		return 2
	}
	return 1
}

// requireKey accepts a relation that carries field, or the zero relation,
// which stands for an empty operand.
func requireKey(r ir.Relation, field string) error {
	if len(r.Header()) == 0 || r.Has(field) {
		return nil
	}
	return ir.NewPlanningError(ir.ErrCodeMissingField, "operand %v has no field %s", r.Header(), field)
}

func withOp(err error, op Operator) error {
	var pe *ir.PlanningError
	if errors.As(err, &pe) && pe.Op == "" {
		pe.Op = op.String()
	}
	return err
}
