// Package render produces diagnostic views of logical plans: a tagged
// markup fold and a Graphviz graph. Both are for display and debugging and
// are not meant to be parsed back.
package render

import (
	"strings"

	"github.com/roach88/vcube/internal/ir"
	"github.com/roach88/vcube/internal/plan"
)

// Tag returns the markup element name for op. Dice is shown as a
// construct element.
func Tag(op plan.Operator) string {
	switch op.(type) {
	case *plan.BaseCube:
		return "basecube"
	case *plan.Projection:
		return "projection"
	case *plan.Slice:
		return "slice"
	case *plan.Dice:
		return "construct"
	case *plan.Rollup:
		return "rollup"
	case *plan.ConvertCube:
		return "convertcube"
	case *plan.DrillAcross:
		return "drillacross"
	default:
		return "unknown"
	}
}

// Markup folds the plan into one element per visited node. Each element
// wraps the node's rendering followed by its children's elements, in the
// order a traversal in mode visits them.
func Markup(op plan.Operator, mode plan.Mode) (string, error) {
	if err := plan.Validate(op); err != nil {
		return "", err
	}
	if !mode.Valid() {
		return "", ir.NewPlanningError(ir.ErrCodeUnsupportedMode, "traversal mode %s is not supported", mode)
	}
	return markup(op, mode, 0), nil
}

func markup(op plan.Operator, mode plan.Mode, depth int) string {
	indent := strings.Repeat("  ", depth)
	tag := Tag(op)

	var b strings.Builder
	b.WriteString(indent + "<" + tag + ">\n")
	b.WriteString(indent + "  " + op.String() + "\n")
	if plan.Descends(op, mode) {
		for _, child := range plan.Children(op) {
			b.WriteString(markup(child, mode, depth+1))
		}
	}
	b.WriteString(indent + "</" + tag + ">\n")
	return b.String()
}
