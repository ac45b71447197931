package engine

import (
	"context"
	"log/slog"

	"github.com/roach88/vcube/internal/ir"
)

// Evaluate runs the physical tree rooted at root: every node is
// initialised in pre-order, the root bundle is produced, and every node is
// closed on the way out.
//
// The first failure aborts the evaluation. Close is attempted on every node
// even when an earlier Close fails; close failures are attached to the
// primary error as teardown errors and never replace it. If only teardown
// fails, the result is a TEARDOWN_FAILED PlanningError and no bundle.
func Evaluate(ctx context.Context, root Node) (bundle *ir.Bundle, err error) {
	nodes := Nodes(root)

	defer func() {
		var teardown []error
		for _, n := range nodes {
			if cerr := n.Close(); cerr != nil {
				slog.Warn("closing operator failed", "op", n.Operator().String(), "error", cerr)
				teardown = append(teardown, cerr)
			}
		}
		err = ir.WithTeardown(err, teardown...)
		if err != nil {
			bundle = nil
		}
	}()

	for _, n := range nodes {
		if cerr := ctx.Err(); cerr != nil {
			return nil, ir.WrapPlanningError(ir.ErrCodeCancelled, "evaluation stopped", cerr)
		}
		if ierr := n.Init(ctx); ierr != nil {
			return nil, asPlanningError(ierr, ir.ErrCodeSourceFailed)
		}
	}

	b, perr := root.Produce(ctx)
	if perr != nil {
		return nil, asPlanningError(perr, ir.ErrCodeSourceFailed)
	}
	return b, nil
}

func asPlanningError(err error, code ir.PlanningErrorCode) error {
	if ir.IsPlanningError(err) {
		return err
	}
	return ir.WrapPlanningError(code, "", err)
}
