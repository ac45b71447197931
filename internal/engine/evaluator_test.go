package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vcube/internal/ir"
	"github.com/roach88/vcube/internal/plan"
	"github.com/roach88/vcube/internal/restriction"
)

func TestEvaluator(t *testing.T) {
	ev := NewEvaluator(sampleSource(t),
		WithIDGenerator(NewFixedGenerator("eval-1", "eval-2")),
		WithLogger(DiscardLogger()),
	)

	res, err := ev.Evaluate(context.Background(), salesPlan(), restriction.Restriction{})
	require.NoError(t, err)
	assert.Equal(t, "eval-1", res.ID)
	assert.Equal(t, salesPlan().String(), res.Plan)
	assert.Equal(t, 1, res.Bundle.Measures.Len())
	assert.Empty(t, res.Filters)

	_, err = ev.Evaluate(context.Background(), plan.NewDrillAcross(plan.NewBaseCube(ir.IRI("ex:Sales")), nil), restriction.Restriction{})
	assert.True(t, ir.HasCode(err, ir.ErrCodeInvalidOperator))
}
