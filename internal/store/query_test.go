package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vcube/internal/engine"
	"github.com/roach88/vcube/internal/ir"
	"github.com/roach88/vcube/internal/plan"
	"github.com/roach88/vcube/internal/querysql"
	"github.com/roach88/vcube/internal/restriction"
	"github.com/roach88/vcube/internal/testutil"
)

func TestCompiledSelect_RunsAgainstSQLite(t *testing.T) {
	s := createSampleStore(t)
	ctx := context.Background()
	compiler := querysql.NewSQLCompiler()

	r := restriction.Restriction{Cube: ir.IRI("ex:Sales")}
	for _, k := range ir.Kinds {
		t.Run(k.String(), func(t *testing.T) {
			for _, q := range []querysql.Select{{Kind: k}, querysql.ForRestriction(k, r)} {
				query, params, err := compiler.Compile(q)
				require.NoError(t, err)

				rows, err := s.DB().QueryContext(ctx, query, params...)
				require.NoError(t, err, query)
				n := 0
				for rows.Next() {
					n++
				}
				require.NoError(t, rows.Err())
				require.NoError(t, rows.Close())

				want := testutil.SampleBundle(t, "ex:Sales").Relation(k).Len()
				if q.Filter == nil {
					want += testutil.SampleBundle(t, "ex:Stock").Relation(k).Len()
				}
				assert.Equal(t, want, n, query)
			}
		})
	}
}

func TestImports_OrderedByCube(t *testing.T) {
	s := createSampleStore(t)

	imports, err := s.Imports(context.Background())
	require.NoError(t, err)
	require.Len(t, imports, 2)
	assert.Equal(t, ir.IRI("ex:Sales"), imports[0].Cube)
	assert.Equal(t, ir.IRI("ex:Stock"), imports[1].Cube)
	assert.Len(t, imports[0].Hash, 64)
}

func TestEvaluate_MoreLeavesThanPooledConnections(t *testing.T) {
	s := createSampleStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pair := func() plan.Operator {
		return plan.NewDrillAcross(plan.NewBaseCube(ir.IRI("ex:Sales")), plan.NewBaseCube(ir.IRI("ex:Stock")))
	}
	op := plan.NewDrillAcross(plan.NewDrillAcross(pair(), pair()), pair())

	root, err := engine.Build(op, s, restriction.Restriction{})
	require.NoError(t, err)
	b, err := engine.Evaluate(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, []string{"ex:Sales", "ex:Stock"}, testutil.Values(t, b.Cubes, ir.FieldCubeName))
}
