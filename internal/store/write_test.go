package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vcube/internal/ir"
	"github.com/roach88/vcube/internal/testutil"
)

func countRows(t *testing.T, s *Store, k ir.Kind) int {
	t.Helper()
	var n int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM "+k.String()).Scan(&n))
	return n
}

func TestImport_WritesEveryRelation(t *testing.T) {
	s := createTestStore(t)

	cubes, err := s.Import(context.Background(), testutil.SampleFixture(t))
	require.NoError(t, err)
	assert.Equal(t, []ir.Term{ir.IRI("ex:Sales"), ir.IRI("ex:Stock")}, cubes)

	sales := testutil.SampleBundle(t, "ex:Sales")
	stock := testutil.SampleBundle(t, "ex:Stock")
	for _, k := range ir.Kinds {
		assert.Equal(t, sales.Relation(k).Len()+stock.Relation(k).Len(), countRows(t, s, k), k.String())
	}
}

func TestImport_ReimportReplaces(t *testing.T) {
	s := createSampleStore(t)
	ctx := context.Background()

	before := countRows(t, s, ir.KindMembers)
	_, err := s.Import(ctx, testutil.SampleFixture(t))
	require.NoError(t, err)
	assert.Equal(t, before, countRows(t, s, ir.KindMembers))

	// Drop the Sales members and re-import just that cube.
	sales := testutil.SampleBundle(t, "ex:Sales")
	trimmed := sales.With(ir.KindMembers, ir.EmptyRelation(ir.MembersHeader))
	_, err = s.ImportBundle(ctx, trimmed, "trimmed")
	require.NoError(t, err)

	stock := testutil.SampleBundle(t, "ex:Stock")
	assert.Equal(t, stock.Members.Len(), countRows(t, s, ir.KindMembers))
}

func TestImportBundle_RejectsMultipleCubes(t *testing.T) {
	s := createTestStore(t)

	sales := testutil.SampleBundle(t, "ex:Sales")
	stock := testutil.SampleBundle(t, "ex:Stock")
	both, err := ir.Union(sales.Cubes, stock.Cubes, ir.FieldCubeName)
	require.NoError(t, err)

	_, err = s.ImportBundle(context.Background(), sales.With(ir.KindCubes, both), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 1 cube row, got 2")
	assert.Equal(t, 0, countRows(t, s, ir.KindMeasures))
}

func TestImportBundle_RejectsMissingKey(t *testing.T) {
	s := createTestStore(t)

	sales := testutil.SampleBundle(t, "ex:Sales")
	broken := sales.With(ir.KindLevels, ir.KeyRelation(ir.FieldCubeName, ir.IRI("ex:Sales")))

	_, err := s.ImportBundle(context.Background(), broken, "")
	require.Error(t, err)
	assert.True(t, ir.HasCode(err, ir.ErrCodeMissingField))
}

func TestImportFile(t *testing.T) {
	s := createTestStore(t)

	path := filepath.Join(t.TempDir(), "cubes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testutil.SampleYAML), 0o644))

	cubes, err := s.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, cubes, 2)

	imports, err := s.Imports(context.Background())
	require.NoError(t, err)
	require.Len(t, imports, 2)
	assert.Equal(t, ir.IRI("ex:Sales"), imports[0].Cube)
	assert.Equal(t, path, imports[0].Source)

	want, err := testutil.SampleBundle(t, "ex:Sales").Hash()
	require.NoError(t, err)
	assert.Equal(t, want, imports[0].Hash)
}

func TestImportFile_Missing(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ImportFile(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestMarshalRow_RejectsZeroTerm(t *testing.T) {
	_, err := marshalRow(ir.Tuple{ir.IRI("ex:a"), {}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column 2 has no term")
}

func TestUnmarshalRow_RoundTrip(t *testing.T) {
	row := ir.Tuple{ir.IRI("ex:Sales"), ir.Literal(`say "hi"`), ir.IntLiteral(3)}
	params, err := marshalRow(row)
	require.NoError(t, err)

	cols := make([]string, len(params))
	for i, p := range params {
		cols[i] = p.(string)
	}
	got, err := unmarshalRow(ir.KindCubes, cols)
	require.NoError(t, err)
	assert.Equal(t, row, got)
}
