package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vcube/internal/ir"
	"github.com/roach88/vcube/internal/plan"
	"github.com/roach88/vcube/internal/restriction"
	"github.com/roach88/vcube/internal/testutil"
)

func sampleResult(t *testing.T) (*Result, *AssertionContext) {
	t.Helper()
	op := plan.NewProjection(plan.NewBaseCube(ir.IRI("ex:Sales")), testutil.Keys(ir.FieldMeasureUnique, "ex:Revenue"))
	result := NewResult()
	result.Plan = op.String()
	result.Bundle = testutil.SampleBundle(t, "ex:Sales")
	return result, &AssertionContext{Op: op, Mode: plan.ModeDerived}
}

func TestEvaluateAssertions_AllPass(t *testing.T) {
	result, actx := sampleResult(t)

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertRendering, Value: "Projection (BaseCube (ex:Sales), {ex:Revenue})"},
		{Type: AssertKeys, Relation: "dimensions", Keys: []string{"ex:Geo", "ex:Time", "ex:Product"}},
		{Type: AssertCount, Relation: "measures", Count: 2},
		{Type: AssertMarkup, Value: "<projection>\n  Projection (BaseCube (ex:Sales), {ex:Revenue})\n  <basecube>\n    BaseCube (ex:Sales)\n  </basecube>\n</projection>"},
	}, actx)
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	result, actx := sampleResult(t)

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertRendering, Value: "BaseCube (ex:Sales)"},
		{Type: AssertCount, Relation: "measures", Count: 1},
		{Type: AssertError, Code: "UNKNOWN_LEVEL"},
	}, actx)
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], "Assertion failed: rendering")
	assert.Contains(t, errs[1], "Expected: 1 rows")
	assert.Contains(t, errs[1], "Actual: 2 rows")
	assert.Contains(t, errs[2], "Actual: evaluation succeeded")
}

func TestAssertKeys_ResolvesExpectedNames(t *testing.T) {
	result, actx := sampleResult(t)
	actx.Resolver = restriction.NewPrefixResolver(map[string]string{"x": "ex:"})

	err := evaluateAssertion(result, Assertion{Type: AssertKeys, Relation: "cubes", Keys: []string{"x:Sales"}}, actx)
	assert.NoError(t, err)
}

func TestAssertKeys_EmptyRelation(t *testing.T) {
	result, actx := sampleResult(t)
	result.Bundle = ir.EmptyBundle()

	err := evaluateAssertion(result, Assertion{Type: AssertKeys, Relation: "members"}, actx)
	assert.NoError(t, err)
}

func TestAssertError_MatchesCode(t *testing.T) {
	result := NewResult()
	result.Plan = "Rollup (BaseCube (ex:Sales), {ex:GeoH : ex:Site})"
	result.ErrorCode = "UNKNOWN_LEVEL"
	result.ErrorMessage = "[UNKNOWN_LEVEL] level ex:Site is not in hierarchy ex:GeoH"

	errs := EvaluateAssertions(result, []Assertion{{Type: AssertError, Code: "UNKNOWN_LEVEL"}}, nil)
	assert.Empty(t, errs)

	errs = EvaluateAssertions(result, []Assertion{{Type: AssertError, Code: "MISSING_FIELD"}}, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Expected: MISSING_FIELD")
	assert.Contains(t, errs[0], "Actual: [UNKNOWN_LEVEL]")
}

func TestAssertMarkup_NeedsPlan(t *testing.T) {
	result, _ := sampleResult(t)
	err := evaluateAssertion(result, Assertion{Type: AssertMarkup, Value: "x"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs the evaluated plan")
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{Type: "count members", Expected: "1 rows", Actual: "2 rows", Plan: "BaseCube (ex:Sales)"}
	assert.Equal(t,
		"Assertion failed: count members\n  Expected: 1 rows\n  Actual: 2 rows\n  Plan: BaseCube (ex:Sales)\n",
		err.Error())
}

func TestKeyValues(t *testing.T) {
	b := testutil.SampleBundle(t, "ex:Stock")
	assert.Equal(t, []string{"ex:Units", "ex:StockLevel"}, KeyValues(b.Measures, ir.KindMeasures))
	assert.Nil(t, KeyValues(testutil.Keys(ir.FieldCubeName, "ex:Sales"), ir.KindMembers))
}
