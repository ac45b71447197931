package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vcube/internal/ir"
	"github.com/roach88/vcube/internal/plan"
)

const sampleDocument = `
prefixes: ex: "http://example.org/"

correspondence: stockToSales: {
	function: "identity"
	inputs1: [{dimension: "ex:Geo", member: "ex:DE"}]
	outputs: [{member_unique_name: "ex:DE", level_unique_name: "ex:Country", level_number: 1}]
}

plan: sales: projection: {
	input: basecube: "ex:Sales"
	measures: ["ex:Revenue"]
}

plan: converted: convert: {
	input: basecube: "ex:Stock"
	correspondence: "stockToSales"
	domain: "ex:Sales"
}
`

func TestCompileDocument(t *testing.T) {
	doc, err := CompileDocument(compileString(t, sampleDocument), nil)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"ex": "http://example.org/"}, doc.Prefixes)
	assert.Equal(t, []string{"sales", "converted"}, doc.PlanNames)
	require.Contains(t, doc.Correspondences, "stockToSales")

	sales, ok := doc.Plan("sales")
	require.True(t, ok)
	assert.Equal(t, "Projection (BaseCube (http://example.org/Sales), {http://example.org/Revenue})", sales.String())

	converted, ok := doc.Plan("converted")
	require.True(t, ok)
	assert.Same(t, doc.Correspondences["stockToSales"], converted.(*plan.ConvertCube).Correspondence)

	_, ok = doc.Plan("missing")
	assert.False(t, ok)
}

func TestCompileDocumentExtraPrefixesOverride(t *testing.T) {
	doc, err := CompileDocument(compileString(t, sampleDocument), map[string]string{"ex": "urn:x:"})
	require.NoError(t, err)

	sales, _ := doc.Plan("sales")
	assert.Equal(t, ir.IRI("urn:x:Sales"), sales.(*plan.Projection).Input.(*plan.BaseCube).Cube)
}

func TestCompileDocumentRequiresPlans(t *testing.T) {
	_, err := CompileDocument(compileString(t, `prefixes: ex: "http://example.org/"`), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one plan is required")
}

func TestCompileDocumentStopsAtFirstError(t *testing.T) {
	_, err := CompileDocument(compileString(t, `
		plan: good: basecube: "ex:Sales"
		plan: bad: slice: input: basecube: "ex:Sales"
	`), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plan.bad.slice.dimensions")
}
