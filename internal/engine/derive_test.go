package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vcube/internal/ir"
	"github.com/roach88/vcube/internal/plan"
	"github.com/roach88/vcube/internal/testutil"
)

func TestDeriveProjection(t *testing.T) {
	sales := testutil.SampleBundle(t, "ex:Sales")

	out, err := DeriveProjection(sales, testutil.Keys(ir.FieldMeasureUnique, "ex:Units", "ex:Missing"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ex:Units"}, testutil.Values(t, out.Measures, ir.FieldMeasureUnique))
	assert.True(t, sales.Dimensions.Equal(out.Dimensions))
	assert.Equal(t, 2, sales.Measures.Len(), "input is not modified")
}

func TestDeriveProjectionEmptyKeepsAllMeasures(t *testing.T) {
	sales := testutil.SampleBundle(t, "ex:Sales")

	for name, empty := range map[string]ir.Relation{
		"header only": testutil.Keys(ir.FieldMeasureUnique),
		"zero":        {},
	} {
		t.Run(name, func(t *testing.T) {
			out, err := DeriveProjection(sales, empty)
			require.NoError(t, err)
			assert.True(t, sales.Measures.Equal(out.Measures))
		})
	}
}

func TestDeriveSlice(t *testing.T) {
	sales := testutil.SampleBundle(t, "ex:Sales")
	dims := testutil.Keys(ir.FieldDimensionUnique, "ex:Time")

	once, err := DeriveSlice(sales, dims)
	require.NoError(t, err)
	assert.Equal(t, []string{"ex:Geo", "ex:Product"}, testutil.Values(t, once.Dimensions, ir.FieldDimensionUnique))

	twice, err := DeriveSlice(once, dims)
	require.NoError(t, err)
	assert.True(t, once.Dimensions.Equal(twice.Dimensions), "slice is idempotent")

	assert.True(t, sales.Hierarchies.Equal(once.Hierarchies))
	assert.True(t, sales.Members.Equal(once.Members))
}

func TestDeriveSlicePreservesOrder(t *testing.T) {
	sales := testutil.SampleBundle(t, "ex:Sales")

	out, err := DeriveSlice(sales, testutil.Keys(ir.FieldDimensionUnique, "ex:Geo", "ex:Nope"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ex:Time", "ex:Product"}, testutil.Values(t, out.Dimensions, ir.FieldDimensionUnique))
}

func TestDeriveRollup(t *testing.T) {
	sales := testutil.SampleBundle(t, "ex:Sales")

	out, err := DeriveRollup(sales, []plan.LevelPair{
		{Hierarchy: ir.IRI("ex:GeoH"), Level: ir.IRI("ex:Country")},
	})
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"ex:Continent", "ex:Country", "ex:Year", "ex:Month", "ex:Category"},
		testutil.Values(t, out.Levels, ir.FieldLevelUnique))
	assert.NotContains(t, testutil.Values(t, out.Members, ir.FieldMemberUnique), "ex:Berlin")
	assert.Contains(t, testutil.Values(t, out.Members, ir.FieldMemberUnique), "ex:DE")
	assert.Contains(t, testutil.Values(t, out.Members, ir.FieldMemberUnique), "ex:M2020-01")
	assert.Equal(t, sales.Members.Len()-3, out.Members.Len())
}

func TestDeriveRollupToTopLevel(t *testing.T) {
	sales := testutil.SampleBundle(t, "ex:Sales")

	out, err := DeriveRollup(sales, []plan.LevelPair{
		{Hierarchy: ir.IRI("ex:GeoH"), Level: ir.IRI("ex:Continent")},
		{Hierarchy: ir.IRI("ex:TimeH"), Level: ir.IRI("ex:Year")},
	})
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"ex:Continent", "ex:Year", "ex:Category"},
		testutil.Values(t, out.Levels, ir.FieldLevelUnique))
	assert.Equal(t,
		[]string{"ex:Europe", "ex:Asia", "ex:Y2020", "ex:Y2021", "ex:Food"},
		testutil.Values(t, out.Members, ir.FieldMemberUnique))
}

func TestDeriveRollupUnknownLevel(t *testing.T) {
	sales := testutil.SampleBundle(t, "ex:Sales")

	_, err := DeriveRollup(sales, []plan.LevelPair{
		{Hierarchy: ir.IRI("ex:GeoH"), Level: ir.IRI("ex:Year")},
	})
	assert.True(t, ir.HasCode(err, ir.ErrCodeUnknownLevel))
}

func TestDeriveConvert(t *testing.T) {
	sales := testutil.SampleBundle(t, "ex:Sales")
	outputs := testutil.Keys(ir.FieldMemberUnique, "ex:EU27")
	corr := plan.NewConversion("toEU", "ex:convert", testutil.Keys(ir.FieldMemberUnique, "ex:DE"), outputs)

	out, err := DeriveConvert(sales, corr, ir.IRI("ex:EUSales"))
	require.NoError(t, err)

	assert.Equal(t, []string{"ex:EUSales"}, testutil.Values(t, out.Cubes, ir.FieldCubeName))
	assert.Equal(t, []string{"ex:EUSales", "ex:EUSales"}, testutil.Values(t, out.Measures, ir.FieldCubeName))
	assert.Equal(t, []string{"ex:EU27"}, testutil.Values(t, out.Members, ir.FieldMemberUnique))
	assert.Equal(t, []string{"ex:Sales"}, testutil.Values(t, sales.Cubes, ir.FieldCubeName), "input is not modified")

	_, err = DeriveConvert(sales, nil, ir.IRI("ex:EUSales"))
	assert.True(t, ir.HasCode(err, ir.ErrCodeMissingCorrespondence))
}

func TestDeriveConvertProjectsFullMemberOutputs(t *testing.T) {
	sales := testutil.SampleBundle(t, "ex:Sales")
	// Same fields as the members header, different column order.
	header := append(ir.Header{ir.FieldMemberUnique}, ir.MembersHeader[:8]...)
	header = append(header, ir.MembersHeader[9:]...)
	row := make(ir.Tuple, len(header))
	for i := range row {
		row[i] = ir.Literal("")
	}
	row[0] = ir.IRI("ex:EU27")
	outputs := ir.MustRelation(header, row)

	corr := plan.NewConversion("toEU", "ex:convert", testutil.Keys(ir.FieldMemberUnique, "ex:DE"), outputs)
	out, err := DeriveConvert(sales, corr, ir.IRI("ex:EUSales"))
	require.NoError(t, err)
	assert.Equal(t, ir.MembersHeader, out.Members.Header())
	assert.Equal(t, ir.IRI("ex:EUSales"), out.Members.Get(out.Members.Row(0), ir.FieldCubeName))
}

func TestDeriveMerge(t *testing.T) {
	sales := testutil.SampleBundle(t, "ex:Sales")
	stock := testutil.SampleBundle(t, "ex:Stock")
	corr := plan.NewMerge("salesStock", "ex:merge",
		testutil.Keys(ir.FieldMemberUnique, "ex:DE"),
		testutil.Keys(ir.FieldMemberUnique, "ex:DE"),
		testutil.Keys(ir.FieldMemberUnique, "ex:DE", "ex:FR"),
	)

	out, err := DeriveMerge(sales, stock, corr, ir.IRI("ex:All"))
	require.NoError(t, err)

	assert.Equal(t, []string{"ex:All"}, testutil.Values(t, out.Cubes, ir.FieldCubeName))
	assert.Equal(t, []string{"ex:Revenue", "ex:Units", "ex:StockLevel"}, testutil.Values(t, out.Measures, ir.FieldMeasureUnique))
	assert.Equal(t, []string{"ex:Geo", "ex:Time", "ex:Product", "ex:Warehouse"}, testutil.Values(t, out.Dimensions, ir.FieldDimensionUnique))
	assert.Equal(t, []string{"ex:GeoH", "ex:TimeH", "ex:ProductH", "ex:WarehouseH"}, testutil.Values(t, out.Hierarchies, ir.FieldHierarchyUnique))
	assert.Contains(t, testutil.Values(t, out.Levels, ir.FieldLevelUnique), "ex:Site")
	assert.Equal(t, []string{"ex:DE", "ex:FR"}, testutil.Values(t, out.Members, ir.FieldMemberUnique))
}

func TestDeriveDrillAcross(t *testing.T) {
	sales := testutil.SampleBundle(t, "ex:Sales")
	stock := testutil.SampleBundle(t, "ex:Stock")

	out, err := DeriveDrillAcross(sales, stock)
	require.NoError(t, err)

	assert.Equal(t, []string{"ex:Sales", "ex:Stock"}, testutil.Values(t, out.Cubes, ir.FieldCubeName))
	assert.Equal(t, []string{"ex:Revenue", "ex:Units", "ex:StockLevel"}, testutil.Values(t, out.Measures, ir.FieldMeasureUnique))
	assert.Equal(t, []string{"ex:Geo", "ex:Time"}, testutil.Values(t, out.Dimensions, ir.FieldDimensionUnique))
	assert.Equal(t, []string{"ex:GeoH", "ex:TimeH"}, testutil.Values(t, out.Hierarchies, ir.FieldHierarchyUnique))
	assert.Equal(t, []string{"ex:Continent", "ex:Country", "ex:Year"}, testutil.Values(t, out.Levels, ir.FieldLevelUnique))
	assert.Equal(t, []string{"ex:Europe", "ex:DE", "ex:Y2021"}, testutil.Values(t, out.Members, ir.FieldMemberUnique))
}
