package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/vcube/internal/fixture"
	"github.com/roach88/vcube/internal/ir"
)

// SampleYAML describes two cubes sharing the Geo and Time dimensions and
// the Units measure. Names are unprefixed CURIEs so they compare equal to
// ir.IRI("ex:...") in tests.
const SampleYAML = `
catalog: ex:Catalog
schema: ex:Schema
cubes:
  - name: ex:Sales
    caption: Sales
    measures:
      - name: ex:Revenue
        aggregator: sum
        datatype: decimal
      - name: ex:Units
        aggregator: sum
        datatype: integer
    dimensions:
      - name: ex:Geo
        hierarchies:
          - name: ex:GeoH
            levels:
              - name: ex:Continent
                members:
                  - name: ex:Europe
                  - name: ex:Asia
              - name: ex:Country
                members:
                  - {name: ex:DE, parent: ex:Europe}
                  - {name: ex:FR, parent: ex:Europe}
                  - {name: ex:JP, parent: ex:Asia}
              - name: ex:City
                members:
                  - {name: ex:Berlin, parent: ex:DE}
                  - {name: ex:Paris, parent: ex:FR}
                  - {name: ex:Tokyo, parent: ex:JP}
      - name: ex:Time
        hierarchies:
          - name: ex:TimeH
            levels:
              - name: ex:Year
                members:
                  - name: ex:Y2020
                  - name: ex:Y2021
              - name: ex:Month
                members:
                  - {name: ex:M2020-01, parent: ex:Y2020}
                  - {name: ex:M2021-01, parent: ex:Y2021}
      - name: ex:Product
        hierarchies:
          - name: ex:ProductH
            levels:
              - name: ex:Category
                members:
                  - name: ex:Food
  - name: ex:Stock
    caption: Stock
    measures:
      - name: ex:Units
        aggregator: sum
        datatype: integer
      - name: ex:StockLevel
        aggregator: avg
        datatype: decimal
    dimensions:
      - name: ex:Geo
        hierarchies:
          - name: ex:GeoH
            levels:
              - name: ex:Continent
                members:
                  - name: ex:Europe
              - name: ex:Country
                members:
                  - {name: ex:DE, parent: ex:Europe}
      - name: ex:Time
        hierarchies:
          - name: ex:TimeH
            levels:
              - name: ex:Year
                members:
                  - name: ex:Y2021
      - name: ex:Warehouse
        hierarchies:
          - name: ex:WarehouseH
            levels:
              - name: ex:Site
                members:
                  - name: ex:W1
`

// SampleFixture parses SampleYAML.
func SampleFixture(t testing.TB) *fixture.File {
	t.Helper()
	f, err := fixture.Parse([]byte(SampleYAML))
	require.NoError(t, err)
	return f
}

// SampleBundle returns the base bundle of one sample cube ("ex:Sales" or
// "ex:Stock").
func SampleBundle(t testing.TB, cube string) *ir.Bundle {
	t.Helper()
	b, err := SampleFixture(t).Bundle(cube)
	require.NoError(t, err)
	return b
}

// Keys builds a single-column relation of IRIs.
func Keys(field string, names ...string) ir.Relation {
	terms := make([]ir.Term, len(names))
	for i, n := range names {
		terms[i] = ir.IRI(n)
	}
	return ir.KeyRelation(field, terms...)
}

// Values returns the raw values of field in row order.
func Values(t testing.TB, r ir.Relation, field string) []string {
	t.Helper()
	col, err := r.Column(field)
	require.NoError(t, err)
	out := make([]string, len(col))
	for i, v := range col {
		out[i] = v.Value()
	}
	return out
}
