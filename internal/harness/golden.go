package harness

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/vcube/internal/ir"
)

// Snapshot renders the parts of a result that golden files pin: the plan,
// the error code when evaluation failed, and otherwise the key column of
// every relation in canonical kind order.
//
//	scenario: sales_by_continent
//	plan: Rollup (BaseCube (ex:Sales), {ex:GeoH : ex:Continent})
//	cubes: ex:Sales
//	levels: ex:Continent ex:Year ex:Month ex:Category
func Snapshot(name string, result *Result) []byte {
	var b strings.Builder
	b.WriteString("scenario: " + name + "\n")
	b.WriteString("plan: " + result.Plan + "\n")
	if result.Bundle == nil {
		b.WriteString("error: " + result.ErrorCode + "\n")
		return []byte(b.String())
	}
	for _, k := range ir.Kinds {
		keys := KeyValues(result.Bundle.Relation(k), k)
		b.WriteString(k.String() + ":")
		for _, key := range keys {
			b.WriteString(" " + key)
		}
		b.WriteString("\n")
	}
	return []byte(b.String())
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file. The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares the given result's snapshot against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, Snapshot(scenarioName, result))
}
