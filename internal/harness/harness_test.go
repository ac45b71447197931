package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestRunScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		scenario, err := LoadScenario(path)
		require.NoError(t, err, path)

		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Equal(t, []string{"ex:Sales", "ex:Stock"}, result.Imported)
		})
	}
}

func TestRun_PlanningErrorIsAnOutcome(t *testing.T) {
	scenario := loadTestScenario(t, "unknown_level")

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass)
	assert.True(t, result.Failed())
	assert.Equal(t, "UNKNOWN_LEVEL", result.ErrorCode)
	assert.Contains(t, result.ErrorMessage, "ex:Site")
	assert.Nil(t, result.Bundle)
}

func TestRun_UnexpectedPlanningErrorFails(t *testing.T) {
	scenario := loadTestScenario(t, "unknown_level")
	scenario.Assertions = []Assertion{{Type: AssertCount, Relation: "levels", Count: 1}}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "evaluation failed")
	assert.Contains(t, result.Errors[1], "Expected: evaluation to succeed")
}

func TestRun_FailingAssertion(t *testing.T) {
	scenario := loadTestScenario(t, "sales_revenue")
	scenario.Assertions = []Assertion{{Type: AssertKeys, Relation: "measures", Keys: []string{"ex:Units"}}}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Assertion failed: keys measures")
	assert.Contains(t, result.Errors[0], "Expected: [ex:Units]")
	assert.Contains(t, result.Errors[0], "Actual: [ex:Revenue]")
}

func TestRun_InvalidRestrictionIsAnOutcome(t *testing.T) {
	scenario := loadTestScenario(t, "sales_revenue")
	scenario.Restrict = []string{"TREE_OP=children"}
	scenario.Assertions = []Assertion{{Type: AssertError, Code: "INVALID_RESTRICTION"}}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_UnknownPlan(t *testing.T) {
	scenario := loadTestScenario(t, "sales_revenue")
	scenario.Plan = "nope"

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `plan "nope" not found`)
}

func TestRun_BadFixture(t *testing.T) {
	scenario := loadTestScenario(t, "sales_revenue")
	scenario.Fixture = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to import fixture")
}

func TestRunContext_Cancelled(t *testing.T) {
	scenario := loadTestScenario(t, "sales_revenue")
	scenario.Assertions = []Assertion{{Type: AssertError, Code: "CANCELLED"}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunContext(ctx, scenario)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
