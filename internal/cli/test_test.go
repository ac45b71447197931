package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runTestCommand(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// scenarioDir writes one scenario into a temp dir, pointing at the shared
// fixture and plans by absolute path.
func scenarioDir(t *testing.T, name, body string) string {
	t.Helper()
	fixture, err := filepath.Abs(cubesFixture)
	require.NoError(t, err)
	plans, err := filepath.Abs(filepath.Join(plansDir, "plans.cue"))
	require.NoError(t, err)

	dir := t.TempDir()
	writeFile(t, dir, name+".yaml", "name: "+name+"\n"+
		"description: \"temp scenario\"\n"+
		"fixture: "+fixture+"\n"+
		"plans:\n  - "+plans+"\n"+
		body)
	return dir
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := runTestCommand(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, err := runTestCommand(t, "text", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyDir(t *testing.T) {
	out, err := runTestCommand(t, "text", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommandScenarios(t *testing.T) {
	out, err := runTestCommand(t, "text", "testdata/scenarios")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ sales_revenue")
	assert.Contains(t, out, "✓ unknown_level")
	assert.Contains(t, out, "Test Summary: 2 passed, 0 failed, 2 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommandJSON(t *testing.T) {
	out, err := runTestCommand(t, "json", "testdata/scenarios")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 2, resp.Data.Passed)

	byName := map[string]ScenarioResult{}
	for _, s := range resp.Data.Scenarios {
		byName[s.Name] = s
	}
	assert.Equal(t, "UNKNOWN_LEVEL", byName["unknown_level"].ErrorCode)
	assert.Equal(t, "Projection (BaseCube (ex:Sales), {ex:Revenue})", byName["sales_revenue"].Plan)
}

func TestTestCommandFilter(t *testing.T) {
	out, err := runTestCommand(t, "text", "testdata/scenarios", "--filter", "sales_*")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ sales_revenue")
	assert.NotContains(t, out, "unknown_level")
	assert.Contains(t, out, "1 total")
}

func TestTestCommandInvalidFilter(t *testing.T) {
	_, err := runTestCommand(t, "text", "testdata/scenarios", "--filter", "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}

func TestTestCommandFailingAssertion(t *testing.T) {
	dir := scenarioDir(t, "wrong_keys", `plan: salesRevenue
assertions:
  - type: keys
    relation: measures
    keys: [ex:Units]
`)

	out, err := runTestCommand(t, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong_keys")
	assert.Contains(t, out, "Expected: [ex:Units]")
	assert.Contains(t, out, "1 failed")
}

func TestTestCommandInvalidScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.yaml", "name: broken\nassertion: []\n")

	out, err := runTestCommand(t, "json", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Contains(t, resp.Data.Scenarios[0].Errors[0], "failed to load scenario")
}

func TestTestCommandUpdateGolden(t *testing.T) {
	dir := scenarioDir(t, "germany", `plan: germany
assertions:
  - type: keys
    relation: cubes
    keys: [ex:Sales]
`)

	out, err := runTestCommand(t, "text", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ germany (golden updated)")

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "germany.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(golden), "scenario: germany\n")
	assert.Contains(t, string(golden), "cubes: ex:Sales\n")

	// A second run compares against the file just written.
	_, err = runTestCommand(t, "text", dir)
	require.NoError(t, err)

	// A stale golden file fails the scenario.
	writeFile(t, filepath.Join(dir, "golden"), "germany.golden", "scenario: germany\n")
	out, err = runTestCommand(t, "text", dir)
	require.Error(t, err)
	assert.Contains(t, out, "does not match golden file")
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("scenarios", "golden", "sales.golden"),
		goldenFilePath(filepath.Join("scenarios", "sales.yaml")))
}

func TestCompareWithGoldenMissingFile(t *testing.T) {
	match, err := compareWithGolden(filepath.Join(t.TempDir(), "none.golden"), []byte("x"))
	require.NoError(t, err)
	assert.True(t, match)
}
