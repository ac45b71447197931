package harness

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenarioDir creates a fixture and a plan file next to a scenario
// and returns the scenario path.
func writeScenarioDir(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cubes.yaml"), []byte("cubes: []\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plans.cue"), []byte(`plan: p: basecube: "ex:Sales"`), 0644))
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validScenario = `
name: test_scenario
description: "Test scenario for validation"
fixture: cubes.yaml
plans:
  - plans.cue
plan: p
restrict:
  - CUBE_NAME=ex:Sales
mode: structural
assertions:
  - type: count
    relation: cubes
    count: 0
`

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenarioDir(t, validScenario)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, filepath.Join(dir, "cubes.yaml"), scenario.Fixture)
	assert.Equal(t, []string{filepath.Join(dir, "plans.cue")}, scenario.Plans)
	assert.Equal(t, []string{"CUBE_NAME=ex:Sales"}, scenario.Restrict)
	assert.Equal(t, "structural", scenario.Mode)
	require.Len(t, scenario.Assertions, 1)
	assert.Equal(t, AssertCount, scenario.Assertions[0].Type)
}

func TestLoadScenarioWithBasePath(t *testing.T) {
	path := writeScenarioDir(t, validScenario)
	base := filepath.Dir(path)

	// Scenario file elsewhere, paths resolved against base.
	moved := filepath.Join(t.TempDir(), "moved.yaml")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(moved, data, 0644))

	scenario, err := LoadScenarioWithBasePath(moved, base)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "cubes.yaml"), scenario.Fixture)
}

func TestLoadScenario_RejectsUnknownFields(t *testing.T) {
	path := writeScenarioDir(t, strings.Replace(validScenario, "assertions:", "assertion:", 1))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_Validation(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(string) string
		wantErr string
	}{
		{
			name:    "missing name",
			edit:    func(s string) string { return strings.Replace(s, "name: test_scenario", "", 1) },
			wantErr: "name is required",
		},
		{
			name:    "missing plan",
			edit:    func(s string) string { return strings.Replace(s, "plan: p\n", "", 1) },
			wantErr: "plan is required",
		},
		{
			name:    "fixture not found",
			edit:    func(s string) string { return strings.Replace(s, "cubes.yaml", "other.yaml", 1) },
			wantErr: "fixture file not found",
		},
		{
			name:    "plan file not found",
			edit:    func(s string) string { return strings.Replace(s, "- plans.cue", "- other.cue", 1) },
			wantErr: "plan file not found",
		},
		{
			name:    "bad mode",
			edit:    func(s string) string { return strings.Replace(s, "mode: structural", "mode: sideways", 1) },
			wantErr: "unknown traversal mode",
		},
		{
			name:    "unknown assertion type",
			edit:    func(s string) string { return strings.Replace(s, "type: count", "type: trace_order", 1) },
			wantErr: `unknown assertion type "trace_order"`,
		},
		{
			name:    "unknown relation",
			edit:    func(s string) string { return strings.Replace(s, "relation: cubes", "relation: facts", 1) },
			wantErr: `unknown relation "facts"`,
		},
		{
			name:    "count without relation",
			edit:    func(s string) string { return strings.Replace(s, "    relation: cubes\n", "", 1) },
			wantErr: "relation is required for count",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenarioDir(t, tt.edit(validScenario))
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateAssertion(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		wantErr   string
	}{
		{"rendering ok", Assertion{Type: AssertRendering, Value: "BaseCube (ex:Sales)"}, ""},
		{"rendering needs value", Assertion{Type: AssertRendering}, "value is required for rendering"},
		{"markup needs value", Assertion{Type: AssertMarkup}, "value is required for markup"},
		{"keys ok", Assertion{Type: AssertKeys, Relation: "members"}, ""},
		{"negative count", Assertion{Type: AssertCount, Relation: "members", Count: -1}, "count must be non-negative"},
		{"error needs code", Assertion{Type: AssertError}, "code is required for error"},
		{"missing type", Assertion{}, "type is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAssertion(0, &tt.assertion)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
