package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/vcube/internal/ir"
	"github.com/roach88/vcube/internal/plan"
)

// Scenario defines one plan evaluation and what it must produce.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Fixture is the cube metadata file imported before evaluation.
	Fixture string `yaml:"fixture"`

	// Plans lists the CUE files that make up the plan document.
	Plans []string `yaml:"plans"`

	// Plan names the plan of the document to evaluate.
	Plan string `yaml:"plan"`

	// Restrict holds KEY=VALUE restriction entries.
	Restrict []string `yaml:"restrict,omitempty"`

	// Prefixes override the plan document's prefixes.
	Prefixes map[string]string `yaml:"prefixes,omitempty"`

	// Mode is the traversal mode for markup assertions. Defaults to derived.
	Mode string `yaml:"mode,omitempty"`

	// Assertions validate the evaluation outcome.
	Assertions []Assertion `yaml:"assertions"`

	// EvaluationID is an optional fixed evaluation id. Defaults to
	// "test-eval-default".
	EvaluationID string `yaml:"evaluation_id,omitempty"`
}

// Assertion checks one aspect of the evaluation outcome.
type Assertion struct {
	// Type specifies the assertion type:
	// - "rendering": Plan rendering equals Value
	// - "markup": Plan markup equals Value
	// - "keys": key column of Relation equals Keys
	// - "count": Relation has Count rows
	// - "error": evaluation failed with Code
	Type string `yaml:"type"`

	// Relation is the relation kind (used by keys, count).
	Relation string `yaml:"relation,omitempty"`

	// Keys are the expected key values in row order (used by keys).
	Keys []string `yaml:"keys,omitempty"`

	// Count is the expected number of rows (used by count).
	Count int `yaml:"count,omitempty"`

	// Value is the expected text (used by rendering, markup).
	Value string `yaml:"value,omitempty"`

	// Code is the expected planning error code (used by error).
	Code string `yaml:"code,omitempty"`
}

// Assertion type constants.
const (
	AssertRendering = "rendering"
	AssertMarkup    = "markup"
	AssertKeys      = "keys"
	AssertCount     = "count"
	AssertError     = "error"
)

// LoadScenario reads and parses a scenario YAML file. Relative fixture and
// plan paths are resolved against the scenario file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving fixture and plan paths relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve paths relative to base path BEFORE validation
	scenario.Fixture = resolvePath(basePath, scenario.Fixture)
	for i, p := range scenario.Plans {
		scenario.Plans[i] = resolvePath(basePath, p)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) || base == "" {
		return p
	}
	return filepath.Join(base, p)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Fixture == "" {
		return fmt.Errorf("fixture is required")
	}

	if len(s.Plans) == 0 {
		return fmt.Errorf("plans list is required and must be non-empty")
	}

	if s.Plan == "" {
		return fmt.Errorf("plan is required")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if _, err := os.Stat(s.Fixture); os.IsNotExist(err) {
		return fmt.Errorf("fixture file not found: %s", s.Fixture)
	}
	for _, p := range s.Plans {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("plan file not found: %s", p)
		}
	}

	if s.Mode != "" {
		if _, err := plan.ParseMode(s.Mode); err != nil {
			return fmt.Errorf("mode: %w", err)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertRendering, AssertMarkup:
		if a.Value == "" {
			return fmt.Errorf("assertions[%d]: value is required for %s", index, a.Type)
		}
	case AssertKeys, AssertCount:
		if a.Relation == "" {
			return fmt.Errorf("assertions[%d]: relation is required for %s", index, a.Type)
		}
		if _, ok := ir.ParseKind(a.Relation); !ok {
			return fmt.Errorf("assertions[%d]: unknown relation %q", index, a.Relation)
		}
		if a.Type == AssertCount && a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertError:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for error", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
