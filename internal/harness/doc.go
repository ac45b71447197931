// Package harness runs cube plan scenarios end to end.
//
// A scenario imports a fixture into a fresh store, compiles a plan
// document, evaluates one named plan under a restriction and checks the
// resulting bundle (or planning error) against assertions and, optionally,
// a golden snapshot.
//
// # Scenario Format
//
// Scenarios are YAML files. Paths are relative to the scenario file:
//
//	name: sales_by_continent
//	description: "Rolling Geo up to continents keeps only continent members"
//	fixture: ../cubes.yaml
//	plans:
//	  - ../plans.cue
//	plan: byContinent
//	restrict:
//	  - DIMENSION_UNIQUE_NAME=ex:Geo
//	mode: derived
//	assertions:
//	  - type: rendering
//	    value: "Rollup (BaseCube (ex:Sales), {ex:GeoH : ex:Continent})"
//	  - type: keys
//	    relation: members
//	    keys: [ex:Europe, ex:Asia]
//	  - type: count
//	    relation: levels
//	    count: 1
//
// # Assertion Types
//
//   - rendering: the plan's one-line rendering equals value
//   - markup: the plan's indented markup in the scenario mode equals value
//   - keys: the key column of relation equals keys, in order
//   - count: relation has exactly count rows
//   - error: evaluation failed with the planning error code
//
// Expected keys are resolved with the plan document's prefixes, so they
// may be written as CURIEs.
//
// # Golden Files
//
// RunWithGolden snapshots the key columns of every relation under
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
