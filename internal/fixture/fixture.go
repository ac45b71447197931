// Package fixture reads cube metadata descriptions from YAML and turns them
// into metadata bundles.
//
// A fixture describes cubes the way a publisher lays them out: a cube has
// measures and dimensions, a dimension has hierarchies, a hierarchy has an
// ordered list of levels (coarsest first), a level has members. Names are
// CURIEs expanded with the file's prefixes or IRIs in angle brackets.
//
//	prefixes:
//	  ex: http://example.org/
//	cubes:
//	  - name: ex:Sales
//	    measures:
//	      - name: ex:Revenue
//	        aggregator: sum
//	    dimensions:
//	      - name: ex:Geo
//	        hierarchies:
//	          - name: ex:GeoH
//	            levels:
//	              - name: ex:Country
//	                members:
//	                  - name: ex:DE
package fixture

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is a decoded fixture document.
type File struct {
	// Prefixes maps CURIE prefixes to namespaces.
	Prefixes map[string]string `yaml:"prefixes,omitempty"`

	// Catalog and Schema apply to every cube unless the cube sets its own.
	Catalog string `yaml:"catalog,omitempty"`
	Schema  string `yaml:"schema,omitempty"`

	Cubes []Cube `yaml:"cubes"`
}

// Cube describes one base cube.
type Cube struct {
	Name        string      `yaml:"name"`
	Catalog     string      `yaml:"catalog,omitempty"`
	Schema      string      `yaml:"schema,omitempty"`
	Caption     string      `yaml:"caption,omitempty"`
	Description string      `yaml:"description,omitempty"`
	Measures    []Measure   `yaml:"measures"`
	Dimensions  []Dimension `yaml:"dimensions"`
}

// Measure describes one measure of a cube.
type Measure struct {
	Name       string `yaml:"name"`
	Caption    string `yaml:"caption,omitempty"`
	DataType   string `yaml:"datatype,omitempty"`
	Aggregator string `yaml:"aggregator,omitempty"`
	Expression string `yaml:"expression,omitempty"`
}

// Dimension describes one dimension of a cube.
type Dimension struct {
	Name        string      `yaml:"name"`
	Caption     string      `yaml:"caption,omitempty"`
	Type        string      `yaml:"type,omitempty"`
	Description string      `yaml:"description,omitempty"`
	Hierarchies []Hierarchy `yaml:"hierarchies"`
}

// Hierarchy is an ordered list of levels, coarsest first.
type Hierarchy struct {
	Name        string  `yaml:"name"`
	Caption     string  `yaml:"caption,omitempty"`
	Description string  `yaml:"description,omitempty"`
	Levels      []Level `yaml:"levels"`
}

// Level describes one level and its members.
type Level struct {
	Name        string   `yaml:"name"`
	Caption     string   `yaml:"caption,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Type        string   `yaml:"type,omitempty"`
	Members     []Member `yaml:"members"`
}

// Member describes one member. Parent names a member of the level above.
type Member struct {
	Name    string `yaml:"name"`
	Caption string `yaml:"caption,omitempty"`
	Type    string `yaml:"type,omitempty"`
	Parent  string `yaml:"parent,omitempty"`
}

// Parse decodes a fixture document. Unknown fields are rejected so typos
// surface as errors.
func Parse(data []byte) (*File, error) {
	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	return &f, nil
}

// Load reads and parses a fixture file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	return Parse(data)
}

func (f *File) validate() error {
	if len(f.Cubes) == 0 {
		return fmt.Errorf("cubes list is required and must be non-empty")
	}
	seen := make(map[string]bool)
	for i, c := range f.Cubes {
		if c.Name == "" {
			return fmt.Errorf("cubes[%d]: name is required", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("cubes[%d]: duplicate cube %s", i, c.Name)
		}
		seen[c.Name] = true
		for j, d := range c.Dimensions {
			if d.Name == "" {
				return fmt.Errorf("%s: dimensions[%d]: name is required", c.Name, j)
			}
			for k, h := range d.Hierarchies {
				if h.Name == "" {
					return fmt.Errorf("%s: %s: hierarchies[%d]: name is required", c.Name, d.Name, k)
				}
				if err := validateLevels(h); err != nil {
					return fmt.Errorf("%s: %s: %w", c.Name, h.Name, err)
				}
			}
		}
		for j, m := range c.Measures {
			if m.Name == "" {
				return fmt.Errorf("%s: measures[%d]: name is required", c.Name, j)
			}
		}
	}
	return nil
}

func validateLevels(h Hierarchy) error {
	above := map[string]bool{}
	for i, l := range h.Levels {
		if l.Name == "" {
			return fmt.Errorf("levels[%d]: name is required", i)
		}
		here := map[string]bool{}
		for _, m := range l.Members {
			if m.Name == "" {
				return fmt.Errorf("%s: member name is required", l.Name)
			}
			if m.Parent != "" && !above[m.Parent] {
				return fmt.Errorf("%s: parent %s of %s is not a member of the level above", l.Name, m.Parent, m.Name)
			}
			here[m.Name] = true
		}
		above = here
	}
	return nil
}
