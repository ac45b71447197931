// Package restriction narrows metadata requests.
//
// A Restriction is built once from the flat alternating key/value list that
// catalog-metadata lookups accept, e.g.
//
//	[]string{"CUBE_NAME", "ex:Sales", "DIMENSION_UNIQUE_NAME", "ex:Geo"}
//
// Name patterns are converted to URIs by a NameResolver. TREE_OP is an
// integer bitmask and is never URI-converted. Unknown keys are skipped so
// newer clients can talk to older planners.
package restriction

import (
	"strconv"
	"strings"

	"github.com/roach88/vcube/internal/ir"
)

// Key is one of the recognised restriction keys.
type Key string

const (
	KeyCatalogName   Key = "CATALOG_NAME"
	KeySchemaName    Key = "SCHEMA_NAME"
	KeyCubeName      Key = "CUBE_NAME"
	KeyDimensionName Key = "DIMENSION_UNIQUE_NAME"
	KeyHierarchyName Key = "HIERARCHY_UNIQUE_NAME"
	KeyLevelName     Key = "LEVEL_UNIQUE_NAME"
	KeyMemberName    Key = "MEMBER_UNIQUE_NAME"
	KeyTreeOp        Key = "TREE_OP"
)

// Keys lists the recognised keys in filter order.
var Keys = []Key{
	KeyCatalogName, KeySchemaName, KeyCubeName, KeyDimensionName,
	KeyHierarchyName, KeyLevelName, KeyMemberName, KeyTreeOp,
}

// Field returns the relation header field the key filters on, or "" for
// TREE_OP.
func (k Key) Field() string {
	switch k {
	case KeyCatalogName:
		return ir.FieldCatalogName
	case KeySchemaName:
		return ir.FieldSchemaName
	case KeyCubeName:
		return ir.FieldCubeName
	case KeyDimensionName:
		return ir.FieldDimensionUnique
	case KeyHierarchyName:
		return ir.FieldHierarchyUnique
	case KeyLevelName:
		return ir.FieldLevelUnique
	case KeyMemberName:
		return ir.FieldMemberUnique
	default:
		return ""
	}
}

func parseKey(s string) (Key, bool) {
	for _, k := range Keys {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// NameResolver converts a client-side name pattern into a URI term.
type NameResolver interface {
	Resolve(name string) (ir.Term, error)
}

// Restriction is an optional filter per metadata class plus an optional
// tree-navigation operator. Absent filters are zero Terms.
type Restriction struct {
	Catalog   ir.Term
	Schema    ir.Term
	Cube      ir.Term
	Dimension ir.Term
	Hierarchy ir.Term
	Level     ir.Term
	Member    ir.Term

	// TreeOp is the raw TREE_OP bitmask; HasTreeOp reports whether it was given.
	TreeOp    int
	HasTreeOp bool

	// TreeOps are the tags resolved from TreeOp.
	TreeOps []TreeOp
}

// Filter is one field = value condition of a Restriction.
type Filter struct {
	Key   Key
	Field string
	Value ir.Term
}

// Assignments turns "KEY=VALUE" strings, as given on a command line, into
// the alternating key/value list Build takes.
func Assignments(pairs []string) ([]string, error) {
	kv := make([]string, 0, 2*len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, ir.NewPlanningError(ir.ErrCodeInvalidRestriction,
				"invalid restriction %q: want KEY=VALUE", pair)
		}
		kv = append(kv, strings.TrimSpace(key), value)
	}
	return kv, nil
}

// Build creates a Restriction from an alternating key/value list.
//
// Unknown keys are skipped together with their value. A trailing key with
// no value is ignored. A TREE_OP that is not an integer fails with an
// INVALID_RESTRICTION PlanningError, as does a resolver failure.
func Build(kv []string, resolver NameResolver) (Restriction, error) {
	if resolver == nil {
		resolver = (*PrefixResolver)(nil)
	}
	var r Restriction
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := parseKey(strings.TrimSpace(kv[i]))
		if !ok {
			continue
		}
		value := kv[i+1]

		if key == KeyTreeOp {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return Restriction{}, ir.WrapPlanningError(ir.ErrCodeInvalidRestriction,
					"TREE_OP must be an integer", err)
			}
			r.TreeOp = n
			r.HasTreeOp = true
			r.TreeOps = DecodeTreeOps(n)
			continue
		}

		term, err := resolver.Resolve(value)
		if err != nil {
			return Restriction{}, ir.WrapPlanningError(ir.ErrCodeInvalidRestriction,
				"resolve "+string(key), err)
		}
		r.set(key, term)
	}
	return r, nil
}

func (r *Restriction) set(key Key, t ir.Term) {
	switch key {
	case KeyCatalogName:
		r.Catalog = t
	case KeySchemaName:
		r.Schema = t
	case KeyCubeName:
		r.Cube = t
	case KeyDimensionName:
		r.Dimension = t
	case KeyHierarchyName:
		r.Hierarchy = t
	case KeyLevelName:
		r.Level = t
	case KeyMemberName:
		r.Member = t
	}
}

func (r Restriction) get(key Key) ir.Term {
	switch key {
	case KeyCatalogName:
		return r.Catalog
	case KeySchemaName:
		return r.Schema
	case KeyCubeName:
		return r.Cube
	case KeyDimensionName:
		return r.Dimension
	case KeyHierarchyName:
		return r.Hierarchy
	case KeyLevelName:
		return r.Level
	case KeyMemberName:
		return r.Member
	default:
		return ir.Term{}
	}
}

// Filters returns the name filters that are set, in key order.
func (r Restriction) Filters() []Filter {
	var out []Filter
	for _, k := range Keys {
		if k == KeyTreeOp {
			continue
		}
		if v := r.get(k); !v.IsZero() {
			out = append(out, Filter{Key: k, Field: k.Field(), Value: v})
		}
	}
	return out
}

// IsEmpty reports whether r restricts nothing.
func (r Restriction) IsEmpty() bool {
	return len(r.Filters()) == 0 && !r.HasTreeOp
}

// WithCube returns a copy of r narrowed to one cube.
func (r Restriction) WithCube(cube ir.Term) Restriction {
	r.Cube = cube
	return r
}

// Matches reports whether row of rel satisfies every filter whose field the
// relation carries. Filters on absent fields do not apply.
func (r Restriction) Matches(rel ir.Relation, row ir.Tuple) bool {
	for _, f := range r.Filters() {
		if !rel.Has(f.Field) {
			continue
		}
		if rel.Get(row, f.Field) != f.Value {
			return false
		}
	}
	return true
}
