package querysql

import (
	"github.com/roach88/vcube/internal/ir"
	"github.com/roach88/vcube/internal/restriction"
)

// Query is a statement over one metadata table.
//
// This is a sealed interface - only types in this package implement it.
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Predicate is a filter condition over metadata columns.
//
// This is a sealed interface - only types in this package implement it.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Select reads the rows of one metadata relation.
//
//	SELECT <kind header columns> FROM <kind table> WHERE <filter> ORDER BY id
//
// The columns are always the kind's canonical header, in header order.
type Select struct {
	Kind   ir.Kind
	Filter Predicate // nil = no filter
}

func (Select) queryNode() {}

// Delete removes the rows of one metadata relation matching Filter.
type Delete struct {
	Kind   ir.Kind
	Filter Predicate // nil = every row
}

func (Delete) queryNode() {}

// Equals is field = value. Field is a header token (e.g. "?CUBE_NAME").
type Equals struct {
	Field string
	Value ir.Term
}

func (Equals) predicateNode() {}

// And is a conjunction. An empty And is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// ForRestriction builds the Select for one relation kind under r. Filters
// on fields the kind's header lacks do not apply.
func ForRestriction(kind ir.Kind, r restriction.Restriction) Select {
	return Select{Kind: kind, Filter: filterFor(kind, r)}
}

// DeleteCube builds the Delete removing one cube's rows of a kind.
func DeleteCube(kind ir.Kind, cube ir.Term) Delete {
	return Delete{Kind: kind, Filter: Equals{Field: ir.FieldCubeName, Value: cube}}
}

func filterFor(kind ir.Kind, r restriction.Restriction) Predicate {
	header := kind.Header()
	var preds []Predicate
	for _, f := range r.Filters() {
		if !contains(header, f.Field) {
			continue
		}
		preds = append(preds, Equals{Field: f.Field, Value: f.Value})
	}
	switch len(preds) {
	case 0:
		return nil
	case 1:
		return preds[0]
	default:
		return And{Predicates: preds}
	}
}

func contains(h ir.Header, field string) bool {
	for _, f := range h {
		if f == field {
			return true
		}
	}
	return false
}
