package ir

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Header is the ordered list of field tokens of a Relation.
// Every token starts with "?" and tokens are unique.
type Header []string

// Validate checks the header invariants.
func (h Header) Validate() error {
	seen := make(map[string]struct{}, len(h))
	for i, field := range h {
		if !strings.HasPrefix(field, "?") || len(field) < 2 {
			return NewPlanningError(ErrCodeMalformedRelation, "header field %d %q must start with '?'", i, field)
		}
		if _, dup := seen[field]; dup {
			return NewPlanningError(ErrCodeMalformedRelation, "duplicate header field %q", field)
		}
		seen[field] = struct{}{}
	}
	return nil
}

// SameSet reports whether h and other contain the same fields, in any order.
func (h Header) SameSet(other Header) bool {
	if len(h) != len(other) {
		return false
	}
	a := slices.Clone(h)
	b := slices.Clone(other)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}

// Tuple is a fixed-arity row of terms.
type Tuple []Term

// Relation is a header plus equal-arity data tuples. Element 0 of the wire
// form is the header; NewRelation enforces the invariants so every Relation
// value in the system is well formed.
type Relation struct {
	header Header
	rows   []Tuple
	index  map[string]int
}

// NewRelation creates a relation, validating the header and the arity of
// every row. Rows are copied.
func NewRelation(header Header, rows ...Tuple) (Relation, error) {
	if err := header.Validate(); err != nil {
		return Relation{}, err
	}
	index := make(map[string]int, len(header))
	for i, field := range header {
		index[field] = i
	}
	copied := make([]Tuple, len(rows))
	for i, row := range rows {
		if len(row) != len(header) {
			return Relation{}, NewPlanningError(ErrCodeMalformedRelation,
				"row %d has arity %d, header has %d", i+1, len(row), len(header))
		}
		copied[i] = slices.Clone(row)
	}
	return Relation{header: slices.Clone(header), rows: copied, index: index}, nil
}

// MustRelation is NewRelation that panics on error. Intended for tests and
// static tables.
func MustRelation(header Header, rows ...Tuple) Relation {
	r, err := NewRelation(header, rows...)
	if err != nil {
		panic(err)
	}
	return r
}

// EmptyRelation returns a header-only relation.
func EmptyRelation(header Header) Relation {
	return MustRelation(header)
}

// KeyRelation builds a single-column relation, one row per term. It is the
// shape operator arguments take (e.g. the measures of a Projection).
func KeyRelation(field string, terms ...Term) Relation {
	rows := make([]Tuple, len(terms))
	for i, t := range terms {
		rows[i] = Tuple{t}
	}
	return MustRelation(Header{field}, rows...)
}

// FromWire decodes the wire shape: element 0 is the header, the remaining
// elements are rows of N-Triples encoded terms.
func FromWire(wire [][]string) (Relation, error) {
	if len(wire) == 0 {
		return Relation{}, NewPlanningError(ErrCodeMalformedRelation, "relation has no header")
	}
	rows := make([]Tuple, 0, len(wire)-1)
	for i, raw := range wire[1:] {
		row := make(Tuple, len(raw))
		for j, s := range raw {
			t, err := ParseTerm(s)
			if err != nil {
				return Relation{}, WrapPlanningError(ErrCodeMalformedRelation,
					fmt.Sprintf("row %d column %d", i+1, j), err)
			}
			row[j] = t
		}
		rows = append(rows, row)
	}
	return NewRelation(Header(wire[0]), rows...)
}

// Wire encodes r in the wire shape.
func (r Relation) Wire() [][]string {
	out := make([][]string, 0, len(r.rows)+1)
	out = append(out, slices.Clone([]string(r.header)))
	for _, row := range r.rows {
		enc := make([]string, len(row))
		for j, t := range row {
			enc[j] = t.String()
		}
		out = append(out, enc)
	}
	return out
}

// MarshalJSON encodes r in the wire shape.
func (r Relation) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Wire())
}

// UnmarshalJSON decodes the wire shape.
func (r *Relation) UnmarshalJSON(data []byte) error {
	var wire [][]string
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	rel, err := FromWire(wire)
	if err != nil {
		return err
	}
	*r = rel
	return nil
}

// Header returns a copy of the header.
func (r Relation) Header() Header {
	return slices.Clone(r.header)
}

// Len returns the number of data rows (the header is not counted).
func (r Relation) Len() int {
	return len(r.rows)
}

// Rows returns the data rows. Callers must not modify them.
func (r Relation) Rows() []Tuple {
	return r.rows
}

// Row returns data row i (0-based, header excluded).
func (r Relation) Row(i int) Tuple {
	return r.rows[i]
}

// Index returns the position of field in the header.
func (r Relation) Index(field string) (int, bool) {
	i, ok := r.index[field]
	return i, ok
}

// Has reports whether the header contains field.
func (r Relation) Has(field string) bool {
	_, ok := r.index[field]
	return ok
}

// Get returns the value of field in row, which must belong to r.
func (r Relation) Get(row Tuple, field string) Term {
	i, ok := r.index[field]
	if !ok {
		return Term{}
	}
	return row[i]
}

// Column returns the values of field in row order.
func (r Relation) Column(field string) ([]Term, error) {
	i, ok := r.index[field]
	if !ok {
		return nil, missingField(r, field)
	}
	out := make([]Term, len(r.rows))
	for j, row := range r.rows {
		out[j] = row[i]
	}
	return out, nil
}

// KeySet returns the set of values of field.
func (r Relation) KeySet(field string) (map[Term]struct{}, error) {
	i, ok := r.index[field]
	if !ok {
		return nil, missingField(r, field)
	}
	set := make(map[Term]struct{}, len(r.rows))
	for _, row := range r.rows {
		set[row[i]] = struct{}{}
	}
	return set, nil
}

// Filter returns the rows for which keep returns true, in order.
func (r Relation) Filter(keep func(Tuple) bool) Relation {
	out := Relation{header: r.header, index: r.index}
	for _, row := range r.rows {
		if keep(row) {
			out.rows = append(out.rows, row)
		}
	}
	return out
}

// Map returns a relation with the same header whose rows are produced by fn.
// fn must return tuples of the header's arity.
func (r Relation) Map(fn func(Tuple) Tuple) (Relation, error) {
	rows := make([]Tuple, len(r.rows))
	for i, row := range r.rows {
		rows[i] = fn(slices.Clone(row))
	}
	return NewRelation(r.header, rows...)
}

// Set returns a copy of r with field replaced by value in every row. A
// relation without the field is returned unchanged.
func (r Relation) Set(field string, value Term) Relation {
	i, ok := r.index[field]
	if !ok {
		return r
	}
	out := Relation{header: r.header, index: r.index, rows: make([]Tuple, len(r.rows))}
	for j, row := range r.rows {
		row = slices.Clone(row)
		row[i] = value
		out.rows[j] = row
	}
	return out
}

// Project reorders r to the given header, which must contain the same
// fields.
func (r Relation) Project(header Header) (Relation, error) {
	if !r.header.SameSet(header) {
		return Relation{}, NewPlanningError(ErrCodeMalformedRelation,
			"cannot project %v onto %v", r.header, header)
	}
	positions := make([]int, len(header))
	for i, field := range header {
		positions[i] = r.index[field]
	}
	rows := make([]Tuple, len(r.rows))
	for j, row := range r.rows {
		out := make(Tuple, len(header))
		for i, p := range positions {
			out[i] = row[p]
		}
		rows[j] = out
	}
	return NewRelation(header, rows...)
}

// SchemaCompatible reports whether r and other have equal headers as sets.
func (r Relation) SchemaCompatible(other Relation) bool {
	return r.header.SameSet(other.header)
}

// Equal reports whether r and other have the same header and rows in the
// same order.
func (r Relation) Equal(other Relation) bool {
	if !slices.Equal(r.header, other.header) || len(r.rows) != len(other.rows) {
		return false
	}
	for i := range r.rows {
		if !slices.Equal(r.rows[i], other.rows[i]) {
			return false
		}
	}
	return true
}

// String renders r as a header line followed by one line per row. Used in
// logs and test failure messages.
func (r Relation) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(r.header, " "))
	for _, row := range r.rows {
		b.WriteByte('\n')
		for i, t := range row {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(t.String())
		}
	}
	return b.String()
}

func missingField(r Relation, field string) error {
	return NewPlanningError(ErrCodeMissingField, "relation %v has no field %s", r.header, field)
}
