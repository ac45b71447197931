package plan

import (
	"fmt"
	"strings"

	"github.com/roach88/vcube/internal/ir"
)

// Operator is a node of a logical plan.
//
// This is a sealed interface - only types in this package implement it.
type Operator interface {
	fmt.Stringer
	operatorNode() // Marker method - seals interface to this package
}

// BaseCube is the leaf operator: the unmodified metadata of one cube.
type BaseCube struct {
	Cube ir.Term
}

func (*BaseCube) operatorNode() {}

// NewBaseCube creates a BaseCube leaf.
func NewBaseCube(cube ir.Term) *BaseCube {
	return &BaseCube{Cube: cube}
}

func (b *BaseCube) String() string {
	return "BaseCube (" + b.Cube.Value() + ")"
}

// Projection keeps the measures listed in Measures, keyed by
// MEASURE_UNIQUE_NAME.
type Projection struct {
	Input    Operator
	Measures ir.Relation
}

func (*Projection) operatorNode() {}

// NewProjection creates a Projection over input.
func NewProjection(input Operator, measures ir.Relation) *Projection {
	return &Projection{Input: input, Measures: measures}
}

func (p *Projection) String() string {
	return "Projection (" + render(p.Input) + ", " + termSet(p.Measures, ir.FieldMeasureUnique) + ")"
}

// Slice removes the dimensions listed in Dimensions, keyed by
// DIMENSION_UNIQUE_NAME.
type Slice struct {
	Input      Operator
	Dimensions ir.Relation
}

func (*Slice) operatorNode() {}

// NewSlice creates a Slice over input.
func NewSlice(input Operator, dimensions ir.Relation) *Slice {
	return &Slice{Input: input, Dimensions: dimensions}
}

func (s *Slice) String() string {
	return "Slice (" + render(s.Input) + ", " + termSet(s.Dimensions, ir.FieldDimensionUnique) + ")"
}

// Dice restricts members. Signature lists hierarchies (HIERARCHY_UNIQUE_NAME);
// each entry of Combinations lists one member per signature row
// (MEMBER_UNIQUE_NAME), paired positionally.
type Dice struct {
	Input        Operator
	Signature    ir.Relation
	Combinations []ir.Relation
}

func (*Dice) operatorNode() {}

// NewDice creates a Dice over input.
func NewDice(input Operator, signature ir.Relation, combinations ...ir.Relation) *Dice {
	return &Dice{Input: input, Signature: signature, Combinations: combinations}
}

// Filter builds the disjunctive filter: one conjunction per combination,
// pairing signature row i with combination row i.
func (d *Dice) Filter() (Filter, error) {
	hierarchies, err := d.Signature.Column(ir.FieldHierarchyUnique)
	if err != nil {
		return nil, err
	}
	filter := make(Filter, 0, len(d.Combinations))
	for i, combo := range d.Combinations {
		members, err := combo.Column(ir.FieldMemberUnique)
		if err != nil {
			return nil, err
		}
		if len(members) != len(hierarchies) {
			return nil, ir.NewPlanningError(ir.ErrCodeInvalidPairing,
				"dice combination %d has %d members for %d hierarchies", i+1, len(members), len(hierarchies))
		}
		conj := make(Conjunction, len(members))
		for j := range members {
			conj[j] = Condition{Hierarchy: hierarchies[j], Member: members[j]}
		}
		filter = append(filter, conj)
	}
	return filter, nil
}

func (d *Dice) String() string {
	return "Dice (" + render(d.Input) + ", " + Args(d) + ")"
}

// Rollup coarsens hierarchies. Row i of Hierarchies (HIERARCHY_UNIQUE_NAME)
// pairs with row i of Levels (LEVEL_UNIQUE_NAME).
type Rollup struct {
	Input       Operator
	Hierarchies ir.Relation
	Levels      ir.Relation
}

func (*Rollup) operatorNode() {}

// NewRollup creates a Rollup over input.
func NewRollup(input Operator, hierarchies, levels ir.Relation) *Rollup {
	return &Rollup{Input: input, Hierarchies: hierarchies, Levels: levels}
}

// LevelPair is one hierarchy : level entry of a Rollup.
type LevelPair struct {
	Hierarchy ir.Term
	Level     ir.Term
}

// Pairs returns the positional hierarchy/level pairs in row order.
func (r *Rollup) Pairs() ([]LevelPair, error) {
	hierarchies, err := r.Hierarchies.Column(ir.FieldHierarchyUnique)
	if err != nil {
		return nil, err
	}
	levels, err := r.Levels.Column(ir.FieldLevelUnique)
	if err != nil {
		return nil, err
	}
	if len(hierarchies) != len(levels) {
		return nil, ir.NewPlanningError(ir.ErrCodeInvalidPairing,
			"rollup has %d hierarchies and %d levels", len(hierarchies), len(levels))
	}
	pairs := make([]LevelPair, len(hierarchies))
	for i := range hierarchies {
		pairs[i] = LevelPair{Hierarchy: hierarchies[i], Level: levels[i]}
	}
	return pairs, nil
}

func (r *Rollup) String() string {
	return "Rollup (" + render(r.Input) + ", " + Args(r) + ")"
}

// ConvertCube reinterprets Input1 under Domain using Correspondence. With a
// second input it merges both cubes and renders as Merge-Cubes.
type ConvertCube struct {
	Input1         Operator
	Input2         Operator
	Correspondence *Correspondence
	Domain         ir.Term
}

func (*ConvertCube) operatorNode() {}

// NewConvertCube creates the single-input conversion form.
func NewConvertCube(input Operator, corr *Correspondence, domain ir.Term) *ConvertCube {
	return &ConvertCube{Input1: input, Correspondence: corr, Domain: domain}
}

// NewMergeCubes creates the two-input merge form.
func NewMergeCubes(input1, input2 Operator, corr *Correspondence, domain ir.Term) *ConvertCube {
	return &ConvertCube{Input1: input1, Input2: input2, Correspondence: corr, Domain: domain}
}

// IsMerge reports whether c has two inputs.
func (c *ConvertCube) IsMerge() bool {
	return !isNil(c.Input2)
}

func (c *ConvertCube) String() string {
	if c.IsMerge() {
		return "Merge-Cubes (" + render(c.Input1) + ", " + render(c.Input2) + ", " + c.Correspondence.String() + ")"
	}
	return "Convert-Cube (" + render(c.Input1) + ", " + c.Correspondence.String() + ")"
}

// DrillAcross combines two cubes over their shared dimensions.
type DrillAcross struct {
	Input1 Operator
	Input2 Operator
}

func (*DrillAcross) operatorNode() {}

// NewDrillAcross creates a DrillAcross of two inputs.
func NewDrillAcross(input1, input2 Operator) *DrillAcross {
	return &DrillAcross{Input1: input1, Input2: input2}
}

func (d *DrillAcross) String() string {
	return "Drill-across(" + render(d.Input1) + ", " + render(d.Input2) + ")"
}

// Children returns the children of op, first input first. Absent inputs are
// omitted.
func Children(op Operator) []Operator {
	if isNil(op) {
		return nil
	}
	var out []Operator
	add := func(children ...Operator) {
		for _, c := range children {
			if !isNil(c) {
				out = append(out, c)
			}
		}
	}
	switch o := op.(type) {
	case *Projection:
		add(o.Input)
	case *Slice:
		add(o.Input)
	case *Dice:
		add(o.Input)
	case *Rollup:
		add(o.Input)
	case *ConvertCube:
		add(o.Input1, o.Input2)
	case *DrillAcross:
		add(o.Input1, o.Input2)
	}
	return out
}

// Name returns the short variant name of op, as used by markup tags and
// logs.
func Name(op Operator) string {
	switch o := op.(type) {
	case *BaseCube:
		return "basecube"
	case *Projection:
		return "projection"
	case *Slice:
		return "slice"
	case *Dice:
		return "dice"
	case *Rollup:
		return "rollup"
	case *ConvertCube:
		if o.IsMerge() {
			return "mergecubes"
		}
		return "convertcube"
	case *DrillAcross:
		return "drillacross"
	default:
		return "unknown"
	}
}

// Args renders the operands of op that are not child operators, as they
// appear in op's own rendering. BaseCube yields its cube; DrillAcross has
// none.
func Args(op Operator) string {
	switch o := op.(type) {
	case *BaseCube:
		return o.Cube.Value()
	case *Projection:
		return termSet(o.Measures, ir.FieldMeasureUnique)
	case *Slice:
		return termSet(o.Dimensions, ir.FieldDimensionUnique)
	case *Dice:
		f, err := o.Filter()
		if err != nil {
			return "<invalid filter>"
		}
		return f.String()
	case *Rollup:
		pairs, err := o.Pairs()
		if err != nil {
			return "<invalid pairing>"
		}
		parts := make([]string, len(pairs))
		for i, p := range pairs {
			parts[i] = p.Hierarchy.Value() + " : " + p.Level.Value()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *ConvertCube:
		return o.Correspondence.String()
	default:
		return ""
	}
}

func render(op Operator) string {
	if isNil(op) {
		return "<nil>"
	}
	return op.String()
}

// isNil catches typed nil pointers stored in an Operator.
func isNil(op Operator) bool {
	switch o := op.(type) {
	case nil:
		return true
	case *BaseCube:
		return o == nil
	case *Projection:
		return o == nil
	case *Slice:
		return o == nil
	case *Dice:
		return o == nil
	case *Rollup:
		return o == nil
	case *ConvertCube:
		return o == nil
	case *DrillAcross:
		return o == nil
	default:
		return false
	}
}

// termSet renders the values of field as {a, b}. A relation without the
// field renders as {}.
func termSet(r ir.Relation, field string) string {
	col, _ := r.Column(field)
	parts := make([]string, len(col))
	for i, t := range col {
		parts[i] = t.Value()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
