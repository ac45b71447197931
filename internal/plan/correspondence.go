package plan

import (
	"github.com/roach88/vcube/internal/ir"
)

// Correspondence describes how to convert one cube's metadata into another
// vocabulary, or merge two cubes' metadata into one.
//
// Inputs1 (and Inputs2 for a merge) map input members; Outputs lists the
// members of the result and carries the members header. Function names the
// external procedure that performs the per-row conversion.
//
// A Correspondence is immutable once constructed.
type Correspondence struct {
	name     string
	function string
	inputs1  ir.Relation
	inputs2  ir.Relation
	hasTwo   bool
	outputs  ir.Relation
}

// NewConversion creates a single-input correspondence.
func NewConversion(name, function string, inputs, outputs ir.Relation) *Correspondence {
	return &Correspondence{name: name, function: function, inputs1: inputs, outputs: outputs}
}

// NewMerge creates a two-input correspondence.
func NewMerge(name, function string, inputs1, inputs2, outputs ir.Relation) *Correspondence {
	return &Correspondence{
		name:     name,
		function: function,
		inputs1:  inputs1,
		inputs2:  inputs2,
		hasTwo:   true,
		outputs:  outputs,
	}
}

// Name returns the correspondence name.
func (c *Correspondence) Name() string { return c.name }

// Function returns the name of the conversion procedure.
func (c *Correspondence) Function() string { return c.function }

// Inputs1 returns the first input mapping.
func (c *Correspondence) Inputs1() ir.Relation { return c.inputs1 }

// Inputs2 returns the second input mapping, if any.
func (c *Correspondence) Inputs2() (ir.Relation, bool) { return c.inputs2, c.hasTwo }

// Outputs returns the output member mapping.
func (c *Correspondence) Outputs() ir.Relation { return c.outputs }

// IsMerge reports whether c maps two inputs.
func (c *Correspondence) IsMerge() bool { return c.hasTwo }

// String renders the correspondence by name.
func (c *Correspondence) String() string {
	if c == nil {
		return "<nil>"
	}
	return c.name
}
