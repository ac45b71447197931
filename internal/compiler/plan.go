package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/vcube/internal/ir"
	"github.com/roach88/vcube/internal/plan"
	"github.com/roach88/vcube/internal/restriction"
)

// Node kinds of the plan document, one per operator.
const (
	nodeBaseCube    = "basecube"
	nodeProjection  = "projection"
	nodeSlice       = "slice"
	nodeDice        = "dice"
	nodeRollup      = "rollup"
	nodeConvert     = "convert"
	nodeDrillAcross = "drillacross"
)

var nodeKinds = []string{
	nodeBaseCube, nodeProjection, nodeSlice, nodeDice,
	nodeRollup, nodeConvert, nodeDrillAcross,
}

// CompilePlan parses a CUE plan node into an operator tree.
//
// Each node is a struct with exactly one key naming the operator:
//
//	plan: q1: projection: {
//		input: rollup: {
//			input: basecube: "ex:Sales"
//			levels: [{hierarchy: "ex:GeoH", level: "ex:Country"}]
//		}
//		measures: ["ex:Revenue"]
//	}
//
// Convert nodes refer to correspondences by name. CompilePlan builds the
// tree only; plan.Validate checks operand pairing.
func CompilePlan(v cue.Value, correspondences map[string]*plan.Correspondence, resolver restriction.NameResolver) (plan.Operator, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if resolver == nil {
		resolver = (*restriction.PrefixResolver)(nil)
	}
	c := &planCompiler{names: names{resolver: resolver}, correspondences: correspondences}
	return c.node(v, "plan."+labelOf(v), 1)
}

type planCompiler struct {
	names
	correspondences map[string]*plan.Correspondence
}

func (c *planCompiler) node(v cue.Value, path string, depth int) (plan.Operator, error) {
	if depth > plan.MaxDepth {
		return nil, errorAt(v, path, "plan is nested deeper than %d operators", plan.MaxDepth)
	}

	kind, body, err := nodeKind(v, path)
	if err != nil {
		return nil, err
	}
	at := path + "." + kind

	switch kind {
	case nodeBaseCube:
		s, err := body.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		cube, err := c.resolve(body, s, at)
		if err != nil {
			return nil, err
		}
		return plan.NewBaseCube(cube), nil

	case nodeProjection:
		input, err := c.input(body, "input", at, depth)
		if err != nil {
			return nil, err
		}
		measures, err := c.requiredKeys(body, "measures", ir.FieldMeasureUnique, at)
		if err != nil {
			return nil, err
		}
		return plan.NewProjection(input, measures), nil

	case nodeSlice:
		input, err := c.input(body, "input", at, depth)
		if err != nil {
			return nil, err
		}
		dims, err := c.requiredKeys(body, "dimensions", ir.FieldDimensionUnique, at)
		if err != nil {
			return nil, err
		}
		return plan.NewSlice(input, dims), nil

	case nodeDice:
		return c.dice(body, at, depth)

	case nodeRollup:
		return c.rollup(body, at, depth)

	case nodeConvert:
		return c.convert(body, at, depth)

	case nodeDrillAcross:
		left, err := c.input(body, "input", at, depth)
		if err != nil {
			return nil, err
		}
		right, err := c.input(body, "input2", at, depth)
		if err != nil {
			return nil, err
		}
		return plan.NewDrillAcross(left, right), nil
	}
	return nil, errorAt(v, path, "unknown operator %q", kind)
}

// nodeKind returns the single operator key of a node struct.
func nodeKind(v cue.Value, path string) (string, cue.Value, error) {
	iter, err := v.Fields()
	if err != nil {
		return "", cue.Value{}, formatCUEError(err)
	}
	var kinds []string
	var body cue.Value
	for iter.Next() {
		label := iter.Label()
		if !isNodeKind(label) {
			return "", cue.Value{}, errorAt(iter.Value(), path+"."+label,
				"unknown operator %q, must be one of %s", label, strings.Join(nodeKinds, ", "))
		}
		kinds = append(kinds, label)
		body = iter.Value()
	}
	if len(kinds) != 1 {
		return "", cue.Value{}, errorAt(v, path,
			"a plan node needs exactly one operator, found %d", len(kinds))
	}
	return kinds[0], body, nil
}

func isNodeKind(label string) bool {
	for _, k := range nodeKinds {
		if k == label {
			return true
		}
	}
	return false
}

func (c *planCompiler) input(v cue.Value, field, path string, depth int) (plan.Operator, error) {
	iv := v.LookupPath(cue.ParsePath(field))
	if !iv.Exists() {
		return nil, errorAt(v, path+"."+field, "%s is required", field)
	}
	return c.node(iv, path+"."+field, depth+1)
}

func (c *planCompiler) requiredKeys(v cue.Value, field, key, path string) (ir.Relation, error) {
	lv := v.LookupPath(cue.ParsePath(field))
	if !lv.Exists() {
		return ir.Relation{}, errorAt(v, path+"."+field, "%s is required", field)
	}
	return c.keyList(lv, key, path+"."+field)
}

func (c *planCompiler) dice(v cue.Value, path string, depth int) (plan.Operator, error) {
	input, err := c.input(v, "input", path, depth)
	if err != nil {
		return nil, err
	}
	signature, err := c.requiredKeys(v, "hierarchies", ir.FieldHierarchyUnique, path)
	if err != nil {
		return nil, err
	}

	mv := v.LookupPath(cue.ParsePath("members"))
	if !mv.Exists() {
		return nil, errorAt(v, path+".members", "members is required")
	}
	iter, err := mv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var combos []ir.Relation
	for i := 0; iter.Next(); i++ {
		combo, err := c.keyList(iter.Value(), ir.FieldMemberUnique, fmt.Sprintf("%s.members[%d]", path, i))
		if err != nil {
			return nil, err
		}
		combos = append(combos, combo)
	}
	return plan.NewDice(input, signature, combos...), nil
}

func (c *planCompiler) rollup(v cue.Value, path string, depth int) (plan.Operator, error) {
	input, err := c.input(v, "input", path, depth)
	if err != nil {
		return nil, err
	}

	lv := v.LookupPath(cue.ParsePath("levels"))
	if !lv.Exists() {
		return nil, errorAt(v, path+".levels", "levels is required")
	}
	iter, err := lv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var hierarchies, levels []ir.Term
	for i := 0; iter.Next(); i++ {
		at := fmt.Sprintf("%s.levels[%d]", path, i)
		h, err := c.term(iter.Value(), "hierarchy", at)
		if err != nil {
			return nil, err
		}
		l, err := c.term(iter.Value(), "level", at)
		if err != nil {
			return nil, err
		}
		hierarchies = append(hierarchies, h)
		levels = append(levels, l)
	}
	return plan.NewRollup(input,
		ir.KeyRelation(ir.FieldHierarchyUnique, hierarchies...),
		ir.KeyRelation(ir.FieldLevelUnique, levels...)), nil
}

func (c *planCompiler) convert(v cue.Value, path string, depth int) (plan.Operator, error) {
	input, err := c.input(v, "input", path, depth)
	if err != nil {
		return nil, err
	}

	name, err := c.stringAt(v, "correspondence", path)
	if err != nil {
		return nil, err
	}
	corr, ok := c.correspondences[name]
	if !ok {
		return nil, errorAt(v.LookupPath(cue.ParsePath("correspondence")),
			path+".correspondence", "unknown correspondence %q", name)
	}

	domain, err := c.term(v, "domain", path)
	if err != nil {
		return nil, err
	}

	if v.LookupPath(cue.ParsePath("input2")).Exists() {
		input2, err := c.input(v, "input2", path, depth)
		if err != nil {
			return nil, err
		}
		return plan.NewMergeCubes(input, input2, corr, domain), nil
	}
	return plan.NewConvertCube(input, corr, domain), nil
}
