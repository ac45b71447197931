package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/vcube/internal/ir"
	"github.com/roach88/vcube/internal/plan"
	"github.com/roach88/vcube/internal/restriction"
)

// inputHeader is the header of a correspondence input mapping.
var inputHeader = ir.Header{ir.FieldDimensionUnique, ir.FieldMemberUnique}

// Output fields holding names resolve to IRIs and integer fields become
// integer literals. The rest are plain literals.
var (
	outputNameFields = map[string]bool{
		ir.FieldCatalogName:     true,
		ir.FieldSchemaName:      true,
		ir.FieldCubeName:        true,
		ir.FieldDimensionUnique: true,
		ir.FieldHierarchyUnique: true,
		ir.FieldLevelUnique:     true,
		ir.FieldMemberUnique:    true,
		ir.FieldParentUnique:    true,
	}
	outputIntFields = map[string]bool{
		ir.FieldLevelNumber: true,
		ir.FieldParentLevel: true,
	}
)

// CompileCorrespondence parses a CUE value into a Correspondence.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the correspondence struct itself, e.g.:
//
//	v := ctx.CompileString(`correspondence: eurostat: { ... }`)
//	c, err := CompileCorrespondence(v.LookupPath(cue.ParsePath("correspondence.eurostat")), resolver)
//
// The correspondence is named after the last path selector. A struct with
// inputs2 compiles to a merge correspondence.
func CompileCorrespondence(v cue.Value, resolver restriction.NameResolver) (*plan.Correspondence, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if resolver == nil {
		resolver = (*restriction.PrefixResolver)(nil)
	}
	n := names{resolver: resolver}

	name := labelOf(v)
	path := "correspondence." + name

	function, err := n.stringAt(v, "function", path)
	if err != nil {
		return nil, err
	}

	inputs1, err := compileInputs(n, v, "inputs1", path, true)
	if err != nil {
		return nil, err
	}
	inputs2, err := compileInputs(n, v, "inputs2", path, false)
	if err != nil {
		return nil, err
	}

	outputs, err := compileOutputs(n, v, path)
	if err != nil {
		return nil, err
	}

	if v.LookupPath(cue.ParsePath("inputs2")).Exists() {
		return plan.NewMerge(name, function, inputs1, inputs2, outputs), nil
	}
	return plan.NewConversion(name, function, inputs1, outputs), nil
}

// compileInputs parses [...{dimension, member}] into a relation.
func compileInputs(n names, v cue.Value, field, path string, required bool) (ir.Relation, error) {
	lv := v.LookupPath(cue.ParsePath(field))
	if !lv.Exists() {
		if required {
			return ir.Relation{}, errorAt(v, path+"."+field, "%s is required", field)
		}
		return ir.EmptyRelation(inputHeader), nil
	}

	iter, err := lv.List()
	if err != nil {
		return ir.Relation{}, formatCUEError(err)
	}
	var rows []ir.Tuple
	for i := 0; iter.Next(); i++ {
		entry := iter.Value()
		at := fmt.Sprintf("%s.%s[%d]", path, field, i)
		dim, err := n.term(entry, "dimension", at)
		if err != nil {
			return ir.Relation{}, err
		}
		member, err := n.term(entry, "member", at)
		if err != nil {
			return ir.Relation{}, err
		}
		rows = append(rows, ir.Tuple{dim, member})
	}
	return ir.NewRelation(inputHeader, rows...)
}

// compileOutputs parses the output members. Each entry is a struct keyed by
// members-relation column names (member_unique_name, level_number, ...);
// absent columns are empty literals. cube_name is overwritten by the
// operator's domain during derivation.
func compileOutputs(n names, v cue.Value, path string) (ir.Relation, error) {
	lv := v.LookupPath(cue.ParsePath("outputs"))
	if !lv.Exists() {
		return ir.Relation{}, errorAt(v, path+".outputs", "outputs are required")
	}
	iter, err := lv.List()
	if err != nil {
		return ir.Relation{}, formatCUEError(err)
	}

	var rows []ir.Tuple
	for i := 0; iter.Next(); i++ {
		row, err := compileOutput(n, iter.Value(), fmt.Sprintf("%s.outputs[%d]", path, i))
		if err != nil {
			return ir.Relation{}, err
		}
		rows = append(rows, row)
	}
	return ir.NewRelation(ir.MembersHeader, rows...)
}

func compileOutput(n names, v cue.Value, path string) (ir.Tuple, error) {
	values := make(map[string]ir.Term)
	fields, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for fields.Next() {
		label := fields.Label()
		fv := fields.Value()
		field := "?" + strings.ToUpper(label)
		if !contains(ir.MembersHeader, field) {
			return nil, errorAt(fv, path+"."+label, "unknown member field %q", label)
		}

		switch {
		case outputIntFields[field]:
			i, err := fv.Int64()
			if err != nil {
				return nil, formatCUEError(err)
			}
			values[field] = ir.IntLiteral(i)
		default:
			s, err := fv.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			if outputNameFields[field] {
				t, err := n.resolve(fv, s, path+"."+label)
				if err != nil {
					return nil, err
				}
				values[field] = t
			} else {
				values[field] = ir.Literal(s)
			}
		}
	}

	if _, ok := values[ir.FieldMemberUnique]; !ok {
		return nil, errorAt(v, path, "member_unique_name is required")
	}

	row := make(ir.Tuple, len(ir.MembersHeader))
	for i, field := range ir.MembersHeader {
		if t, ok := values[field]; ok {
			row[i] = t
		} else {
			row[i] = ir.Literal("")
		}
	}
	return row, nil
}

func contains(h ir.Header, field string) bool {
	for _, f := range h {
		if f == field {
			return true
		}
	}
	return false
}

// labelOf returns the last selector of v's path, unquoted.
func labelOf(v cue.Value) string {
	labels := v.Path().Selectors()
	if len(labels) == 0 {
		return ""
	}
	return strings.Trim(labels[len(labels)-1].String(), `"`)
}
