package compiler

import (
	"cuelang.org/go/cue"

	"github.com/roach88/vcube/internal/ir"
	"github.com/roach88/vcube/internal/restriction"
)

// names turns the string names of a CUE document into terms.
type names struct {
	resolver restriction.NameResolver
}

func (n names) stringAt(v cue.Value, field, path string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", errorAt(v, path+"."+field, "%s is required", field)
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// term resolves the string at field.
func (n names) term(v cue.Value, field, path string) (ir.Term, error) {
	s, err := n.stringAt(v, field, path)
	if err != nil {
		return ir.Term{}, err
	}
	return n.resolve(v.LookupPath(cue.ParsePath(field)), s, path+"."+field)
}

func (n names) resolve(v cue.Value, s, path string) (ir.Term, error) {
	t, err := n.resolver.Resolve(s)
	if err != nil {
		return ir.Term{}, errorAt(v, path, "cannot resolve %q: %v", s, err)
	}
	return t, nil
}

// keyList resolves a list of names into a single-column relation.
func (n names) keyList(v cue.Value, key, path string) (ir.Relation, error) {
	terms, err := n.termList(v, path)
	if err != nil {
		return ir.Relation{}, err
	}
	return ir.KeyRelation(key, terms...), nil
}

func (n names) termList(v cue.Value, path string) ([]ir.Term, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var terms []ir.Term
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		t, err := n.resolve(iter.Value(), s, path)
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, nil
}
