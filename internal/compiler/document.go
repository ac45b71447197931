package compiler

import (
	"cuelang.org/go/cue"

	"github.com/roach88/vcube/internal/plan"
	"github.com/roach88/vcube/internal/restriction"
)

// Document is a compiled plan document: its prefix table, correspondences
// and named plans.
//
// A document is the CUE value with the top-level fields
//
//	prefixes:       {<name>: <namespace>, ...}  (optional)
//	correspondence: {<name>: {...}, ...}         (optional)
//	plan:           {<name>: <node>, ...}
type Document struct {
	Prefixes        map[string]string
	Resolver        *restriction.PrefixResolver
	Correspondences map[string]*plan.Correspondence
	Plans           map[string]plan.Operator

	// PlanNames lists the plans in declaration order.
	PlanNames []string
}

// Plan returns the named plan.
func (d *Document) Plan(name string) (plan.Operator, bool) {
	op, ok := d.Plans[name]
	return op, ok
}

// CompileDocument compiles every correspondence and plan of v. Prefixes in
// extra override those declared in the document. Compilation stops at the
// first error.
func CompileDocument(v cue.Value, extra map[string]string) (*Document, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	doc := &Document{
		Prefixes:        make(map[string]string),
		Correspondences: make(map[string]*plan.Correspondence),
		Plans:           make(map[string]plan.Operator),
	}

	if pv := v.LookupPath(cue.ParsePath("prefixes")); pv.Exists() {
		iter, err := pv.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			ns, err := iter.Value().String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			doc.Prefixes[iter.Label()] = ns
		}
	}
	for name, ns := range extra {
		doc.Prefixes[name] = ns
	}
	doc.Resolver = restriction.NewPrefixResolver(doc.Prefixes)

	if cv := v.LookupPath(cue.ParsePath("correspondence")); cv.Exists() {
		iter, err := cv.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			corr, err := CompileCorrespondence(iter.Value(), doc.Resolver)
			if err != nil {
				return nil, err
			}
			doc.Correspondences[corr.Name()] = corr
		}
	}

	if pv := v.LookupPath(cue.ParsePath("plan")); pv.Exists() {
		iter, err := pv.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			op, err := CompilePlan(iter.Value(), doc.Correspondences, doc.Resolver)
			if err != nil {
				return nil, err
			}
			name := iter.Label()
			doc.Plans[name] = op
			doc.PlanNames = append(doc.PlanNames, name)
		}
	}

	if len(doc.Plans) == 0 {
		return nil, errorAt(v, "plan", "at least one plan is required")
	}
	return doc, nil
}
