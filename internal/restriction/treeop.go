package restriction

import (
	"github.com/roach88/vcube/internal/ir"
)

// TreeOp is a member tree-navigation tag. Values match the olap4j
// Member.TreeOp bitmask so clients can pass the integer through unchanged.
type TreeOp int

const (
	TreeOpChildren    TreeOp = 1
	TreeOpSiblings    TreeOp = 2
	TreeOpParent      TreeOp = 4
	TreeOpSelf        TreeOp = 8
	TreeOpDescendants TreeOp = 16
	TreeOpAncestors   TreeOp = 32
)

var allTreeOps = []TreeOp{
	TreeOpChildren, TreeOpSiblings, TreeOpParent,
	TreeOpSelf, TreeOpDescendants, TreeOpAncestors,
}

func (op TreeOp) String() string {
	switch op {
	case TreeOpChildren:
		return "CHILDREN"
	case TreeOpSiblings:
		return "SIBLINGS"
	case TreeOpParent:
		return "PARENT"
	case TreeOpSelf:
		return "SELF"
	case TreeOpDescendants:
		return "DESCENDANTS"
	case TreeOpAncestors:
		return "ANCESTORS"
	default:
		return "UNKNOWN"
	}
}

// DecodeTreeOps resolves a bitmask into its tags. Unknown bits are ignored.
func DecodeTreeOps(mask int) []TreeOp {
	var ops []TreeOp
	for _, op := range allTreeOps {
		if mask&int(op) != 0 {
			ops = append(ops, op)
		}
	}
	return ops
}

// ApplyTreeOps narrows a members relation to the tree neighbourhood of
// r.Member selected by r.TreeOps. Navigation follows PARENT_UNIQUE_NAME.
// Without a member or tree ops the relation is returned unchanged. Output
// rows keep the input order.
func ApplyTreeOps(members ir.Relation, r Restriction) (ir.Relation, error) {
	if r.Member.IsZero() || len(r.TreeOps) == 0 {
		return members, nil
	}
	ui, ok := members.Index(ir.FieldMemberUnique)
	if !ok {
		return ir.Relation{}, ir.NewPlanningError(ir.ErrCodeMissingField, "members relation has no %s", ir.FieldMemberUnique)
	}
	pi, ok := members.Index(ir.FieldParentUnique)
	if !ok {
		return ir.Relation{}, ir.NewPlanningError(ir.ErrCodeMissingField, "members relation has no %s", ir.FieldParentUnique)
	}

	parent := make(map[ir.Term]ir.Term, members.Len())
	children := make(map[ir.Term][]ir.Term)
	for _, row := range members.Rows() {
		m, p := row[ui], row[pi]
		parent[m] = p
		if !isNone(p) {
			children[p] = append(children[p], m)
		}
	}

	self := r.Member
	selected := make(map[ir.Term]struct{})
	add := func(t ir.Term) {
		if !isNone(t) {
			selected[t] = struct{}{}
		}
	}

	for _, op := range r.TreeOps {
		switch op {
		case TreeOpSelf:
			add(self)
		case TreeOpChildren:
			for _, c := range children[self] {
				add(c)
			}
		case TreeOpParent:
			add(parent[self])
		case TreeOpSiblings:
			if p, ok := parent[self]; ok && !isNone(p) {
				for _, s := range children[p] {
					if s != self {
						add(s)
					}
				}
			}
		case TreeOpDescendants:
			stack := append([]ir.Term(nil), children[self]...)
			for len(stack) > 0 {
				n := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if _, seen := selected[n]; seen {
					continue
				}
				add(n)
				stack = append(stack, children[n]...)
			}
		case TreeOpAncestors:
			seen := map[ir.Term]struct{}{self: {}}
			for p := parent[self]; !isNone(p); p = parent[p] {
				if _, loop := seen[p]; loop {
					break
				}
				seen[p] = struct{}{}
				add(p)
			}
		}
	}

	return members.Filter(func(row ir.Tuple) bool {
		_, ok := selected[row[ui]]
		return ok
	}), nil
}

// isNone reports whether a parent reference is absent. Fixtures encode the
// root's parent either as the zero term or as an empty literal.
func isNone(t ir.Term) bool {
	return t.IsZero() || (t.Kind() == ir.KindLiteral && t.Value() == "")
}
