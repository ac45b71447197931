package plan

import (
	"strings"

	"github.com/roach88/vcube/internal/ir"
)

// Condition is one hierarchy = member test.
type Condition struct {
	Hierarchy ir.Term
	Member    ir.Term
}

func (c Condition) String() string {
	return c.Hierarchy.Value() + "=" + c.Member.Value()
}

// Conjunction holds when all its conditions hold.
type Conjunction []Condition

func (c Conjunction) String() string {
	parts := make([]string, len(c))
	for i, cond := range c {
		parts[i] = cond.String()
	}
	return "(" + strings.Join(parts, " AND ") + ")"
}

// Filter is a disjunction of conjunctions. An empty Filter selects nothing.
type Filter []Conjunction

func (f Filter) String() string {
	parts := make([]string, len(f))
	for i, c := range f {
		parts[i] = c.String()
	}
	return strings.Join(parts, " OR ")
}

// Hierarchies returns the hierarchies the filter constrains, in first
// occurrence order.
func (f Filter) Hierarchies() []ir.Term {
	seen := make(map[ir.Term]struct{})
	var out []ir.Term
	for _, c := range f {
		for _, cond := range c {
			if _, ok := seen[cond.Hierarchy]; !ok {
				seen[cond.Hierarchy] = struct{}{}
				out = append(out, cond.Hierarchy)
			}
		}
	}
	return out
}

// Matches reports whether the member assignment satisfies f. Hierarchies
// absent from assignment never match.
func (f Filter) Matches(assignment map[ir.Term]ir.Term) bool {
	for _, c := range f {
		ok := true
		for _, cond := range c {
			if m, found := assignment[cond.Hierarchy]; !found || m != cond.Member {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// Members returns the members the filter admits for hierarchy, in
// first occurrence order.
func (f Filter) Members(hierarchy ir.Term) []ir.Term {
	seen := make(map[ir.Term]struct{})
	var out []ir.Term
	for _, c := range f {
		for _, cond := range c {
			if cond.Hierarchy != hierarchy {
				continue
			}
			if _, ok := seen[cond.Member]; !ok {
				seen[cond.Member] = struct{}{}
				out = append(out, cond.Member)
			}
		}
	}
	return out
}
