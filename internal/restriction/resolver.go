package restriction

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/vcube/internal/ir"
)

// PrefixResolver expands compact names ("ex:Sales") with a prefix table.
// Names in angle brackets or with an unknown prefix are taken as IRIs
// unchanged; literals and blank nodes are parsed as terms.
type PrefixResolver struct {
	prefixes map[string]string
}

// NewPrefixResolver creates a resolver from prefix → namespace pairs.
func NewPrefixResolver(prefixes map[string]string) *PrefixResolver {
	p := make(map[string]string, len(prefixes))
	for k, v := range prefixes {
		p[k] = v
	}
	return &PrefixResolver{prefixes: p}
}

// ParsePrefixes parses "name=namespace" pairs as given on the command line.
func ParsePrefixes(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, ns, ok := strings.Cut(pair, "=")
		if !ok || name == "" || ns == "" {
			return nil, fmt.Errorf("invalid prefix %q: want name=namespace", pair)
		}
		out[name] = ns
	}
	return out, nil
}

// Resolve implements NameResolver.
func (p *PrefixResolver) Resolve(name string) (ir.Term, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ir.Term{}, fmt.Errorf("empty name")
	}
	if strings.HasPrefix(name, "<") || strings.HasPrefix(name, "_:") || strings.HasPrefix(name, `"`) {
		return ir.ParseTerm(name)
	}
	if prefix, local, ok := strings.Cut(name, ":"); ok && p != nil {
		if ns, known := p.prefixes[prefix]; known {
			return ir.IRI(ns + local), nil
		}
	}
	return ir.IRI(name), nil
}

// Compact is the inverse of Resolve for display: it shortens an IRI with
// the longest matching namespace.
func (p *PrefixResolver) Compact(t ir.Term) string {
	if t.Kind() != ir.KindIRI || p == nil {
		return t.Value()
	}
	iri := t.Value()
	names := make([]string, 0, len(p.prefixes))
	for name := range p.prefixes {
		names = append(names, name)
	}
	sort.Strings(names)
	best, bestNS := "", ""
	for _, name := range names {
		ns := p.prefixes[name]
		if strings.HasPrefix(iri, ns) && len(ns) > len(bestNS) {
			best, bestNS = name, ns
		}
	}
	if bestNS == "" {
		return iri
	}
	return best + ":" + strings.TrimPrefix(iri, bestNS)
}
