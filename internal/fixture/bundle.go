package fixture

import (
	"fmt"

	"github.com/roach88/vcube/internal/ir"
	"github.com/roach88/vcube/internal/restriction"
)

// Bundles converts every cube of f into its base metadata bundle, in file
// order.
func (f *File) Bundles() ([]*ir.Bundle, error) {
	resolver := restriction.NewPrefixResolver(f.Prefixes)
	out := make([]*ir.Bundle, 0, len(f.Cubes))
	for _, c := range f.Cubes {
		b, err := f.bundle(c, resolver)
		if err != nil {
			return nil, fmt.Errorf("cube %s: %w", c.Name, err)
		}
		out = append(out, b)
	}
	return out, nil
}

// Bundle returns the bundle of the cube named name (as written in the
// file).
func (f *File) Bundle(name string) (*ir.Bundle, error) {
	resolver := restriction.NewPrefixResolver(f.Prefixes)
	for _, c := range f.Cubes {
		if c.Name == name {
			return f.bundle(c, resolver)
		}
	}
	return nil, fmt.Errorf("cube %s not in fixture", name)
}

// builder accumulates rows per relation kind.
type builder struct {
	resolver *restriction.PrefixResolver
	rows     map[ir.Kind][]ir.Tuple
	err      error
}

func (b *builder) term(name string) ir.Term {
	if name == "" {
		return ir.Literal("")
	}
	t, err := b.resolver.Resolve(name)
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("name %q: %w", name, err)
	}
	return t
}

func (b *builder) add(k ir.Kind, row ir.Tuple) {
	b.rows[k] = append(b.rows[k], row)
}

func (f *File) bundle(c Cube, resolver *restriction.PrefixResolver) (*ir.Bundle, error) {
	b := &builder{resolver: resolver, rows: make(map[ir.Kind][]ir.Tuple)}

	catalog := b.term(firstNonEmpty(c.Catalog, f.Catalog))
	schema := b.term(firstNonEmpty(c.Schema, f.Schema))
	cube := b.term(c.Name)
	lit := ir.Literal

	b.add(ir.KindCubes, ir.Tuple{catalog, schema, cube, lit("CUBE"), lit(c.Caption), lit(c.Description)})

	for _, m := range c.Measures {
		b.add(ir.KindMeasures, ir.Tuple{
			catalog, schema, cube,
			b.term(m.Name), lit(localName(m.Name)), lit(m.Caption),
			lit(m.DataType), lit(m.Aggregator), lit(m.Expression),
		})
	}

	for i, d := range c.Dimensions {
		dim := b.term(d.Name)
		b.add(ir.KindDimensions, ir.Tuple{
			catalog, schema, cube,
			lit(localName(d.Name)), dim, lit(d.Caption),
			ir.IntLiteral(int64(i + 1)), lit(d.Type), lit(d.Description),
		})

		for _, h := range d.Hierarchies {
			hier := b.term(h.Name)
			b.add(ir.KindHierarchies, ir.Tuple{
				catalog, schema, cube, dim, hier,
				lit(localName(h.Name)), lit(h.Caption), lit(h.Description),
				ir.IntLiteral(int64(len(h.Levels) - 1)),
			})

			for n, l := range h.Levels {
				level := b.term(l.Name)
				number := ir.IntLiteral(int64(n))
				b.add(ir.KindLevels, ir.Tuple{
					catalog, schema, cube, dim, hier, level,
					lit(l.Caption), lit(localName(l.Name)), lit(l.Description),
					number, ir.IntLiteral(int64(len(l.Members))), lit(l.Type),
				})

				for _, m := range l.Members {
					parent, parentLevel := lit(""), lit("")
					if m.Parent != "" {
						parent = b.term(m.Parent)
						parentLevel = ir.IntLiteral(int64(n - 1))
					}
					b.add(ir.KindMembers, ir.Tuple{
						catalog, schema, cube, dim, hier, level, number,
						lit(localName(m.Name)), b.term(m.Name), lit(m.Caption),
						lit(m.Type), parent, parentLevel,
					})
				}
			}
		}
	}

	if b.err != nil {
		return nil, b.err
	}

	out := &ir.Bundle{}
	for _, k := range ir.Kinds {
		rel, err := ir.NewRelation(k.Header(), b.rows[k]...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out.Set(k, rel)
	}
	return out, nil
}

// localName is the part of a CURIE or IRI after the last ':', '/' or '#'.
func localName(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		switch name[i] {
		case ':', '/', '#':
			return trimBracket(name[i+1:])
		}
	}
	return trimBracket(name)
}

func trimBracket(s string) string {
	if len(s) > 0 && s[len(s)-1] == '>' {
		return s[:len(s)-1]
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
