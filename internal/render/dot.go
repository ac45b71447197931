package render

import (
	"fmt"

	"github.com/emicklei/dot"

	"github.com/roach88/vcube/internal/plan"
)

var fillColors = map[string]string{
	"basecube":    "lightgreen",
	"projection":  "lightblue",
	"slice":       "lightblue",
	"construct":   "lightyellow",
	"rollup":      "lightblue",
	"convertcube": "lightpink",
	"drillacross": "lightcyan",
}

// BuildDotGraph creates a dot.Graph with one node per operator a traversal
// in mode visits and one edge per parent/child link. Node ids follow visit
// order (n1 is the root).
func BuildDotGraph(op plan.Operator, mode plan.Mode) (*dot.Graph, error) {
	if err := plan.Validate(op); err != nil {
		return nil, err
	}

	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "BT") // Leaves at the bottom, data flows up.
	graph.Attr("label", op.String())
	graph.Attr("labelloc", "t")
	graph.Attr("fontsize", "12")

	ids := make(map[plan.Operator]dot.Node)
	err := plan.Walk(op, mode, func(o plan.Operator) error {
		tag := Tag(o)
		label := plan.Name(o)
		if args := plan.Args(o); args != "" {
			label += "\n" + args
		}
		ids[o] = graph.Node(fmt.Sprintf("n%d", len(ids)+1)).
			Attr("label", label).
			Attr("shape", "box").
			Attr("style", "filled,rounded").
			Attr("fillcolor", fillColors[tag]).
			Attr("fontname", "helvetica")
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = plan.Walk(op, mode, func(o plan.Operator) error {
		if !plan.Descends(o, mode) {
			return nil
		}
		children := plan.Children(o)
		for i, child := range children {
			edge := graph.Edge(ids[child], ids[o])
			if len(children) > 1 {
				edge.Attr("label", fmt.Sprintf("input%d", i+1))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return graph, nil
}

// DOT renders the plan as Graphviz source.
func DOT(op plan.Operator, mode plan.Mode) (string, error) {
	graph, err := BuildDotGraph(op, mode)
	if err != nil {
		return "", err
	}
	return graph.String(), nil
}
