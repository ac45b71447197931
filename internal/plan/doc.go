// Package plan provides the logical operator algebra for virtual cubes.
//
// A plan is a strict tree of Operators rooted at the operator whose
// metadata the client asks for. Leaves are BaseCubes; every other node owns
// one or two children exclusively.
//
// OPERATORS:
//
//	BaseCube       leaf, a cube published as Linked Data
//	Projection     keep a subset of measures
//	Slice          remove dimensions
//	Dice           attach a disjunctive member filter
//	Rollup         coarsen hierarchies to a level
//	ConvertCube    reinterpret one cube (or merge two) under a correspondence
//	DrillAcross    combine two cubes over shared dimensions
//
// SEALED INTERFACE:
//
// Operator is sealed with a marker method, so consumers can switch over the
// seven variants exhaustively:
//
//	switch o := op.(type) {
//	case *BaseCube:
//	case *Projection:
//	...
//	}
//
// RENDERING:
//
// Every operator implements fmt.Stringer with a stable grammar that tests
// and logs depend on, e.g.
//
//	Projection (Rollup (Slice (BaseCube (ex:Sales), {ex:Time}), {ex:Geo : ex:Country}), {ex:Revenue})
//
// TRAVERSAL:
//
// Accept drives a Visitor over a plan in pre-order, left to right. The
// traversal Mode decides whether Slice and DrillAcross nodes are descended:
// in ModeDerived their folded bundle is authoritative and their children are
// not visited.
package plan
