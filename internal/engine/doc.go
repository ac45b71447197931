// Package engine derives the metadata bundle of a logical plan.
//
// The engine mirrors a plan.Operator tree with a tree of physical Nodes,
// one per operator. BaseCube leaves fetch the six base relations of their
// cube from a Source; every other node is a pure transform of its
// children's bundles (see the Derive* functions).
//
// ARCHITECTURE:
//
//	plan.Operator ──Build──▶ Node tree ──Evaluate──▶ *ir.Bundle
//
// Evaluation is single-threaded and recursive:
//  1. Init every node in pre-order (leaves open a Session)
//  2. Produce the root, which pulls its children's bundles
//  3. Close every node, whatever happened before
//
// FAILURE POLICY:
//
// The first failure aborts the evaluation with a PlanningError. Teardown
// still closes every node; close failures are attached to the primary
// error and never replace it.
package engine
