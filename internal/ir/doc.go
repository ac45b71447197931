// Package ir provides the value and table model shared by every vcube package.
//
// This package contains the leaf types only. All other internal packages
// import ir; ir imports nothing internal. This keeps the term and relation
// model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Terms are immutable and comparable with == (usable as map keys)
//   - Lexical forms are NFC normalised on construction
//   - Relations always carry a header of unique "?"-prefixed field tokens
//   - Field lookup goes through the header, never through fixed positions
//   - Relations are values: every operation returns a new Relation
package ir
