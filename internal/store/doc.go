// Package store provides the SQLite-backed base-cube metadata source.
//
// The store holds one table per metadata relation (cubes, measures,
// dimensions, hierarchies, levels, members). Each column stores the
// N-Triples encoding of one term so a round trip through the store
// reproduces the bundle exactly.
//
// # Critical Patterns
//
// Deterministic Query Results
//   - All reads MUST include: ORDER BY id COLLATE BINARY ASC
//   - Rows come back in import order, so derived bundles are stable
//
// Parameterized Queries
//   - SQL is compiled by internal/querysql; values are never interpolated
//
// Re-import Replaces
//   - Importing a cube first deletes every row of that cube in one
//     transaction
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Store satisfies engine.Source: Open(ctx) hands a BaseCube node a Session
// that leases a pooled connection for each fetch.
package store
