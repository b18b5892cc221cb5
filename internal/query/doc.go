// Package query provides the relational operator layer used to build
// derived collections.
//
// ARCHITECTURE:
//
// Operators are pure functions over row slices. A Query composes them
// into a pipeline over one or more upstream Sources; Materialize turns a
// Query into a Live collection that recomputes when an upstream changes.
//
//	[Source] ─┐
//	          ├─ Query: From → Where → Join → Select → OrderBy → Limit
//	[Source] ─┘                                              ↓
//	                                               Live (getKey identity)
//
// OPERATORS:
//   - Filter: predicate over one row; unmatched rows dropped
//   - InnerJoin / LeftJoin: hash equi-join on a caller-normalized key;
//     left row order is preserved, matches follow right row order
//   - Map: pure projection, no I/O
//   - Sort with Asc/Desc comparators: stable; each additional OrderBy
//     call on a Query adds a LOWER-precedence tie-break key
//   - Limit: first N rows after sorting
//   - Reduce: left fold with explicit seed, for scalar aggregates
//
// RECOMPUTATION MODEL:
//
// A Live collection recomputes in full when any upstream it reads has
// published a change. There is no per-row patching. Invalidation is
// eager (observers are told immediately), recomputation is lazy (it
// happens on the next Rows call).
//
// Join keys must be normalized before they reach this package. Comparing
// a raw address with a checksum address is a bug in the caller, and no
// operator here attempts to repair it.
package query
