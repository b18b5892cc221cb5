// Package record defines the raw record types the arcade stats engine
// derives its views from.
//
// This package is the foundational layer: every other internal package
// imports record, and record imports nothing internal.
//
// Key constraints:
//   - Every record carries its Kind, set at parse time from the source
//     resource, never inferred from the shape of a row
//   - Player identifiers are Address values, which only exist in checksum
//     form (see NormalizeAddress); raw strings never enter a key space
//   - Slices on records are never nil once a record leaves the ingestion
//     boundary
//   - Timestamps are unix seconds; zero means "absent"
package record
