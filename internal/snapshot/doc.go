// Package snapshot stores captured record sets in SQLite so the engine
// can run offline.
//
// A snapshot is a read source, not a system of record: every table is a
// copy of what the transport returned at capture time. Store implements
// source.Reader.
//
// # Idempotency
//
// Writes use ON CONFLICT so that importing the same capture twice leaves
// the database unchanged. Progress keeps the highest count seen for a
// task. Events are keyed by their log position (seq).
//
// # Deterministic Reads
//
// Every read has a total ORDER BY ending in a COLLATE BINARY key, so two
// reads of the same file return rows in the same order.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
package snapshot
