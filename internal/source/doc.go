// Package source is the ingestion boundary between the transport and
// the collection store.
//
// A Transport returns raw response documents shaped as
//
//	[{"meta": {"project": "g1"}, "<resource>": [ ...rows... ]}, ...]
//
// and a Client turns them into typed records:
//   - one envelope per project is flattened into a single sequence,
//     with the envelope project attached to every row
//   - an absent or null resource array is an empty sequence
//   - every address is normalized to checksum form
//   - a row failing its shape check is dropped and logged as a
//     validation error; the rest of the batch is kept
//   - pin and follow events are numbered in document order (Seq)
//
// Code past this boundary never re-checks for absent arrays or raw
// addresses.
package source
