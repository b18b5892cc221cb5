// Package collection implements the base collection store: a keyed
// cache of record sets, each fetched through a caller-supplied loader.
//
// A Key may embed the fingerprint of another collection. When that
// dependency changes, the caller builds a new key and the old entry is
// evicted once the new one is published.
//
// Guarantees:
//   - At most one in-flight fetch per key; concurrent callers share it.
//   - A failed fetch marks the entry StatusError for every waiter. The
//     rows last published under that key stay readable.
//   - No automatic retry and no time-based eviction.
//   - Published entries are never mutated; the key map is swapped under
//     a lock, so readers never see a half-updated key.
//
// A Slot binds one logical resource (for example "progress") to its
// current key and is the Source that derived views read from.
package collection
