// Package fingerprint computes cheap content fingerprints over key
// sequences.
//
// A fingerprint answers one question: has the membership of a collection
// changed? It is a 64-bit xxhash over the keys, not a cryptographic
// digest. Collisions are tolerated as a rare cache-staleness risk.
//
// Of is order-sensitive. Callers that want set semantics sort first
// (OfSorted does this on a copy).
package fingerprint

import (
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/roach88/arcade/internal/record"
)

// domain prefixes every digest. The version suffix allows migrating the
// algorithm without silently reusing stale cache keys.
const domain = "arcade/fingerprint/v1"

// Empty is the fingerprint of an empty key sequence.
var Empty = Of(nil)

// Of hashes keys in the given order.
// Format: xxhash64(domain + 0x00 + key1 + 0x00 + key2 + 0x00 ...)
// The null separator keeps ["ab","c"] and ["a","bc"] apart.
func Of(keys []string) uint64 {
	d := xxhash.New()
	d.WriteString(domain)
	d.Write([]byte{0x00})
	for _, k := range keys {
		d.WriteString(k)
		d.Write([]byte{0x00})
	}
	return d.Sum64()
}

// Sorted returns a sorted copy of keys. The input is not modified.
func Sorted(keys []string) []string {
	out := slices.Clone(keys)
	slices.Sort(out)
	return out
}

// OfSorted hashes the set of keys: the result does not depend on input
// order.
func OfSorted(keys []string) uint64 {
	return Of(Sorted(keys))
}

// Records fingerprints the membership of a record set.
func Records[T record.Keyed](rows []T) uint64 {
	return OfSorted(record.Keys(rows))
}

// Hex renders a fingerprint as 16 lowercase hex digits, suitable for
// embedding in cache keys.
func Hex(fp uint64) string {
	return fmt.Sprintf("%016x", fp)
}
