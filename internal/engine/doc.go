// Package engine wires the base collections, the derived views and the
// refresh loop into one read API.
//
// ARCHITECTURE:
//
// Base collections:
// One collection.Store holds every fetched record set. Each logical
// resource (editions, trophies, progress, sessions, pins, follows,
// accounts) is a collection.Slot bound to its current key. Keys embed
// the fingerprint of what they depend on, so a new project set or a new
// player set means a new key and the old entry is evicted.
//
// Derived views:
// Views are query.Live values built from the slots. A slot that
// publishes marks every downstream view stale; the view recomputes in
// full on its next read. Views never fetch.
//
//	editions ─┐
//	trophies ─┼─► summary ─► items ─► players ─► leaderboard
//	progress ─┘               ▲   │       ▲
//	pins ───────────► pins ───┘   └───────┼───► feed ◄─ sessions
//	accounts ─────────────────────────────┘       ▲
//	follows ────────► follows                      editions, accounts
//
// Refresh passes:
// A pass loads editions first, then the project-scoped resources
// concurrently, then accounts for the observed player set. Passes are
// serialized. Run serves queued refresh requests one at a time, each
// stamped by the logical Clock and tagged with a pass token.
//
// A failed load leaves the slot in collection.StatusError with its last
// rows intact. Nothing here is fatal: the worst outcome is a stale view.
package engine
