// Package leaderboard folds achievement items into per-player earnings
// and ranks them.
//
// INVARIANTS:
//
// Earnings are the sum of point values of DISTINCT completed
// achievements. Duplicate items for the same achievement count once.
//
// Ranks are contiguous and 1-based: N ranked players get 1..N with no
// gaps or repeats. Ties keep insertion order (stable sort), they do not
// share a rank.
//
// SELF-VISIBILITY:
//
// A capped view always contains the viewer. If the viewer ranks below
// the cap, their row replaces the last slot:
//
//	cap=3, viewer rank 7 →  [#1, #2, #7]
//
// The following view applies the same rule after filtering to the
// viewer and the players they follow, with ranks recomputed inside the
// filtered list.
package leaderboard
