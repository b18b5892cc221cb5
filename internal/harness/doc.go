// Package harness runs YAML scenarios against an engine fed from an
// in-memory reader.
//
// # Scenario Format
//
//	name: pins_fallback
//	description: "Players without pins feature their rarest completions"
//	config:
//	  cap: 2
//	  pin_fallback: true
//	data:
//	  editions: [...]
//	  trophies: [...]
//	  progress: [...]
//	updates:
//	  - progress: [...]   # appended, then another refresh pass
//	assertions:
//	  - type: item
//	    project: g1
//	    player: alice
//	    achievement: a1
//	    expect: { completed: true, earning: 10 }
//	  - type: leaderboard
//	    viewer: alice
//	    cap: 2
//	    players: [carol, alice]
//	    ranks: [1, 3]
//
// Players may be named by username or by address. The data section is a
// source.Dataset and is normalized the same way the transport client
// normalizes responses.
//
// # Assertion Types
//
//   - item: subset match on one derived achievement item
//   - earnings: a player's earnings in a project, or globally
//   - pinned: a player's featured achievements, in display order
//   - leaderboard: players and ranks of a leaderboard view
//   - feed: achievements correlated with one session
//   - following: who a player follows
//   - missing: achievements seen in progress without a definition
//
// # Properties
//
// Every scenario is also checked against the invariants that hold for
// any input: earnings equal the sum of distinct completions, ranks are
// contiguous, the viewer stays visible below the cap, and replaying a
// pin or follow log twice changes nothing. See CheckProperties.
//
// # Determinism
//
// Pass tokens come from testutil.SequenceTokens and every view is
// ordered, so the rendered Snapshot is byte-stable for golden files:
//
//	go test ./internal/harness -update
package harness
