package record

import (
	"maps"
	"slices"
)

// Players returns every distinct address referenced by progress,
// sessions and follow events, sorted.
func Players(progress []ProgressRecord, sessions []Session, follows []FollowEvent) []Address {
	set := make(map[Address]struct{})
	for _, p := range progress {
		set[p.Player] = struct{}{}
	}
	for _, s := range sessions {
		set[s.Player] = struct{}{}
	}
	for _, f := range follows {
		set[f.Follower] = struct{}{}
		set[f.Followed] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}
