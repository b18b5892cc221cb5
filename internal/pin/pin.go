// Package pin replays pin events into per-player pin sets and applies
// the featured-achievement display rule.
package pin

import (
	"maps"
	"slices"

	"github.com/roach88/arcade/internal/achievement"
	"github.com/roach88/arcade/internal/query"
	"github.com/roach88/arcade/internal/record"
)

// DefaultLimit is the number of featured achievements shown per player.
const DefaultLimit = 3

// Policy controls the display rule.
type Policy struct {
	// Limit caps the featured list. Zero or less means DefaultLimit.
	Limit int `json:"limit" yaml:"limit"`
	// FallbackRarest features the rarest completions of a player who has
	// pinned nothing.
	FallbackRarest bool `json:"fallback_rarest" yaml:"fallback_rarest"`
}

// DefaultPolicy returns the standard display policy.
func DefaultPolicy() Policy {
	return Policy{Limit: DefaultLimit, FallbackRarest: true}
}

func (p Policy) limit() int {
	if p.Limit <= 0 {
		return DefaultLimit
	}
	return p.Limit
}

// Sets maps each player to their pinned achievement ids and the time
// each was last pinned.
type Sets map[record.Address]map[string]int64

// Replay folds events into pin sets. Events apply in log order (Seq,
// stable for equal Seq). A non-zero time adds or refreshes a pin; a zero
// time removes it. The last event for a (player, achievement) decides,
// so replaying a log twice, or a log with duplicates, gives the same
// sets.
func Replay(events []record.PinEvent) Sets {
	ordered := query.Sort(events, query.Asc(func(e record.PinEvent) int64 { return e.Seq }))
	sets := make(Sets)
	for _, e := range ordered {
		set := sets[e.Player]
		if e.Removal() {
			if set != nil {
				delete(set, e.AchievementID)
			}
			continue
		}
		if set == nil {
			set = make(map[string]int64)
			sets[e.Player] = set
		}
		set[e.AchievementID] = e.Time
	}
	for player, set := range sets {
		if len(set) == 0 {
			delete(sets, player)
		}
	}
	return sets
}

// Pinned returns the pinned ids of a player in lexicographic order.
func (s Sets) Pinned(player record.Address) []string {
	return slices.Sorted(maps.Keys(s[player]))
}

// IsPinned reports whether player pinned id.
func (s Sets) IsPinned(player record.Address, id string) bool {
	_, ok := s[player][id]
	return ok
}

// Active flattens the sets back into one event per live pin, ordered by
// player then achievement id. Replaying the result yields the same sets.
func (s Sets) Active() []record.PinEvent {
	var out []record.PinEvent
	for _, player := range slices.Sorted(maps.Keys(s)) {
		for _, id := range s.Pinned(player) {
			out = append(out, record.PinEvent{Player: player, AchievementID: id, Time: s[player][id]})
		}
	}
	return out
}

// Mark returns a copy of items with Pinned set from the pin sets.
func Mark(items []achievement.Item, sets Sets) []achievement.Item {
	return query.Map(items, func(it achievement.Item) achievement.Item {
		it.Pinned = sets.IsPinned(it.Player, it.AchievementID)
		return it
	})
}

// Select applies the display rule for one player: at most Limit items
// that are both pinned and completed, rarest first, then by achievement
// id. A player with no pins gets their rarest completions instead when
// the policy allows it. Pinned items are matched on the pin sets, not
// on Item.Pinned.
func Select(player record.Address, sets Sets, items []achievement.Item, policy Policy) []achievement.Item {
	completed := query.Rows(achievement.CompletedBy(items, player))

	candidates := completed
	if len(sets[player]) > 0 {
		candidates = completed.Where(func(it achievement.Item) bool {
			return sets.IsPinned(player, it.AchievementID)
		})
	} else if !policy.FallbackRarest {
		return nil
	}

	return candidates.
		OrderBy(query.Asc(func(it achievement.Item) float64 { return it.Percentage })).
		OrderBy(query.Asc(func(it achievement.Item) string { return it.AchievementID })).
		OrderBy(query.Asc(func(it achievement.Item) string { return it.Project })).
		Limit(policy.limit()).
		Run()
}
