package leaderboard

import (
	"github.com/roach88/arcade/internal/follow"
	"github.com/roach88/arcade/internal/query"
	"github.com/roach88/arcade/internal/record"
)

// Entry is a ranked player.
type Entry struct {
	Rank int `json:"rank"`
	Player
}

// Rank orders players by earnings, highest first, and assigns
// contiguous ranks from 1.
func Rank(players []Player) []Entry {
	sorted := query.Sort(players, query.Desc(func(p Player) uint64 { return p.Earnings }))
	return renumber(query.Map(sorted, func(p Player) Entry { return Entry{Player: p} }))
}

func renumber(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		e.Rank = i + 1
		out[i] = e
	}
	return out
}

// Find returns the entry of address.
func Find(entries []Entry, address record.Address) (Entry, bool) {
	for _, e := range entries {
		if e.Address == address {
			return e, true
		}
	}
	return Entry{}, false
}

// Window caps ranked entries at limit, keeping the viewer visible.
//
// A limit of zero or less returns every entry. An empty or unranked
// viewer gets the plain top entries.
func Window(entries []Entry, limit int, viewer record.Address) []Entry {
	if limit <= 0 || len(entries) <= limit {
		return entries
	}
	top := entries[:limit]
	if viewer.IsZero() {
		return top
	}
	me, ok := Find(entries, viewer)
	if !ok || me.Rank <= limit {
		return top
	}
	out := make([]Entry, 0, limit)
	out = append(out, entries[:limit-1]...)
	return append(out, me)
}

// Following restricts ranked entries to the viewer and the addresses the
// viewer follows, re-ranks them, and applies Window.
func Following(entries []Entry, graph *follow.Graph, viewer record.Address, limit int) []Entry {
	filtered := query.Filter(entries, func(e Entry) bool {
		return e.Address == viewer || graph.IsFollowing(viewer, e.Address)
	})
	return Window(renumber(filtered), limit, viewer)
}
