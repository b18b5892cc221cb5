// Package follow maintains the directed follow graph.
//
// The graph is stored forward only (follower to followed). Followers of
// an address are found by a linear scan over every follower.
package follow

import (
	"maps"
	"slices"

	"github.com/roach88/arcade/internal/query"
	"github.com/roach88/arcade/internal/record"
)

// Graph is an immutable follower adjacency map.
type Graph struct {
	edges map[record.Address]map[record.Address]int64
}

// Replay folds follow events into a graph, in log order (Seq, stable for
// equal Seq). A zero time removes the edge. Self-follows are kept.
func Replay(events []record.FollowEvent) *Graph {
	ordered := query.Sort(events, query.Asc(func(e record.FollowEvent) int64 { return e.Seq }))
	g := &Graph{edges: make(map[record.Address]map[record.Address]int64)}
	for _, e := range ordered {
		out := g.edges[e.Follower]
		if e.Removal() {
			if out != nil {
				delete(out, e.Followed)
				if len(out) == 0 {
					delete(g.edges, e.Follower)
				}
			}
			continue
		}
		if out == nil {
			out = make(map[record.Address]int64)
			g.edges[e.Follower] = out
		}
		out[e.Followed] = e.Time
	}
	return g
}

// Following returns the addresses a follows, sorted.
func (g *Graph) Following(a record.Address) []record.Address {
	return slices.Sorted(maps.Keys(g.edges[a]))
}

// IsFollowing reports whether a follows b.
func (g *Graph) IsFollowing(a, b record.Address) bool {
	_, ok := g.edges[a][b]
	return ok
}

// Followers returns the addresses following b, sorted.
func (g *Graph) Followers(b record.Address) []record.Address {
	var out []record.Address
	for a, set := range g.edges {
		if _, ok := set[b]; ok {
			out = append(out, a)
		}
	}
	slices.Sort(out)
	return out
}

// Count returns the number of edges.
func (g *Graph) Count() int {
	n := 0
	for _, set := range g.edges {
		n += len(set)
	}
	return n
}

// Edge is one follow relation.
type Edge struct {
	Follower record.Address `json:"follower"`
	Followed record.Address `json:"followed"`
	Since    int64          `json:"since"`
}

// Key returns the edge identity.
func (e Edge) Key() string {
	return string(e.Follower) + "/" + string(e.Followed)
}

// Edges lists every edge ordered by follower then followed.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for _, a := range slices.Sorted(maps.Keys(g.edges)) {
		for _, b := range slices.Sorted(maps.Keys(g.edges[a])) {
			out = append(out, Edge{Follower: a, Followed: b, Since: g.edges[a][b]})
		}
	}
	return out
}

// FromEdges rebuilds a graph from its edge list.
func FromEdges(edges []Edge) *Graph {
	g := &Graph{edges: make(map[record.Address]map[record.Address]int64)}
	for _, e := range edges {
		if g.edges[e.Follower] == nil {
			g.edges[e.Follower] = make(map[record.Address]int64)
		}
		g.edges[e.Follower][e.Followed] = e.Since
	}
	return g
}
