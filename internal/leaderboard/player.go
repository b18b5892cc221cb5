package leaderboard

import (
	"slices"

	"github.com/roach88/arcade/internal/achievement"
	"github.com/roach88/arcade/internal/query"
	"github.com/roach88/arcade/internal/record"
)

// Global is the Project value of cross-project players.
const Global = ""

// Player is the derived standing of one address in one project, or
// across all projects when Project is Global.
type Player struct {
	Project      string         `json:"project,omitempty"`
	Address      record.Address `json:"address"`
	Username     string         `json:"username,omitempty"`
	Earnings     uint64         `json:"earnings"`
	Completed    []string       `json:"completed"`
	LastActivity int64          `json:"last_activity,omitempty"`
}

// Key returns the player identity.
func (p Player) Key() string {
	return p.Project + "/" + string(p.Address)
}

type playerKey struct {
	project string
	address record.Address
}

// BuildPlayers derives per-project players from items, in the order
// their first item appears. Usernames come from accounts; an address
// without an account keeps an empty username.
func BuildPlayers(items []achievement.Item, accounts []record.Account) []Player {
	keys, groups := query.GroupBy(items, func(it achievement.Item) playerKey {
		return playerKey{it.Project, it.Player}
	})

	players := make([]Player, 0, len(keys))
	for _, k := range keys {
		p := Player{Project: k.project, Address: k.address, Completed: []string{}}
		seen := make(map[string]bool)
		for _, it := range groups[k] {
			if !it.Completed || seen[it.AchievementID] {
				continue
			}
			seen[it.AchievementID] = true
			p.Earnings += uint64(it.Earning)
			p.Completed = append(p.Completed, it.AchievementID)
			p.LastActivity = max(p.LastActivity, it.CompletedAt)
		}
		slices.Sort(p.Completed)
		players = append(players, p)
	}
	return WithUsernames(players, accounts)
}

// WithUsernames left-joins players to accounts on address.
func WithUsernames(players []Player, accounts []record.Account) []Player {
	joined := query.LeftJoin(players, accounts,
		func(p Player) record.Address { return p.Address },
		func(a record.Account) record.Address { return a.Address })
	return query.Map(joined, func(j query.Joined[Player, record.Account]) Player {
		p := j.Left
		if j.Matched {
			p.Username = j.Right.Username
		}
		return p
	})
}

// Aggregate sums per-project players into global players. Completed ids
// are qualified as project/id.
func Aggregate(players []Player) []Player {
	keys, groups := query.GroupBy(players, func(p Player) record.Address { return p.Address })
	out := make([]Player, 0, len(keys))
	for _, addr := range keys {
		g := Player{Project: Global, Address: addr, Completed: []string{}}
		for _, p := range groups[addr] {
			g.Earnings += p.Earnings
			g.LastActivity = max(g.LastActivity, p.LastActivity)
			if g.Username == "" {
				g.Username = p.Username
			}
			for _, id := range p.Completed {
				g.Completed = append(g.Completed, p.Project+"/"+id)
			}
		}
		slices.Sort(g.Completed)
		out = append(out, g)
	}
	return out
}

// ForProject returns the players of one project, preserving order.
func ForProject(players []Player, project string) []Player {
	return query.Filter(players, func(p Player) bool { return p.Project == project })
}
