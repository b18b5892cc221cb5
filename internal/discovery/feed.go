// Package discovery correlates play sessions with achievement
// completions into a chronological activity feed.
package discovery

import (
	"slices"
	"strconv"

	"github.com/roach88/arcade/internal/achievement"
	"github.com/roach88/arcade/internal/follow"
	"github.com/roach88/arcade/internal/query"
	"github.com/roach88/arcade/internal/record"
)

// Activity is one session in the feed.
type Activity struct {
	Project  string         `json:"project"`
	Edition  string         `json:"edition,omitempty"`
	Game     string         `json:"game,omitempty"`
	Player   record.Address `json:"player"`
	Username string         `json:"username,omitempty"`
	Start    int64          `json:"start"`
	End      int64          `json:"end"`
	Actions  []string       `json:"actions"`
	// Achievements completed by the player in this project inside the
	// closed window [Start, End], oldest first.
	Achievements []string `json:"achievements"`
	Earnings     uint64   `json:"earnings"`
}

// Key returns the activity identity.
func (a Activity) Key() string {
	return a.Project + "/" + string(a.Player) + "/" + strconv.FormatInt(a.Start, 10)
}

type owner struct {
	project string
	player  record.Address
}

// Correlate builds the feed, newest session end first. Ties are broken
// by start time, then project, then player.
//
// Usernames and edition names are left-joined: a session whose account
// or edition is unknown keeps empty fields.
func Correlate(sessions []record.Session, items []achievement.Item, accounts []record.Account, editions []record.Edition) []Activity {
	completed := query.Filter(items, func(it achievement.Item) bool { return it.Completed })
	completed = query.Sort(completed,
		query.Asc(func(it achievement.Item) int64 { return it.CompletedAt }),
		query.Asc(func(it achievement.Item) string { return it.AchievementID }),
	)
	_, byOwner := query.GroupBy(completed, func(it achievement.Item) owner {
		return owner{it.Project, it.Player}
	})

	withAccount := query.LeftJoin(sessions, accounts,
		func(s record.Session) record.Address { return s.Player },
		func(a record.Account) record.Address { return a.Address })
	withEdition := query.LeftJoin(withAccount, editions,
		func(j query.Joined[record.Session, record.Account]) string { return j.Left.Project },
		func(e record.Edition) string { return e.Project })

	feed := query.Map(withEdition, func(j query.Joined[query.Joined[record.Session, record.Account], record.Edition]) Activity {
		s := j.Left.Left
		a := Activity{
			Project:      s.Project,
			Player:       s.Player,
			Start:        s.Start,
			End:          s.End,
			Actions:      slices.Clone(s.Actions),
			Achievements: []string{},
		}
		if a.Actions == nil {
			a.Actions = []string{}
		}
		if j.Left.Matched {
			a.Username = j.Left.Right.Username
		}
		if j.Matched {
			a.Edition = j.Right.Name
			a.Game = j.Right.Game
		}
		for _, it := range byOwner[owner{s.Project, s.Player}] {
			if s.Contains(it.CompletedAt) {
				a.Achievements = append(a.Achievements, it.AchievementID)
				a.Earnings += uint64(it.Earning)
			}
		}
		return a
	})

	return query.Sort(feed,
		query.Desc(func(a Activity) int64 { return a.End }),
		query.Desc(func(a Activity) int64 { return a.Start }),
		query.Asc(func(a Activity) string { return a.Project }),
		query.Asc(func(a Activity) string { return string(a.Player) }),
	)
}

// ForPlayer returns the feed entries of one player.
func ForPlayer(feed []Activity, player record.Address) []Activity {
	return query.Filter(feed, func(a Activity) bool { return a.Player == player })
}

// Following returns the feed entries of players the viewer follows.
func Following(feed []Activity, graph *follow.Graph, viewer record.Address) []Activity {
	return query.Filter(feed, func(a Activity) bool { return graph.IsFollowing(viewer, a.Player) })
}

// WithAchievements drops sessions in which nothing was completed.
func WithAchievements(feed []Activity) []Activity {
	return query.Filter(feed, func(a Activity) bool { return len(a.Achievements) > 0 })
}
