package engine

import (
	"fmt"

	"github.com/roach88/arcade/internal/achievement"
	"github.com/roach88/arcade/internal/collection"
	"github.com/roach88/arcade/internal/discovery"
	"github.com/roach88/arcade/internal/fingerprint"
	"github.com/roach88/arcade/internal/follow"
	"github.com/roach88/arcade/internal/leaderboard"
	"github.com/roach88/arcade/internal/pin"
	"github.com/roach88/arcade/internal/query"
	"github.com/roach88/arcade/internal/record"
	"github.com/roach88/arcade/internal/signal"
)

// ItemFilter narrows Items. Zero fields match everything.
type ItemFilter struct {
	Project       string
	Player        record.Address
	CompletedOnly bool
}

// Items returns the achievement items matching f, ordered by project,
// player and achievement id.
func (e *Engine) Items(f ItemFilter) []achievement.Item {
	return query.Filter(e.items.Rows(), func(it achievement.Item) bool {
		return (f.Project == "" || it.Project == f.Project) &&
			(f.Player.IsZero() || it.Player == f.Player) &&
			(!f.CompletedOnly || it.Completed)
	})
}

// Stats returns per-achievement rarity, for one project or for all when
// project is empty.
func (e *Engine) Stats(project string) []achievement.Stats {
	return query.Filter(e.stats.Rows(), func(s achievement.Stats) bool {
		return project == "" || s.Project == project
	})
}

// Missing returns the project/achievement keys seen in progress records
// that have no definition.
func (e *Engine) Missing() []string {
	rows := e.summary.Rows()
	if len(rows) == 0 {
		return nil
	}
	return rows[0].Missing
}

// Pinned returns the featured achievements of player under the engine's
// pin policy.
func (e *Engine) Pinned(player record.Address) []achievement.Item {
	return pin.Select(player, pin.Replay(e.pinned.Rows()), e.items.Rows(), e.policy)
}

// LeaderboardRequest selects a leaderboard view.
type LeaderboardRequest struct {
	// Project selects a per-project board. Empty means global.
	Project string
	// Viewer is kept visible below the cap.
	Viewer record.Address
	// Cap is the number of rows shown. Zero uses the engine default and a
	// negative cap shows every row.
	Cap int
	// Following restricts the board to the viewer and who they follow.
	Following bool
}

// Leaderboard returns the ranked rows selected by req.
func (e *Engine) Leaderboard(req LeaderboardRequest) []leaderboard.Entry {
	entries := e.ranked(req.Project)
	limit := e.limit(req.Cap)
	if req.Following {
		return leaderboard.Following(entries, e.graph(), req.Viewer, limit)
	}
	return leaderboard.Window(entries, limit, req.Viewer)
}

func (e *Engine) ranked(project string) []leaderboard.Entry {
	if project == leaderboard.Global {
		return e.ranking.Rows()
	}
	return leaderboard.Rank(leaderboard.ForProject(e.players.Rows(), project))
}

func (e *Engine) limit(n int) int {
	switch {
	case n > 0:
		return n
	case n < 0:
		return 0
	default:
		return e.cap
	}
}

// FeedRequest selects a discovery feed view.
type FeedRequest struct {
	// Player restricts the feed to one player.
	Player record.Address
	// Following restricts the feed to players Viewer follows.
	Following bool
	Viewer    record.Address
	// AchievementsOnly drops sessions in which nothing was completed.
	AchievementsOnly bool
	// Limit caps the entries. Zero or less returns all.
	Limit int
}

// Feed returns activity entries newest first.
func (e *Engine) Feed(req FeedRequest) []discovery.Activity {
	feed := e.feed.Rows()
	if !req.Player.IsZero() {
		feed = discovery.ForPlayer(feed, req.Player)
	}
	if req.Following {
		feed = discovery.Following(feed, e.graph(), req.Viewer)
	}
	if req.AchievementsOnly {
		feed = discovery.WithAchievements(feed)
	}
	if req.Limit > 0 {
		feed = query.Limit(feed, req.Limit)
	}
	return feed
}

func (e *Engine) graph() *follow.Graph {
	return follow.FromEdges(e.edges.Rows())
}

// Following returns who player follows.
func (e *Engine) Following(player record.Address) []record.Address {
	return e.graph().Following(player)
}

// Followers returns who follows player. This scans every edge.
func (e *Engine) Followers(player record.Address) []record.Address {
	return e.graph().Followers(player)
}

// Profile gathers everything shown for one player.
type Profile struct {
	Address   record.Address      `json:"address"`
	Username  string              `json:"username,omitempty"`
	Global    leaderboard.Entry   `json:"global"`
	Projects  []leaderboard.Entry `json:"projects"`
	Pinned    []achievement.Item  `json:"pinned"`
	Following int                 `json:"following"`
	Followers int                 `json:"followers"`
}

// Profile returns the profile of player. Rank is zero on boards the
// player is absent from.
func (e *Engine) Profile(player record.Address) Profile {
	p := Profile{Address: player}
	if acct, ok := query.Index(e.accounts.Rows(), record.Account.Key)[player.String()]; ok {
		p.Username = acct.Username
	}
	if entry, ok := leaderboard.Find(e.ranking.Rows(), player); ok {
		p.Global = entry
	} else {
		p.Global.Address = player
		p.Global.Username = p.Username
	}
	for _, row := range e.players.Rows() {
		if row.Address != player {
			continue
		}
		if entry, ok := leaderboard.Find(e.ranked(row.Project), player); ok {
			p.Projects = append(p.Projects, entry)
		}
	}
	p.Projects = query.Sort(p.Projects,
		query.Desc(func(x leaderboard.Entry) uint64 { return x.Earnings }),
		query.Asc(func(x leaderboard.Entry) string { return x.Project }),
	)
	p.Pinned = e.Pinned(player)

	g := e.graph()
	p.Following = len(g.Following(player))
	p.Followers = len(g.Followers(player))
	return p
}

// Rows returns the current rows of a view as its typed slice, e.g.
// []achievement.Item for ViewItems.
func (e *Engine) Rows(v View) (any, error) {
	switch v {
	case ViewItems:
		return e.items.Rows(), nil
	case ViewStats:
		return e.stats.Rows(), nil
	case ViewPins:
		return e.pinned.Rows(), nil
	case ViewFollows:
		return e.edges.Rows(), nil
	case ViewPlayers:
		return e.players.Rows(), nil
	case ViewLeaderboard:
		return e.ranking.Rows(), nil
	case ViewFeed:
		return e.feed.Rows(), nil
	}
	return nil, fmt.Errorf("unknown view %q", v)
}

// OnInvalidate registers fn to run whenever view v goes stale. Cancel
// the subscription to stop.
func (e *Engine) OnInvalidate(v View, fn func()) (signal.Subscription, error) {
	lv, ok := e.views[v]
	if !ok {
		return signal.Subscription{}, fmt.Errorf("unknown view %q", v)
	}
	return lv.OnInvalidate(fn), nil
}

// SlotStatus reports the state of one base collection.
type SlotStatus struct {
	Name        string `json:"name"`
	Key         string `json:"key,omitempty"`
	Status      string `json:"status"`
	Rows        int    `json:"rows"`
	Fingerprint string `json:"fingerprint"`
	Error       string `json:"error,omitempty"`
}

// ViewStatus reports the state of one derived view.
type ViewStatus struct {
	Name    string `json:"name"`
	Version uint64 `json:"version"`
	Stale   bool   `json:"stale"`
}

// Status is a point-in-time report on the engine.
type Status struct {
	Pass    Pass         `json:"pass"`
	Slots   []SlotStatus `json:"slots"`
	Views   []ViewStatus `json:"views"`
	Missing []string     `json:"missing,omitempty"`
}

// Status reports every slot and view. It does not recompute views, so
// Missing reflects the last computed aggregation.
func (e *Engine) Status() Status {
	st := Status{
		Pass: e.LastPass(),
		Slots: []SlotStatus{
			slotStatus(e.editions),
			slotStatus(e.trophies),
			slotStatus(e.progress),
			slotStatus(e.sessions),
			slotStatus(e.pins),
			slotStatus(e.follows),
			slotStatus(e.accounts),
		},
	}
	for _, v := range Views() {
		lv := e.views[v]
		st.Views = append(st.Views, ViewStatus{Name: lv.Name(), Version: lv.Version(), Stale: lv.Stale()})
	}
	if !e.summary.Stale() {
		st.Missing = e.Missing()
	}
	return st
}

func slotStatus[T record.Keyed](s *collection.Slot[T]) SlotStatus {
	st := SlotStatus{
		Name:        s.Name(),
		Key:         s.Key().String(),
		Status:      s.Status().String(),
		Rows:        len(s.Rows()),
		Fingerprint: fingerprint.Hex(s.Fingerprint()),
	}
	if err := s.Err(); err != nil {
		st.Error = err.Error()
	}
	return st
}
