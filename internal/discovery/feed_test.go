package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arcade/internal/achievement"
	"github.com/roach88/arcade/internal/follow"
	"github.com/roach88/arcade/internal/record"
)

var (
	p1 = record.MustAddress("0x1")
	p2 = record.MustAddress("0x2")
)

func completion(project string, player record.Address, id string, at int64) achievement.Item {
	return achievement.Item{
		Project: project, Player: player, AchievementID: id,
		Completed: true, CompletedAt: at, Earning: 10,
	}
}

func TestCorrelate_SessionWindow(t *testing.T) {
	sessions := []record.Session{{Project: "g", Player: p1, Start: 1000, End: 2000, Actions: []string{"move"}}}
	items := []achievement.Item{
		completion("g", p1, "inside", 1500),
		completion("g", p1, "after", 2500),
		completion("g", p1, "edge", 2000),
		completion("other", p1, "wrong-project", 1500),
		completion("g", p2, "wrong-player", 1500),
		{Project: "g", Player: p1, AchievementID: "unfinished"},
	}

	feed := Correlate(sessions, items, nil, nil)
	require.Len(t, feed, 1)
	assert.Equal(t, []string{"inside", "edge"}, feed[0].Achievements)
	assert.Equal(t, uint64(20), feed[0].Earnings)
	assert.Equal(t, []string{"move"}, feed[0].Actions)
}

func TestCorrelate_JoinsAndOrder(t *testing.T) {
	sessions := []record.Session{
		{Project: "g1", Player: p1, Start: 10, End: 20},
		{Project: "g2", Player: p2, Start: 15, End: 30},
		{Project: "g1", Player: p2, Start: 12, End: 20},
		{Project: "g0", Player: p2, Start: 12, End: 20},
	}
	accounts := []record.Account{{Address: p1, Username: "ann"}}
	editions := []record.Edition{{Project: "g1", Name: "Season One", Game: "Loot"}}

	feed := Correlate(sessions, nil, accounts, editions)
	require.Len(t, feed, 4)

	var keys []string
	for _, a := range feed {
		keys = append(keys, a.Key())
	}
	assert.Equal(t, []string{
		"g2/" + string(p2) + "/15",
		"g0/" + string(p2) + "/12",
		"g1/" + string(p2) + "/12",
		"g1/" + string(p1) + "/10",
	}, keys)

	last := feed[3]
	assert.Equal(t, "ann", last.Username)
	assert.Equal(t, "Season One", last.Edition)
	assert.Equal(t, "Loot", last.Game)
	assert.Empty(t, feed[0].Username)
	assert.Empty(t, feed[0].Edition)
	assert.NotNil(t, feed[0].Achievements)
	assert.NotNil(t, feed[0].Actions)
}

func TestFilters(t *testing.T) {
	sessions := []record.Session{
		{Project: "g", Player: p1, Start: 1, End: 5},
		{Project: "g", Player: p2, Start: 1, End: 5},
	}
	feed := Correlate(sessions, []achievement.Item{completion("g", p2, "x", 3)}, nil, nil)

	assert.Len(t, ForPlayer(feed, p1), 1)

	graph := follow.Replay([]record.FollowEvent{{Follower: p1, Followed: p2, Time: 1}})
	following := Following(feed, graph, p1)
	require.Len(t, following, 1)
	assert.Equal(t, p2, following[0].Player)

	withAch := WithAchievements(feed)
	require.Len(t, withAch, 1)
	assert.Equal(t, p2, withAch[0].Player)
}
