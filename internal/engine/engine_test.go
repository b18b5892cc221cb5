package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arcade/internal/achievement"
	"github.com/roach88/arcade/internal/discovery"
	"github.com/roach88/arcade/internal/leaderboard"
	"github.com/roach88/arcade/internal/pin"
	"github.com/roach88/arcade/internal/query"
	"github.com/roach88/arcade/internal/record"
	"github.com/roach88/arcade/internal/source"
	"github.com/roach88/arcade/internal/testutil"
)

var (
	alice = testutil.Addr(1)
	bob   = testutil.Addr(2)
	carol = testutil.Addr(3)
	dave  = testutil.Addr(4)
)

// league: bob and alice play g1, carol and alice play g2. dave has
// progress on an achievement g1 never defined.
func league() source.Dataset {
	return source.Dataset{
		Editions: []record.Edition{
			testutil.Edition("g1", "Season One", 2),
			testutil.Edition("g2", "Season Two", 1),
		},
		Trophies: []record.TrophyDefinition{
			testutil.Trophy("g1", "a1", 10, testutil.Task("t1", 5)),
			testutil.Trophy("g1", "a2", 20, testutil.Task("t1", 1), testutil.Task("t2", 1)),
			testutil.Trophy("g2", "b1", 40, testutil.Task("t1", 3)),
		},
		Progress: []record.ProgressRecord{
			testutil.Progress("g1", alice, "a1", "t1", 5, 5, 150),
			testutil.Progress("g1", alice, "a2", "t1", 1, 1, 160),
			testutil.Progress("g1", alice, "a2", "t2", 0, 1, 0),
			testutil.Progress("g1", bob, "a1", "t1", 5, 5, 250),
			testutil.Progress("g1", bob, "a2", "t1", 1, 1, 260),
			testutil.Progress("g1", bob, "a2", "t2", 1, 1, 270),
			testutil.Progress("g1", dave, "ghost", "t1", 1, 1, 400),
			testutil.Progress("g2", alice, "b1", "t1", 1, 3, 0),
			testutil.Progress("g2", carol, "b1", "t1", 3, 3, 300),
		},
		Sessions: []record.Session{
			testutil.Session("g1", alice, 100, 200, "spin"),
			testutil.Session("g1", bob, 240, 280),
			testutil.Session("g2", carol, 290, 310),
		},
		Accounts: []record.Account{
			testutil.Account(alice, "alice"),
			testutil.Account(bob, "bob"),
			testutil.Account(carol, "carol"),
		},
		Pins: []record.PinEvent{
			testutil.Pin(alice, "a1", 10),
		},
		Follows: []record.FollowEvent{
			testutil.Follow(alice, bob, 5),
			testutil.Follow(alice, carol, 6),
			testutil.Follow(alice, carol, 0),
		},
	}
}

func newTestEngine(t *testing.T, r source.Reader, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithTokenGenerator(testutil.NewSequenceTokens(""))}, opts...)
	e := New(r, opts...)
	t.Cleanup(e.Close)
	return e
}

func refreshed(t *testing.T, opts ...Option) (*Engine, *testutil.Reader) {
	t.Helper()
	r := testutil.NewReader(league())
	e := newTestEngine(t, r, opts...)
	require.NoError(t, e.Refresh(context.Background()))
	return e, r
}

func addresses(entries []leaderboard.Entry) []record.Address {
	return query.Map(entries, func(e leaderboard.Entry) record.Address { return e.Address })
}

func ranks(entries []leaderboard.Entry) []int {
	return query.Map(entries, func(e leaderboard.Entry) int { return e.Rank })
}

func achievementIDs(items []achievement.Item) []string {
	return query.Map(items, func(it achievement.Item) string { return it.AchievementID })
}

func TestEngine_NothingBeforeRefresh(t *testing.T) {
	r := testutil.NewReader(league())
	e := newTestEngine(t, r)

	assert.Empty(t, e.Items(ItemFilter{}))
	assert.Empty(t, e.Leaderboard(LeaderboardRequest{}))
	assert.Zero(t, r.Calls(record.KindTrophy), "views never fetch")
	assert.Zero(t, e.LastPass().Seq)
}

func TestEngine_Items(t *testing.T) {
	e, _ := refreshed(t)

	items := e.Items(ItemFilter{Player: alice})
	require.Len(t, items, 3)
	assert.Equal(t, []string{"a1", "a2", "b1"}, achievementIDs(items))

	a1 := items[0]
	assert.True(t, a1.Completed)
	assert.True(t, a1.Pinned)
	assert.Equal(t, int64(150), a1.CompletedAt)
	assert.False(t, items[1].Completed, "task t2 is still open")
	assert.False(t, items[2].Completed)

	completed := e.Items(ItemFilter{Project: "g1", CompletedOnly: true})
	assert.Len(t, completed, 4, "alice a1, bob a1, bob a2, dave ghost")

	assert.Equal(t, []string{"g1/ghost"}, e.Missing())
}

func TestEngine_Stats(t *testing.T) {
	e, _ := refreshed(t)

	stats := query.Index(e.Stats("g1"), achievement.Stats.Key)
	assert.InDelta(t, 200.0/3, stats["g1/a1"].Percentage, 0.001)
	assert.InDelta(t, 100.0/3, stats["g1/a2"].Percentage, 0.001)
	assert.Equal(t, 3, stats["g1/a1"].Players)

	g2 := e.Stats("g2")
	require.Len(t, g2, 1)
	assert.InDelta(t, 50.0, g2[0].Percentage, 0.001)
}

func TestEngine_GlobalLeaderboard(t *testing.T) {
	e, _ := refreshed(t)

	board := e.Leaderboard(LeaderboardRequest{Cap: -1})
	assert.Equal(t, []record.Address{carol, bob, alice, dave}, addresses(board))
	assert.Equal(t, []int{1, 2, 3, 4}, ranks(board))
	assert.Equal(t, []uint64{40, 30, 10, 0}, query.Map(board, func(e leaderboard.Entry) uint64 { return e.Earnings }))
	assert.Equal(t, "carol", board[0].Username)
	assert.Empty(t, board[3].Username, "dave has no account")
}

func TestEngine_LeaderboardSelfVisibility(t *testing.T) {
	e, _ := refreshed(t)

	tests := []struct {
		name      string
		req       LeaderboardRequest
		wantAddrs []record.Address
		wantRanks []int
	}{
		{
			name:      "viewer below cap replaces last slot",
			req:       LeaderboardRequest{Cap: 2, Viewer: alice},
			wantAddrs: []record.Address{carol, alice},
			wantRanks: []int{1, 3},
		},
		{
			name:      "viewer inside cap",
			req:       LeaderboardRequest{Cap: 2, Viewer: bob},
			wantAddrs: []record.Address{carol, bob},
			wantRanks: []int{1, 2},
		},
		{
			name:      "per project",
			req:       LeaderboardRequest{Project: "g1", Cap: 2, Viewer: dave},
			wantAddrs: []record.Address{bob, dave},
			wantRanks: []int{1, 3},
		},
		{
			name:      "following re-ranks within the followed set",
			req:       LeaderboardRequest{Following: true, Viewer: alice},
			wantAddrs: []record.Address{bob, alice},
			wantRanks: []int{1, 2},
		},
		{
			name:      "following with cap keeps viewer",
			req:       LeaderboardRequest{Following: true, Viewer: alice, Cap: 1},
			wantAddrs: []record.Address{alice},
			wantRanks: []int{2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := e.Leaderboard(tt.req)
			assert.Equal(t, tt.wantAddrs, addresses(board))
			assert.Equal(t, tt.wantRanks, ranks(board))
		})
	}
}

func TestEngine_DisplayCapDefault(t *testing.T) {
	e, _ := refreshed(t, WithDisplayCap(2))

	board := e.Leaderboard(LeaderboardRequest{Viewer: dave})
	assert.Equal(t, []record.Address{carol, dave}, addresses(board))
}

func TestEngine_Pinned(t *testing.T) {
	e, _ := refreshed(t)

	assert.Equal(t, []string{"a1"}, achievementIDs(e.Pinned(alice)))
	assert.Equal(t, []string{"a2", "a1"}, achievementIDs(e.Pinned(bob)), "rarest completions first")
	assert.Empty(t, e.Pinned(testutil.Addr(99)))

	strict, _ := refreshed(t, WithPinPolicy(pin.Policy{Limit: 3}))
	assert.Empty(t, strict.Pinned(bob), "no fallback without pins")
}

func TestEngine_Follows(t *testing.T) {
	e, _ := refreshed(t)

	assert.Equal(t, []record.Address{bob}, e.Following(alice))
	assert.Equal(t, []record.Address{alice}, e.Followers(bob))
	assert.Empty(t, e.Followers(carol), "unfollowed")
}

func TestEngine_Feed(t *testing.T) {
	e, _ := refreshed(t)

	feed := e.Feed(FeedRequest{})
	require.Len(t, feed, 3)
	assert.Equal(t, []record.Address{carol, bob, alice},
		query.Map(feed, func(a discovery.Activity) record.Address { return a.Player }))

	assert.Equal(t, []string{"a1", "a2"}, feed[1].Achievements)
	assert.Equal(t, uint64(30), feed[1].Earnings)
	assert.Equal(t, "Season One", feed[2].Edition)
	assert.Equal(t, "alice", feed[2].Username)
	assert.Equal(t, []string{"spin"}, feed[2].Actions)

	following := e.Feed(FeedRequest{Following: true, Viewer: alice})
	require.Len(t, following, 1)
	assert.Equal(t, bob, following[0].Player)

	assert.Len(t, e.Feed(FeedRequest{Player: alice}), 1)
	assert.Len(t, e.Feed(FeedRequest{Limit: 2}), 2)
}

func TestEngine_Profile(t *testing.T) {
	e, _ := refreshed(t)

	p := e.Profile(bob)
	assert.Equal(t, "bob", p.Username)
	assert.Equal(t, 2, p.Global.Rank)
	assert.Equal(t, uint64(30), p.Global.Earnings)
	require.Len(t, p.Projects, 1)
	assert.Equal(t, "g1", p.Projects[0].Project)
	assert.Equal(t, 1, p.Projects[0].Rank)
	assert.Equal(t, []string{"a2", "a1"}, achievementIDs(p.Pinned))
	assert.Equal(t, 0, p.Following)
	assert.Equal(t, 1, p.Followers)

	nobody := e.Profile(testutil.Addr(99))
	assert.Zero(t, nobody.Global.Rank)
	assert.Empty(t, nobody.Projects)
}

func TestEngine_FailedLoadKeepsLastRows(t *testing.T) {
	ctx := context.Background()
	e, r := refreshed(t)

	boom := errors.New("indexer down")
	r.Fail(record.KindProgress, boom)
	err := e.Refresh(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, record.IsFetchError(err))

	st := slotByName(t, e.Status(), "progress")
	assert.Equal(t, "error", st.Status)
	assert.Contains(t, st.Error, "indexer down")
	assert.Equal(t, "ready", slotByName(t, e.Status(), "trophies").Status, "other slots load independently")

	board := e.Leaderboard(LeaderboardRequest{Cap: -1})
	assert.Equal(t, []record.Address{carol, bob, alice, dave}, addresses(board), "stale rows stay readable")

	r.Fail(record.KindProgress, nil)
	require.NoError(t, e.Refresh(ctx))
	assert.Equal(t, "ready", slotByName(t, e.Status(), "progress").Status)
}

func TestEngine_InvalidatesOnlyOnChange(t *testing.T) {
	ctx := context.Background()
	r := testutil.NewReader(league())
	e := newTestEngine(t, r)

	var fired atomic.Int32
	sub, err := e.OnInvalidate(ViewLeaderboard, func() { fired.Add(1) })
	require.NoError(t, err)
	defer sub.Cancel()

	require.NoError(t, e.Refresh(ctx))
	assert.Positive(t, fired.Load())
	e.Leaderboard(LeaderboardRequest{})

	before := fired.Load()
	require.NoError(t, e.Refresh(ctx))
	assert.Equal(t, before, fired.Load(), "identical data publishes nothing")

	d := league()
	d.Progress = append(d.Progress, testutil.Progress("g2", bob, "b1", "t1", 3, 3, 500))
	r.Set(d)
	require.NoError(t, e.Refresh(ctx))
	assert.Greater(t, fired.Load(), before)

	board := e.Leaderboard(LeaderboardRequest{Cap: 1})
	assert.Equal(t, []record.Address{bob}, addresses(board))
	assert.Equal(t, uint64(70), board[0].Earnings)
}

func TestEngine_DefinitionChangeRecomputes(t *testing.T) {
	ctx := context.Background()
	e, r := refreshed(t)

	entry, ok := leaderboard.Find(e.Leaderboard(LeaderboardRequest{Cap: -1}), carol)
	require.True(t, ok)
	assert.Equal(t, uint64(40), entry.Earnings)

	var fired atomic.Int32
	sub, err := e.OnInvalidate(ViewLeaderboard, func() { fired.Add(1) })
	require.NoError(t, err)
	defer sub.Cancel()

	d := league()
	d.Trophies[2] = testutil.Trophy("g2", "b1", 400, testutil.Task("t1", 3))
	r.Set(d)
	require.NoError(t, e.Refresh(ctx))
	assert.Positive(t, fired.Load(), "a changed earning under the same key invalidates")

	entry, ok = leaderboard.Find(e.Leaderboard(LeaderboardRequest{Cap: -1}), carol)
	require.True(t, ok)
	assert.Equal(t, uint64(400), entry.Earnings)

	items := e.Items(ItemFilter{Project: "g2", Player: carol})
	require.Len(t, items, 1)
	assert.Equal(t, uint32(400), items[0].Earning)

	// A changed task total also counts: carol's 3 of 3 no longer completes.
	d.Trophies[2] = testutil.Trophy("g2", "b1", 400, testutil.Task("t1", 5))
	r.Set(d)
	require.NoError(t, e.Refresh(ctx))
	entry, ok = leaderboard.Find(e.Leaderboard(LeaderboardRequest{Cap: -1}), carol)
	require.True(t, ok)
	assert.Zero(t, entry.Earnings)
	assert.Empty(t, entry.Completed)
}

func TestEngine_KeysFollowProjects(t *testing.T) {
	ctx := context.Background()
	e, r := refreshed(t)

	assert.Regexp(t, `^trophies\(g1,g2\)@[0-9a-f]{16}$`, slotByName(t, e.Status(), "trophies").Key)

	d := league()
	d.Editions = d.Editions[:1]
	r.Set(d)
	require.NoError(t, e.Refresh(ctx))

	assert.Regexp(t, `^trophies\(g1\)@[0-9a-f]{16}$`, slotByName(t, e.Status(), "trophies").Key)
	board := e.Leaderboard(LeaderboardRequest{Cap: -1})
	assert.Equal(t, []record.Address{bob, alice, dave}, addresses(board), "g2 dropped")
}

func TestEngine_Registry(t *testing.T) {
	r := testutil.NewReader(league())
	e := newTestEngine(t, r, WithRegistry([]record.Edition{testutil.Edition("g2", "Season Two", 0)}))
	require.NoError(t, e.Refresh(context.Background()))

	assert.Zero(t, r.Calls(record.KindEdition))
	board := e.Leaderboard(LeaderboardRequest{Cap: -1})
	assert.Equal(t, []record.Address{carol, alice}, addresses(board))
}

func TestEngine_AccountsFollowPlayerSet(t *testing.T) {
	ctx := context.Background()
	e, r := refreshed(t)
	first := slotByName(t, e.Status(), "accounts").Key

	require.NoError(t, e.Refresh(ctx))
	assert.Equal(t, first, slotByName(t, e.Status(), "accounts").Key)

	d := league()
	d.Sessions = append(d.Sessions, testutil.Session("g1", testutil.Addr(5), 1, 2))
	r.Set(d)
	require.NoError(t, e.Refresh(ctx))
	assert.NotEqual(t, first, slotByName(t, e.Status(), "accounts").Key)
}

func TestEngine_Views(t *testing.T) {
	e, _ := refreshed(t)

	rows, err := e.Rows(ViewFeed)
	require.NoError(t, err)
	assert.Len(t, rows.([]discovery.Activity), 3)

	for _, v := range Views() {
		_, err := e.Rows(v)
		assert.NoError(t, err, v)
	}

	_, err = e.Rows("nope")
	assert.Error(t, err)
	_, err = e.OnInvalidate("nope", func() {})
	assert.Error(t, err)
}

func TestEngine_Status(t *testing.T) {
	e, _ := refreshed(t)
	e.Items(ItemFilter{})

	st := e.Status()
	assert.Equal(t, int64(1), st.Pass.Seq)
	assert.Equal(t, "pass-1", st.Pass.Token)
	require.Len(t, st.Slots, 7)
	for _, s := range st.Slots {
		assert.Equal(t, "ready", s.Status, s.Name)
	}
	assert.Equal(t, 3, slotByName(t, st, "sessions").Rows)
	assert.Equal(t, []string{"g1/ghost"}, st.Missing)
	require.Len(t, st.Views, len(Views()))
}

func TestEngine_CloseStopsRefresh(t *testing.T) {
	e := New(testutil.NewReader(league()))
	e.Close()
	e.Close()

	assert.ErrorIs(t, e.Refresh(context.Background()), ErrStopped)
}

func slotByName(t *testing.T, st Status, name string) SlotStatus {
	t.Helper()
	for _, s := range st.Slots {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("no slot %q", name)
	return SlotStatus{}
}
