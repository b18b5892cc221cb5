package follow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arcade/internal/record"
)

var (
	ann = record.MustAddress("0x1")
	ben = record.MustAddress("0x2")
	cy  = record.MustAddress("0x3")
)

func ev(from, to record.Address, at, seq int64) record.FollowEvent {
	return record.FollowEvent{Follower: from, Followed: to, Time: at, Seq: seq}
}

func TestReplay(t *testing.T) {
	g := Replay([]record.FollowEvent{
		ev(ann, ben, 10, 1),
		ev(ann, cy, 20, 2),
		ev(ben, cy, 30, 3),
		ev(ann, ben, 0, 4),
		ev(cy, cy, 40, 5),
	})

	assert.Equal(t, []record.Address{cy}, g.Following(ann))
	assert.False(t, g.IsFollowing(ann, ben))
	assert.True(t, g.IsFollowing(ben, cy))
	assert.True(t, g.IsFollowing(cy, cy), "self-follow is not filtered")
	assert.Equal(t, []record.Address{ann, ben, cy}, g.Followers(cy))
	assert.Empty(t, g.Followers(ann))
	assert.Equal(t, 3, g.Count())

	edges := g.Edges()
	require.Len(t, edges, 3)
	assert.Equal(t, Edge{Follower: ann, Followed: cy, Since: 20}, edges[0])
}

func TestReplay_Idempotent(t *testing.T) {
	log := []record.FollowEvent{
		ev(ann, ben, 10, 1),
		ev(ann, cy, 20, 2),
		ev(ann, ben, 0, 3),
	}
	var doubled []record.FollowEvent
	for _, e := range log {
		doubled = append(doubled, e, e)
	}

	assert.Equal(t, Replay(log).Edges(), Replay(doubled).Edges())
	assert.Equal(t, Replay(log).Edges(), Replay(append(log, log...)).Edges())
}

func TestReplay_UnfollowUnknown(t *testing.T) {
	g := Replay([]record.FollowEvent{ev(ann, ben, 0, 1)})
	assert.Zero(t, g.Count())
	assert.Empty(t, g.Following(ann))
}

func TestEdgesRoundTrip(t *testing.T) {
	g := Replay([]record.FollowEvent{ev(ben, ann, 5, 1), ev(ann, cy, 6, 2)})
	edges := g.Edges()
	assert.Equal(t, []Edge{
		{Follower: ann, Followed: cy, Since: 6},
		{Follower: ben, Followed: ann, Since: 5},
	}, edges)
	assert.Equal(t, edges, FromEdges(edges).Edges())
}
