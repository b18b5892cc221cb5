package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arcade/internal/testutil"
)

func startRun(t *testing.T, e *Engine, ctx context.Context) <-chan error {
	t.Helper()
	out := make(chan error, 1)
	go func() { out <- e.Run(ctx) }()
	return out
}

func TestRun_ServesRequests(t *testing.T) {
	e := newTestEngine(t, testutil.NewReader(league()))
	first := e.RequestRefresh("startup")
	second := e.RequestRefresh("again")

	stopped := startRun(t, e, context.Background())

	require.NoError(t, <-first)
	require.NoError(t, <-second)
	pass := e.LastPass()
	assert.Equal(t, int64(2), pass.Seq)
	assert.Equal(t, "pass-2", pass.Token)
	assert.Equal(t, "again", pass.Reason)

	e.Stop()
	select {
	case err := <-stopped:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}

	assert.ErrorIs(t, <-e.RequestRefresh("late"), ErrStopped)
}

func TestRun_ContextCancel(t *testing.T) {
	e := newTestEngine(t, testutil.NewReader(league()))
	ctx, cancel := context.WithCancel(context.Background())
	stopped := startRun(t, e, ctx)

	cancel()
	select {
	case err := <-stopped:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_Interval(t *testing.T) {
	e := newTestEngine(t, testutil.NewReader(league()), WithInterval(5*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	startRun(t, e, ctx)

	assert.Eventually(t, func() bool { return e.LastPass().Seq >= 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "interval", e.LastPass().Reason)
}

func TestRefresh_Serialized(t *testing.T) {
	e := newTestEngine(t, testutil.NewReader(league()))

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, e.Refresh(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(4), e.LastPass().Seq)
	assert.Len(t, e.Leaderboard(LeaderboardRequest{Cap: -1}), 4)
}
