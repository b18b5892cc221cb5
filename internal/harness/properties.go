package harness

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/roach88/arcade/internal/engine"
	"github.com/roach88/arcade/internal/follow"
	"github.com/roach88/arcade/internal/leaderboard"
	"github.com/roach88/arcade/internal/pin"
	"github.com/roach88/arcade/internal/record"
	"github.com/roach88/arcade/internal/source"
)

// Property is an invariant that holds for any input.
type Property struct {
	Name  string
	Check func(eng *engine.Engine, data source.Dataset) error
}

// Properties lists every property checked by CheckProperties.
func Properties() []Property {
	return []Property{
		{"earnings_sum_completions", checkEarnings},
		{"ranks_contiguous", checkRanks},
		{"viewer_visible", checkViewerVisible},
		{"pin_replay_idempotent", checkPinReplay},
		{"follow_replay_idempotent", checkFollowReplay},
	}
}

// CheckProperties runs every property. data must be normalized, as
// returned by source.Fixture.Dataset.
func CheckProperties(eng *engine.Engine, data source.Dataset) []string {
	var errors []string
	for _, p := range Properties() {
		if err := p.Check(eng, data); err != nil {
			errors = append(errors, fmt.Sprintf("property %s: %v", p.Name, err))
		}
	}
	return errors
}

// checkEarnings: a player's global earnings are the sum of the earnings
// of their distinct completed achievements.
func checkEarnings(eng *engine.Engine, _ source.Dataset) error {
	for _, e := range eng.Leaderboard(engine.LeaderboardRequest{Cap: -1}) {
		var sum uint64
		seen := make(map[string]bool)
		for _, it := range eng.Items(engine.ItemFilter{Player: e.Address, CompletedOnly: true}) {
			if seen[it.Key()] {
				continue
			}
			seen[it.Key()] = true
			sum += uint64(it.Earning)
		}
		if sum != e.Earnings {
			return fmt.Errorf("%s: earnings %d, completions sum to %d", e.Address, e.Earnings, sum)
		}
	}
	return nil
}

// checkRanks: every board is ranked 1..N with earnings non-increasing.
func checkRanks(eng *engine.Engine, _ source.Dataset) error {
	for _, project := range append([]string{leaderboard.Global}, projects(eng)...) {
		rows := eng.Leaderboard(engine.LeaderboardRequest{Project: project, Cap: -1})
		for i, e := range rows {
			if e.Rank != i+1 {
				return fmt.Errorf("%s: row %d has rank %d", boardName(project), i, e.Rank)
			}
			if i > 0 && e.Earnings > rows[i-1].Earnings {
				return fmt.Errorf("%s: rank %d earns more than rank %d", boardName(project), e.Rank, e.Rank-1)
			}
		}
	}
	return nil
}

// checkViewerVisible: under any cap a ranked viewer sees themself and
// never more than cap rows.
func checkViewerVisible(eng *engine.Engine, _ source.Dataset) error {
	all := eng.Leaderboard(engine.LeaderboardRequest{Cap: -1})
	for limit := 1; limit <= 3; limit++ {
		for _, e := range all {
			rows := eng.Leaderboard(engine.LeaderboardRequest{Viewer: e.Address, Cap: limit})
			if len(rows) > limit {
				return fmt.Errorf("cap %d: %d rows shown", limit, len(rows))
			}
			if _, ok := leaderboard.Find(rows, e.Address); !ok {
				return fmt.Errorf("cap %d: viewer %s (rank %d) not shown", limit, e.Address, e.Rank)
			}
		}
	}
	return nil
}

// checkPinReplay: replaying the pin log twice in a row gives the same
// pin sets as replaying it once.
func checkPinReplay(_ *engine.Engine, data source.Dataset) error {
	once := pin.Replay(data.Pins)
	twice := pin.Replay(doubled(data.Pins, func(e record.PinEvent) int64 { return e.Seq },
		func(e record.PinEvent, seq int64) record.PinEvent { e.Seq = seq; return e }))
	if !reflect.DeepEqual(once, twice) {
		return fmt.Errorf("pin sets changed on replay: %v != %v", once, twice)
	}
	return nil
}

func checkFollowReplay(_ *engine.Engine, data source.Dataset) error {
	once := follow.Replay(data.Follows).Edges()
	twice := follow.Replay(doubled(data.Follows, func(e record.FollowEvent) int64 { return e.Seq },
		func(e record.FollowEvent, seq int64) record.FollowEvent { e.Seq = seq; return e })).Edges()
	if !slices.Equal(once, twice) {
		return fmt.Errorf("follow edges changed on replay: %v != %v", once, twice)
	}
	return nil
}

// doubled appends a copy of log numbered after its last event.
func doubled[T any](log []T, seq func(T) int64, renumber func(T, int64) T) []T {
	var last int64
	for _, e := range log {
		last = max(last, seq(e))
	}
	out := slices.Clone(log)
	for _, e := range log {
		out = append(out, renumber(e, seq(e)+last))
	}
	return out
}

func projects(eng *engine.Engine) []string {
	var out []string
	for _, it := range eng.Items(engine.ItemFilter{}) {
		if !slices.Contains(out, it.Project) {
			out = append(out, it.Project)
		}
	}
	return out
}
