package harness

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/roach88/arcade/internal/achievement"
	"github.com/roach88/arcade/internal/engine"
	"github.com/roach88/arcade/internal/leaderboard"
	"github.com/roach88/arcade/internal/query"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // assertion type
	Subject  string // what was looked at, e.g. "g1/alice/a1"
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s", e.Type)
	if e.Subject != "" {
		fmt.Fprintf(&buf, " (%s)", e.Subject)
	}
	fmt.Fprintf(&buf, "\n  Expected: %s\n  Actual: %s\n", e.Expected, e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion against the engine's
// current views. It returns one message per failed assertion.
func EvaluateAssertions(eng *engine.Engine, n *names, assertions []Assertion) []string {
	var errors []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertItem:
			err = assertItem(eng, n, a)
		case AssertEarnings:
			err = assertEarnings(eng, n, a)
		case AssertPinned:
			err = assertPinned(eng, n, a)
		case AssertLeaderboard:
			err = assertLeaderboard(eng, n, a)
		case AssertFeed:
			err = assertFeed(eng, n, a)
		case AssertFollowing:
			err = assertFollowing(eng, n, a)
		case AssertMissing:
			err = assertMissing(eng, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errors = append(errors, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errors
}

// assertItem subset-matches one item against its JSON form. Extra fields
// on the item are ignored.
func assertItem(eng *engine.Engine, n *names, a Assertion) error {
	player, err := n.resolve(a.Player)
	if err != nil {
		return err
	}
	subject := a.Project + "/" + a.Player + "/" + a.Achievement

	items := eng.Items(engine.ItemFilter{Project: a.Project, Player: player})
	idx := slices.IndexFunc(items, func(it achievement.Item) bool { return it.AchievementID == a.Achievement })
	if idx < 0 {
		return &AssertionError{Type: AssertItem, Subject: subject, Expected: "item present", Actual: "no item"}
	}

	actual, err := itemFields(items[idx])
	if err != nil {
		return err
	}
	for _, key := range sortedKeys(a.Expect) {
		got, ok := actual[key]
		if !ok {
			return &AssertionError{Type: AssertItem, Subject: subject,
				Expected: fmt.Sprintf("%s=%v", key, a.Expect[key]), Actual: "field absent"}
		}
		if !valuesEqual(got, a.Expect[key]) {
			return &AssertionError{Type: AssertItem, Subject: subject,
				Expected: fmt.Sprintf("%s=%v", key, a.Expect[key]), Actual: fmt.Sprintf("%s=%v", key, got)}
		}
	}
	return nil
}

func itemFields(it achievement.Item) (map[string]any, error) {
	data, err := json.Marshal(it)
	if err != nil {
		return nil, fmt.Errorf("marshal item: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return m, nil
}

// assertEarnings checks a player's earnings on one board. An absent
// player has earned nothing.
func assertEarnings(eng *engine.Engine, n *names, a Assertion) error {
	player, err := n.resolve(a.Player)
	if err != nil {
		return err
	}
	var got uint64
	board := eng.Leaderboard(engine.LeaderboardRequest{Project: a.Project, Cap: -1})
	if e, ok := leaderboard.Find(board, player); ok {
		got = e.Earnings
	}
	if got != *a.Earnings {
		return &AssertionError{Type: AssertEarnings, Subject: boardName(a.Project) + "/" + a.Player,
			Expected: fmt.Sprint(*a.Earnings), Actual: fmt.Sprint(got)}
	}
	return nil
}

func assertPinned(eng *engine.Engine, n *names, a Assertion) error {
	player, err := n.resolve(a.Player)
	if err != nil {
		return err
	}
	got := query.Map(eng.Pinned(player), func(it achievement.Item) string { return it.AchievementID })
	if !slices.Equal(got, a.Achievements) {
		return &AssertionError{Type: AssertPinned, Subject: a.Player,
			Expected: fmt.Sprint(a.Achievements), Actual: fmt.Sprint(got)}
	}
	return nil
}

func assertLeaderboard(eng *engine.Engine, n *names, a Assertion) error {
	viewer, err := n.resolve(a.Viewer)
	if err != nil {
		return err
	}
	rows := eng.Leaderboard(engine.LeaderboardRequest{
		Project:   a.Project,
		Viewer:    viewer,
		Cap:       a.Cap,
		Following: a.Following,
	})
	subject := boardName(a.Project)
	if a.Viewer != "" {
		subject += " as " + a.Viewer
	}

	got := query.Map(rows, func(e leaderboard.Entry) string { return n.label(e.Address) })
	want, err := canonical(n, a.Players)
	if err != nil {
		return err
	}
	if !slices.Equal(got, want) {
		return &AssertionError{Type: AssertLeaderboard, Subject: subject,
			Expected: fmt.Sprint(want), Actual: fmt.Sprint(got)}
	}
	if len(a.Ranks) > 0 {
		ranks := query.Map(rows, func(e leaderboard.Entry) int { return e.Rank })
		if !slices.Equal(ranks, a.Ranks) {
			return &AssertionError{Type: AssertLeaderboard, Subject: subject,
				Expected: fmt.Sprintf("ranks %v", a.Ranks), Actual: fmt.Sprintf("ranks %v", ranks)}
		}
	}
	return nil
}

func assertFeed(eng *engine.Engine, n *names, a Assertion) error {
	player, err := n.resolve(a.Player)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("%s@%d", a.Player, a.Start)
	for _, act := range eng.Feed(engine.FeedRequest{Player: player}) {
		if act.Start != a.Start || (a.Project != "" && act.Project != a.Project) {
			continue
		}
		if !slices.Equal(act.Achievements, a.Achievements) {
			return &AssertionError{Type: AssertFeed, Subject: subject,
				Expected: fmt.Sprint(a.Achievements), Actual: fmt.Sprint(act.Achievements)}
		}
		return nil
	}
	return &AssertionError{Type: AssertFeed, Subject: subject, Expected: "session present", Actual: "no session"}
}

// assertFollowing compares followed players as a set.
func assertFollowing(eng *engine.Engine, n *names, a Assertion) error {
	player, err := n.resolve(a.Player)
	if err != nil {
		return err
	}
	got := n.labels(eng.Following(player))
	want, err := canonical(n, a.Players)
	if err != nil {
		return err
	}
	sort.Strings(got)
	sort.Strings(want)
	if !slices.Equal(got, want) {
		return &AssertionError{Type: AssertFollowing, Subject: a.Player,
			Expected: fmt.Sprint(want), Actual: fmt.Sprint(got)}
	}
	return nil
}

func assertMissing(eng *engine.Engine, a Assertion) error {
	got := slices.Clone(eng.Missing())
	want := slices.Clone(a.Keys)
	sort.Strings(got)
	sort.Strings(want)
	if !slices.Equal(got, want) {
		return &AssertionError{Type: AssertMissing, Expected: fmt.Sprint(want), Actual: fmt.Sprint(got)}
	}
	return nil
}

// canonical rewrites player references as labels.
func canonical(n *names, players []string) ([]string, error) {
	out := make([]string, len(players))
	for i, p := range players {
		a, err := n.resolve(p)
		if err != nil {
			return nil, err
		}
		out[i] = n.label(a)
	}
	return out, nil
}

func boardName(project string) string {
	if project == leaderboard.Global {
		return "global"
	}
	return project
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// valuesEqual compares a decoded JSON value with a YAML value. Numbers
// compare by value whatever their Go type; addresses compare without
// regard to case.
func valuesEqual(actual, expected any) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}
	if a, ok := toFloat(actual); ok {
		e, ok := toFloat(expected)
		return ok && a == e
	}
	if a, ok := actual.(string); ok {
		e, ok := expected.(string)
		if !ok {
			return false
		}
		if strings.HasPrefix(a, "0x") {
			return strings.EqualFold(a, e)
		}
		return a == e
	}
	return reflect.DeepEqual(actual, expected)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
