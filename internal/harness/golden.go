package harness

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/sebdah/goldie/v2"

	"github.com/roach88/arcade/internal/achievement"
	"github.com/roach88/arcade/internal/discovery"
	"github.com/roach88/arcade/internal/engine"
	"github.com/roach88/arcade/internal/leaderboard"
	"github.com/roach88/arcade/internal/query"
)

// Snapshot is the end state of a scenario as stored in golden files.
// Players are labelled by username, or by lowercase address when they
// have no account.
type Snapshot struct {
	Scenario    string         `json:"scenario"`
	Passes      int            `json:"passes"`
	Leaderboard []StandingRow  `json:"leaderboard"`
	Projects    []ProjectBoard `json:"projects"`
	Featured    []FeaturedRow  `json:"featured"`
	Feed        []FeedRow      `json:"feed"`
	Missing     []string       `json:"missing"`
}

// StandingRow is one leaderboard row.
type StandingRow struct {
	Rank      int    `json:"rank"`
	Player    string `json:"player"`
	Earnings  uint64 `json:"earnings"`
	Completed int    `json:"completed"`
}

// ProjectBoard is the full leaderboard of one project.
type ProjectBoard struct {
	Project string        `json:"project"`
	Rows    []StandingRow `json:"rows"`
}

// FeaturedRow lists a player's featured achievements as project/id.
type FeaturedRow struct {
	Player       string   `json:"player"`
	Achievements []string `json:"achievements"`
}

// FeedRow is one session of the discovery feed.
type FeedRow struct {
	Project      string   `json:"project"`
	Player       string   `json:"player"`
	Start        int64    `json:"start"`
	End          int64    `json:"end"`
	Achievements []string `json:"achievements"`
	Earnings     uint64   `json:"earnings"`
}

func capture(name string, passes int, eng *engine.Engine, n *names) *Snapshot {
	standing := func(rows []leaderboard.Entry) []StandingRow {
		return query.Map(rows, func(e leaderboard.Entry) StandingRow {
			return StandingRow{Rank: e.Rank, Player: n.label(e.Address), Earnings: e.Earnings, Completed: len(e.Completed)}
		})
	}

	global := eng.Leaderboard(engine.LeaderboardRequest{Cap: -1})
	s := &Snapshot{
		Scenario:    name,
		Passes:      passes,
		Leaderboard: standing(global),
		Projects:    []ProjectBoard{},
		Featured:    []FeaturedRow{},
		Missing:     append([]string{}, eng.Missing()...),
	}
	for _, project := range projects(eng) {
		s.Projects = append(s.Projects, ProjectBoard{
			Project: project,
			Rows:    standing(eng.Leaderboard(engine.LeaderboardRequest{Project: project, Cap: -1})),
		})
	}
	for _, e := range global {
		featured := query.Map(eng.Pinned(e.Address), func(it achievement.Item) string {
			return it.Project + "/" + it.AchievementID
		})
		if len(featured) > 0 {
			s.Featured = append(s.Featured, FeaturedRow{Player: n.label(e.Address), Achievements: featured})
		}
	}
	s.Feed = query.Map(eng.Feed(engine.FeedRequest{}), func(a discovery.Activity) FeedRow {
		return FeedRow{
			Project:      a.Project,
			Player:       n.label(a.Player),
			Start:        a.Start,
			End:          a.End,
			Achievements: a.Achievements,
			Earnings:     a.Earnings,
		}
	})
	if s.Feed == nil {
		s.Feed = []FeedRow{}
	}
	return s
}

// Render encodes a snapshot as indented JSON with a trailing newline.
func (s *Snapshot) Render() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden runs a scenario, fails t on any assertion or property
// error, and compares the snapshot with testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result's snapshot against the golden
// file for name.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := result.Snapshot.Render()
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
