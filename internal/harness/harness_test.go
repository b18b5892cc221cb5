package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arcade/internal/record"
	"github.com/roach88/arcade/internal/source"
)

func TestRun_AllScenariosPass(t *testing.T) {
	for _, name := range []string{"completion", "pins", "sessions", "social"} {
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
			require.NoError(t, err)

			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Equal(t, 1+len(s.Updates), result.Passes)
			require.NotNil(t, result.Snapshot)
			assert.Equal(t, name, result.Snapshot.Scenario)
		})
	}
}

func TestRun_ReportsFailedAssertions(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: wrong
description: "expects the wrong earnings"
data:
  trophies:
    - { project: g1, id: a1, earning: 10, tasks: [{ id: t1, total: 1 }] }
  progress:
    - { project: g1, player: "0xa", achievement_id: a1, task_id: t1, count: 1, total: 1, completed_at: 5 }
assertions:
  - type: earnings
    player: "0xa"
    earnings: 11
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Expected: 11")
}

func TestRun_UpdatesRefresh(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: growing
description: "a later completion moves the board"
data:
  trophies:
    - { project: g1, id: a1, earning: 10, tasks: [{ id: t1, total: 2 }] }
  accounts:
    - { address: "0xa", username: alice }
  progress:
    - { project: g1, player: "0xa", achievement_id: a1, task_id: t1, count: 1, total: 2 }
updates:
  - progress:
      - { project: g1, player: "0xa", achievement_id: a1, task_id: t1, count: 2, total: 2, completed_at: 9 }
  - accounts:
      - { address: "0xb", username: bob }
assertions:
  - type: earnings
    player: alice
    earnings: 10
  - type: item
    project: g1
    player: alice
    achievement: a1
    expect: { completed: true, completed_at: 9 }
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, 3, result.Passes)
	require.Len(t, result.Snapshot.Leaderboard, 1)
	assert.Equal(t, uint64(10), result.Snapshot.Leaderboard[0].Earnings)
}

func TestAppendDataset(t *testing.T) {
	base := source.Dataset{Pins: []record.PinEvent{{AchievementID: "a1", Time: 1}}}
	update := source.Dataset{Pins: []record.PinEvent{{AchievementID: "a2", Time: 2}}}

	got := appendDataset(base, update)
	require.Len(t, got.Pins, 2)
	assert.Equal(t, "a2", got.Pins[1].AchievementID)
	assert.Len(t, base.Pins, 1, "base must not be modified")
}
