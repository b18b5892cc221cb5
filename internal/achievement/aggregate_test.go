package achievement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arcade/internal/record"
)

var (
	abc = record.MustAddress("0xABC")
	def = record.MustAddress("0x1DEF")
	fed = record.MustAddress("0x2FED")
)

func trophy(project, id string, earning uint32, tasks ...record.Task) record.TrophyDefinition {
	return record.TrophyDefinition{Project: project, ID: id, Earning: earning, Tasks: tasks}
}

func progress(project string, player record.Address, ach, task string, count, total uint32, at int64) record.ProgressRecord {
	return record.ProgressRecord{
		Project: project, Player: player, AchievementID: ach, TaskID: task,
		Count: count, Total: total, CompletedAt: at,
	}
}

func TestAggregate_SingleTaskCompletion(t *testing.T) {
	defs := []record.TrophyDefinition{trophy("g1", "a1", 10, record.Task{ID: "t1", Total: 5})}
	res := Aggregate(defs, []record.ProgressRecord{progress("g1", abc, "a1", "t1", 5, 5, 100)})

	require.Len(t, res.Items, 1)
	item := res.Items[0]
	assert.True(t, item.Completed)
	assert.True(t, item.Defined)
	assert.Equal(t, uint32(10), item.Earning)
	assert.Equal(t, int64(100), item.CompletedAt)
	assert.InDelta(t, 100.0, item.Percentage, 1e-9)
	assert.Empty(t, res.Missing)
}

func TestAggregate_EveryTaskRequired(t *testing.T) {
	defs := []record.TrophyDefinition{trophy("g1", "a1", 10,
		record.Task{ID: "t1", Total: 1},
		record.Task{ID: "t2", Total: 3},
	)}

	tests := []struct {
		name      string
		progress  []record.ProgressRecord
		completed bool
		at        int64
	}{
		{
			name:     "missing task record",
			progress: []record.ProgressRecord{progress("g1", abc, "a1", "t1", 1, 1, 50)},
		},
		{
			name: "one task short",
			progress: []record.ProgressRecord{
				progress("g1", abc, "a1", "t1", 1, 1, 50),
				progress("g1", abc, "a1", "t2", 2, 3, 0),
			},
		},
		{
			name: "all tasks reached",
			progress: []record.ProgressRecord{
				progress("g1", abc, "a1", "t1", 1, 1, 50),
				progress("g1", abc, "a1", "t2", 4, 3, 70),
			},
			completed: true,
			at:        70,
		},
		{
			name: "definition total overrides record total",
			progress: []record.ProgressRecord{
				progress("g1", abc, "a1", "t1", 1, 1, 50),
				progress("g1", abc, "a1", "t2", 2, 2, 60),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Aggregate(defs, tt.progress)
			require.Len(t, res.Items, 1)
			assert.Equal(t, tt.completed, res.Items[0].Completed)
			assert.Equal(t, tt.at, res.Items[0].CompletedAt)
			assert.Len(t, res.Items[0].Tasks, 2)
		})
	}
}

func TestAggregate_DuplicateRecordsKeepHighestCount(t *testing.T) {
	defs := []record.TrophyDefinition{trophy("g1", "a1", 10, record.Task{ID: "t1", Total: 5})}
	res := Aggregate(defs, []record.ProgressRecord{
		progress("g1", abc, "a1", "t1", 5, 5, 100),
		progress("g1", abc, "a1", "t1", 2, 5, 0),
		progress("g1", abc, "a1", "t1", 5, 5, 100),
	})

	require.Len(t, res.Items, 1)
	assert.True(t, res.Items[0].Completed)
	assert.Equal(t, uint32(5), res.Items[0].Tasks[0].Count)
}

func TestAggregate_MissingDefinitionDegrades(t *testing.T) {
	res := Aggregate(nil, []record.ProgressRecord{
		progress("g1", abc, "ghost", "t1", 3, 3, 10),
		progress("g1", abc, "ghost", "t2", 1, 1, 20),
		progress("g1", def, "ghost", "t1", 1, 3, 0),
	})

	require.Len(t, res.Items, 2)
	assert.Equal(t, []string{"g1/ghost"}, res.Missing)

	done := res.Items[0]
	if done.Player != abc {
		done = res.Items[1]
	}
	assert.False(t, done.Defined)
	assert.Equal(t, uint32(0), done.Earning)
	assert.True(t, done.Completed)
	assert.Equal(t, int64(20), done.CompletedAt)
	assert.Equal(t, []string{"t1", "t2"}, []string{done.Tasks[0].ID, done.Tasks[1].ID})
}

func TestAggregate_Rarity(t *testing.T) {
	defs := []record.TrophyDefinition{
		trophy("g1", "easy", 5, record.Task{ID: "t", Total: 1}),
		trophy("g1", "hard", 50, record.Task{ID: "t", Total: 10}),
		trophy("g2", "other", 5, record.Task{ID: "t", Total: 1}),
	}
	res := Aggregate(defs, []record.ProgressRecord{
		progress("g1", abc, "easy", "t", 1, 1, 1),
		progress("g1", def, "easy", "t", 1, 1, 2),
		progress("g1", fed, "easy", "t", 0, 1, 0),
		progress("g1", abc, "hard", "t", 10, 10, 3),
		progress("g1", def, "hard", "t", 4, 10, 0),
	})

	byKey := make(map[string]Stats)
	for _, s := range res.Stats {
		byKey[s.Key()] = s
	}
	require.Len(t, byKey, 3)
	assert.Equal(t, Stats{Project: "g1", AchievementID: "easy", Completed: 2, Players: 3, Percentage: 200.0 / 3}, byKey["g1/easy"])
	assert.Equal(t, 1, byKey["g1/hard"].Completed)
	assert.InDelta(t, 100.0/3, byKey["g1/hard"].Percentage, 1e-9)
	assert.Equal(t, Stats{Project: "g2", AchievementID: "other"}, byKey["g2/other"])

	for _, it := range res.Items {
		if it.AchievementID == "hard" {
			assert.InDelta(t, 100.0/3, it.Percentage, 1e-9)
		}
	}
}

func TestAggregate_SparseAndOrdered(t *testing.T) {
	defs := []record.TrophyDefinition{
		trophy("g1", "b", 1, record.Task{ID: "t", Total: 1}),
		trophy("g1", "a", 1, record.Task{ID: "t", Total: 1}),
		trophy("g1", "never", 1, record.Task{ID: "t", Total: 1}),
	}
	res := Aggregate(defs, []record.ProgressRecord{
		progress("g1", def, "b", "t", 1, 1, 1),
		progress("g1", abc, "b", "t", 1, 1, 1),
		progress("g1", abc, "a", "t", 1, 1, 1),
	})

	var keys []string
	for _, it := range res.Items {
		keys = append(keys, it.Key())
	}
	assert.Equal(t, []string{
		ItemKey("g1", abc, "a"),
		ItemKey("g1", abc, "b"),
		ItemKey("g1", def, "b"),
	}, keys, "no item for achievements without records")
}

func TestCompletedBy(t *testing.T) {
	items := []Item{
		{Project: "g1", AchievementID: "x", Player: abc, Completed: true, CompletedAt: 10},
		{Project: "g1", AchievementID: "y", Player: abc, Completed: true, CompletedAt: 30},
		{Project: "g1", AchievementID: "z", Player: abc},
		{Project: "g1", AchievementID: "w", Player: def, Completed: true, CompletedAt: 99},
	}
	got := CompletedBy(items, abc)
	require.Len(t, got, 2)
	assert.Equal(t, "y", got[0].AchievementID)
	assert.Equal(t, "x", got[1].AchievementID)
}
