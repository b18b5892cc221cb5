package achievement

import (
	"maps"
	"slices"

	"github.com/roach88/arcade/internal/query"
	"github.com/roach88/arcade/internal/record"
)

// Result is the output of one aggregation pass.
type Result struct {
	Items []Item
	Stats []Stats
	// Missing lists definition keys referenced by progress but absent
	// from the definitions. Their items carry Earning 0.
	Missing []string
}

type groupKey struct {
	project string
	player  record.Address
	id      string
}

type defKey struct {
	project string
	id      string
}

// Aggregate computes items and rarity stats.
//
// Progress is deduplicated on (project, player, achievement, task),
// keeping the highest count. An achievement with a definition is
// completed when every defined task has a record reaching the defined
// total. Without a definition it is completed when every observed task
// reaches its own recorded total.
//
// Items are ordered by project, player, then achievement id.
func Aggregate(defs []record.TrophyDefinition, progress []record.ProgressRecord) Result {
	defIndex := make(map[defKey]record.TrophyDefinition, len(defs))
	for _, d := range defs {
		defIndex[defKey{d.Project, d.ID}] = d
	}

	records := latest(progress)
	groupKeys, groups := query.GroupBy(records, func(p record.ProgressRecord) groupKey {
		return groupKey{p.Project, p.Player, p.AchievementID}
	})

	projectPlayers := make(map[string]map[record.Address]bool)
	for _, p := range records {
		if projectPlayers[p.Project] == nil {
			projectPlayers[p.Project] = make(map[record.Address]bool)
		}
		projectPlayers[p.Project][p.Player] = true
	}

	items := make([]Item, 0, len(groupKeys))
	missing := make(map[string]bool)
	for _, gk := range groupKeys {
		def, ok := defIndex[defKey{gk.project, gk.id}]
		if !ok {
			missing[defKey{gk.project, gk.id}.String()] = true
		}
		items = append(items, build(gk, def, ok, groups[gk]))
	}

	stats := rarity(defs, items, projectPlayers)
	byAchievement := query.Index(stats, func(s Stats) defKey { return defKey{s.Project, s.AchievementID} })
	for i := range items {
		items[i].Percentage = byAchievement[defKey{items[i].Project, items[i].AchievementID}].Percentage
	}

	items = query.Sort(items,
		query.Asc(func(i Item) string { return i.Project }),
		query.Asc(func(i Item) string { return string(i.Player) }),
		query.Asc(func(i Item) string { return i.AchievementID }),
	)

	return Result{
		Items:   items,
		Stats:   stats,
		Missing: slices.Sorted(maps.Keys(missing)),
	}
}

func (k defKey) String() string {
	return k.project + "/" + k.id
}

// latest collapses duplicate task records, keeping the highest count.
// On equal counts a record carrying a completion time wins.
func latest(progress []record.ProgressRecord) []record.ProgressRecord {
	best := make(map[string]int, len(progress))
	out := make([]record.ProgressRecord, 0, len(progress))
	for _, p := range progress {
		i, ok := best[p.Key()]
		if !ok {
			best[p.Key()] = len(out)
			out = append(out, p)
			continue
		}
		cur := out[i]
		if p.Count > cur.Count || (p.Count == cur.Count && cur.CompletedAt == 0 && p.CompletedAt != 0) {
			out[i] = p
		}
	}
	return out
}

func build(gk groupKey, def record.TrophyDefinition, defined bool, recs []record.ProgressRecord) Item {
	item := Item{
		Project:       gk.project,
		AchievementID: gk.id,
		Player:        gk.player,
		Defined:       defined,
	}
	byTask := query.Index(recs, func(p record.ProgressRecord) string { return p.TaskID })

	if defined {
		item.Earning = def.Earning
		item.Hidden = def.Hidden
		item.Index = def.Index
		item.Title = def.Title
		item.Group = def.Group
		item.Icon = def.Icon
		for _, task := range def.Tasks {
			rec, ok := byTask[task.ID]
			item.Tasks = append(item.Tasks, taskStatus(task.ID, rec.Count, task.Total, rec.CompletedAt, ok))
		}
	} else {
		observed := query.Sort(recs, query.Asc(func(p record.ProgressRecord) string { return p.TaskID }))
		for _, rec := range observed {
			item.Tasks = append(item.Tasks, taskStatus(rec.TaskID, rec.Count, rec.Total, rec.CompletedAt, true))
		}
	}

	item.Completed = len(item.Tasks) > 0
	for _, ts := range item.Tasks {
		if !ts.Completed {
			item.Completed = false
		}
		item.CompletedAt = max(item.CompletedAt, ts.CompletedAt)
	}
	if !item.Completed {
		item.CompletedAt = 0
	}
	return item
}

func taskStatus(id string, count, total uint32, completedAt int64, present bool) TaskStatus {
	ts := TaskStatus{ID: id, Count: count, Total: total}
	ts.Completed = present && total > 0 && count >= total
	if ts.Completed {
		ts.CompletedAt = completedAt
	}
	return ts
}

// rarity computes completion stats for every defined achievement and
// every undefined one that has items.
func rarity(defs []record.TrophyDefinition, items []Item, players map[string]map[record.Address]bool) []Stats {
	completed := make(map[defKey]map[record.Address]bool)
	var order []defKey
	seen := make(map[defKey]bool)
	add := func(k defKey) {
		if !seen[k] {
			seen[k] = true
			order = append(order, k)
		}
	}

	for _, d := range defs {
		add(defKey{d.Project, d.ID})
	}
	for _, it := range items {
		k := defKey{it.Project, it.AchievementID}
		add(k)
		if it.Completed {
			if completed[k] == nil {
				completed[k] = make(map[record.Address]bool)
			}
			completed[k][it.Player] = true
		}
	}

	stats := make([]Stats, 0, len(order))
	for _, k := range order {
		s := Stats{
			Project:       k.project,
			AchievementID: k.id,
			Completed:     len(completed[k]),
			Players:       len(players[k.project]),
		}
		if s.Players > 0 {
			s.Percentage = 100 * float64(s.Completed) / float64(s.Players)
		}
		stats = append(stats, s)
	}
	return query.Sort(stats,
		query.Asc(func(s Stats) string { return s.Project }),
		query.Asc(func(s Stats) string { return s.AchievementID }),
	)
}

// CompletedBy returns the completed items of one player, ordered by
// completion time, newest first.
func CompletedBy(items []Item, player record.Address) []Item {
	return query.Rows(items).
		Where(func(i Item) bool { return i.Player == player && i.Completed }).
		OrderBy(query.Desc(func(i Item) int64 { return i.CompletedAt })).
		OrderBy(query.Asc(func(i Item) string { return i.AchievementID })).
		Run()
}
