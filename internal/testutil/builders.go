// Package testutil provides record builders and an in-memory reader for
// tests across packages.
package testutil

import (
	"fmt"

	"github.com/roach88/arcade/internal/record"
)

// Addr returns the checksum address with numeric value n.
func Addr(n int) record.Address {
	return record.MustAddress(fmt.Sprintf("0x%x", n))
}

// Task builds a definition task.
func Task(id string, total uint32) record.Task {
	return record.Task{ID: id, Total: total}
}

// Trophy builds an achievement definition.
func Trophy(project, id string, earning uint32, tasks ...record.Task) record.TrophyDefinition {
	return record.TrophyDefinition{Project: project, ID: id, Earning: earning, Tasks: tasks, Title: id}
}

// Progress builds a task progress record. at is the completion time, or
// zero while the task is open.
func Progress(project string, player record.Address, achievement, task string, count, total uint32, at int64) record.ProgressRecord {
	return record.ProgressRecord{
		Project:       project,
		Player:        player,
		AchievementID: achievement,
		TaskID:        task,
		Count:         count,
		Total:         total,
		CompletedAt:   at,
	}
}

// Session builds a play session.
func Session(project string, player record.Address, start, end int64, actions ...string) record.Session {
	if actions == nil {
		actions = []string{}
	}
	return record.Session{Project: project, Player: player, Start: start, End: end, Actions: actions}
}

// Account builds an account.
func Account(addr record.Address, username string) record.Account {
	return record.Account{Address: addr, Username: username}
}

// Pin builds a pin event. A zero time unpins.
func Pin(player record.Address, achievement string, time int64) record.PinEvent {
	return record.PinEvent{Player: player, AchievementID: achievement, Time: time}
}

// Follow builds a follow event. A zero time unfollows.
func Follow(follower, followed record.Address, time int64) record.FollowEvent {
	return record.FollowEvent{Follower: follower, Followed: followed, Time: time}
}

// Edition builds a registry entry.
func Edition(project, name string, priority int) record.Edition {
	return record.Edition{Project: project, Name: name, Priority: priority}
}
