// Package achievement derives per-player completion views from trophy
// definitions and task progress.
package achievement

import (
	"strings"

	"github.com/roach88/arcade/internal/record"
)

// TaskStatus is a player's standing on one task.
type TaskStatus struct {
	ID          string `json:"id"`
	Count       uint32 `json:"count"`
	Total       uint32 `json:"total"`
	Completed   bool   `json:"completed"`
	CompletedAt int64  `json:"completed_at,omitempty"`
}

// Item is the derived view of one achievement for one player. Only
// achievements with at least one progress record are materialized.
type Item struct {
	Project       string         `json:"project"`
	AchievementID string         `json:"achievement_id"`
	Player        record.Address `json:"player"`
	Tasks         []TaskStatus   `json:"tasks"`
	Completed     bool           `json:"completed"`
	CompletedAt   int64          `json:"completed_at,omitempty"`
	Pinned        bool           `json:"pinned"`

	// Earning is zero when the definition is unknown.
	Earning uint32 `json:"earning"`
	// Percentage is the rarity: share of the project's players who
	// completed this achievement, 0 to 100.
	Percentage float64 `json:"percentage"`
	Defined    bool    `json:"defined"`
	Hidden     bool    `json:"hidden,omitempty"`
	Index      uint32  `json:"index,omitempty"`
	Title      string  `json:"title,omitempty"`
	Group      string  `json:"group,omitempty"`
	Icon       string  `json:"icon,omitempty"`
}

// Key returns the item identity.
func (i Item) Key() string {
	return ItemKey(i.Project, i.Player, i.AchievementID)
}

// ItemKey builds an item identity from its parts.
func ItemKey(project string, player record.Address, achievementID string) string {
	return strings.Join([]string{project, string(player), achievementID}, "/")
}

// Stats summarizes one achievement across a project's players.
type Stats struct {
	Project       string  `json:"project"`
	AchievementID string  `json:"achievement_id"`
	Completed     int     `json:"completed"`
	Players       int     `json:"players"`
	Percentage    float64 `json:"percentage"`
}

// Key returns the stats identity.
func (s Stats) Key() string {
	return s.Project + "/" + s.AchievementID
}
