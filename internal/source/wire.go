package source

import (
	"github.com/roach88/arcade/internal/record"
)

// Wire shapes of response rows. Field names follow the transport.

type wireTask struct {
	ID          string `json:"id"`
	Total       uint32 `json:"total"`
	Description string `json:"description"`
}

type wireTrophy struct {
	Project     string     `json:"project"`
	ID          string     `json:"id"`
	Tasks       []wireTask `json:"tasks"`
	Points      uint32     `json:"points"`
	Hidden      bool       `json:"hidden"`
	Index       uint32     `json:"index"`
	Group       string     `json:"group"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
}

type wireProgress struct {
	Project       string `json:"project"`
	PlayerID      string `json:"playerId"`
	AchievementID string `json:"achievementId"`
	TaskID        string `json:"taskId"`
	Count         uint32 `json:"count"`
	Total         uint32 `json:"total"`
	CompletedAt   int64  `json:"completionTime"`
}

type wireSession struct {
	Project       string   `json:"project"`
	CallerAddress string   `json:"callerAddress"`
	SessionStart  int64    `json:"sessionStart"`
	SessionEnd    int64    `json:"sessionEnd"`
	Actions       []string `json:"actions"`
}

type wireAccount struct {
	Address  string `json:"address"`
	Username string `json:"username"`
}

type wirePin struct {
	PlayerID      string `json:"playerId"`
	AchievementID string `json:"achievementId"`
	Time          int64  `json:"time"`
}

type wireFollow struct {
	Follower string `json:"follower"`
	Followed string `json:"followed"`
	Time     int64  `json:"time"`
}

type wireEdition struct {
	Project   string `json:"project"`
	Namespace string `json:"namespace"`
	Model     string `json:"model"`
	Name      string `json:"name"`
	Game      string `json:"game"`
	Priority  int    `json:"priority"`
}

// projectOr returns the project a row names itself, falling back to the
// project of its envelope.
func projectOr(own, envelope string) string {
	if own != "" {
		return own
	}
	return envelope
}

func (w wireTrophy) record(project string) (record.TrophyDefinition, error) {
	tasks := make([]record.Task, len(w.Tasks))
	for i, t := range w.Tasks {
		tasks[i] = record.Task{ID: t.ID, Total: t.Total, Description: t.Description}
	}
	return record.TrophyDefinition{
		Project:     projectOr(w.Project, project),
		ID:          w.ID,
		Tasks:       tasks,
		Earning:     w.Points,
		Hidden:      w.Hidden,
		Index:       w.Index,
		Group:       w.Group,
		Title:       w.Title,
		Description: w.Description,
		Icon:        w.Icon,
	}, nil
}

func (w wireProgress) record(project string) (record.ProgressRecord, error) {
	player, err := record.NormalizeAddress(w.PlayerID)
	if err != nil {
		return record.ProgressRecord{}, record.NewValidationError(record.KindProgress, "player: %v", err)
	}
	return record.ProgressRecord{
		Project:       projectOr(w.Project, project),
		Player:        player,
		AchievementID: w.AchievementID,
		TaskID:        w.TaskID,
		Count:         w.Count,
		Total:         w.Total,
		CompletedAt:   w.CompletedAt,
	}, nil
}

func (w wireSession) record(project string) (record.Session, error) {
	player, err := record.NormalizeAddress(w.CallerAddress)
	if err != nil {
		return record.Session{}, record.NewValidationError(record.KindSession, "caller: %v", err)
	}
	actions := w.Actions
	if actions == nil {
		actions = []string{}
	}
	return record.Session{
		Project: projectOr(w.Project, project),
		Player:  player,
		Start:   w.SessionStart,
		End:     w.SessionEnd,
		Actions: actions,
	}, nil
}

func (w wireAccount) record(string) (record.Account, error) {
	address, err := record.NormalizeAddress(w.Address)
	if err != nil {
		return record.Account{}, record.NewValidationError(record.KindAccount, "address: %v", err)
	}
	return record.Account{Address: address, Username: record.NormalizeUsername(w.Username)}, nil
}

func (w wirePin) record(string) (record.PinEvent, error) {
	player, err := record.NormalizeAddress(w.PlayerID)
	if err != nil {
		return record.PinEvent{}, record.NewValidationError(record.KindPin, "player: %v", err)
	}
	return record.PinEvent{Player: player, AchievementID: w.AchievementID, Time: w.Time}, nil
}

func (w wireFollow) record(string) (record.FollowEvent, error) {
	follower, err := record.NormalizeAddress(w.Follower)
	if err != nil {
		return record.FollowEvent{}, record.NewValidationError(record.KindFollow, "follower: %v", err)
	}
	followed, err := record.NormalizeAddress(w.Followed)
	if err != nil {
		return record.FollowEvent{}, record.NewValidationError(record.KindFollow, "followed: %v", err)
	}
	return record.FollowEvent{Follower: follower, Followed: followed, Time: w.Time}, nil
}

func (w wireEdition) record(project string) (record.Edition, error) {
	return record.Edition{
		Project:   projectOr(w.Project, project),
		Namespace: w.Namespace,
		Model:     w.Model,
		Name:      w.Name,
		Game:      w.Game,
		Priority:  w.Priority,
	}, nil
}
