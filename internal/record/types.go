package record

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// keySep joins identity components. It cannot appear in a normalized
// address and is rejected in ids by the validators.
const keySep = "/"

func joinKey(parts ...string) string {
	return strings.Join(parts, keySep)
}

// Selector addresses one project in a transport query.
type Selector struct {
	Project   string `json:"project" yaml:"project"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Model     string `json:"model,omitempty" yaml:"model,omitempty"`
}

// Task is one step of an achievement.
type Task struct {
	ID          string `json:"id" yaml:"id"`
	Total       uint32 `json:"total" yaml:"total"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// TrophyDefinition is the static definition of an achievement in one
// project. Definitions are immutable once fetched.
type TrophyDefinition struct {
	Project     string `json:"project" yaml:"project"`
	ID          string `json:"id" yaml:"id"`
	Tasks       []Task `json:"tasks" yaml:"tasks"`
	Earning     uint32 `json:"earning" yaml:"earning"`
	Hidden      bool   `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Index       uint32 `json:"index,omitempty" yaml:"index,omitempty"`
	Group       string `json:"group,omitempty" yaml:"group,omitempty"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// Key returns the definition identity.
func (t TrophyDefinition) Key() string {
	return joinKey(t.Project, t.ID)
}

// Validate checks the structural shape of the definition.
func (t TrophyDefinition) Validate() error {
	if err := validID(KindTrophy, "project", t.Project); err != nil {
		return err
	}
	if err := validID(KindTrophy, "id", t.ID); err != nil {
		return err
	}
	if len(t.Tasks) == 0 {
		return NewValidationError(KindTrophy, "achievement %s has no tasks", t.Key())
	}
	seen := make(map[string]bool, len(t.Tasks))
	for _, task := range t.Tasks {
		if err := validID(KindTrophy, "task id", task.ID); err != nil {
			return err
		}
		if task.Total == 0 {
			return NewValidationError(KindTrophy, "task %s of %s has zero total", task.ID, t.Key())
		}
		if seen[task.ID] {
			return NewValidationError(KindTrophy, "task %s of %s declared twice", task.ID, t.Key())
		}
		seen[task.ID] = true
	}
	return nil
}

// ProgressRecord is a player's progress on one task of one achievement.
// CompletedAt is zero until the task is satisfied.
type ProgressRecord struct {
	Project       string  `json:"project" yaml:"project"`
	Player        Address `json:"player" yaml:"player"`
	AchievementID string  `json:"achievement_id" yaml:"achievement_id"`
	TaskID        string  `json:"task_id" yaml:"task_id"`
	Count         uint32  `json:"count" yaml:"count"`
	Total         uint32  `json:"total" yaml:"total"`
	CompletedAt   int64   `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// Key returns the record identity.
func (p ProgressRecord) Key() string {
	return joinKey(p.Project, string(p.Player), p.AchievementID, p.TaskID)
}

// Validate checks the structural shape of the record.
func (p ProgressRecord) Validate() error {
	if err := validID(KindProgress, "project", p.Project); err != nil {
		return err
	}
	if p.Player.IsZero() {
		return NewValidationError(KindProgress, "missing player")
	}
	if err := validID(KindProgress, "achievement id", p.AchievementID); err != nil {
		return err
	}
	return validID(KindProgress, "task id", p.TaskID)
}

// PinEvent pins (Time > 0) or unpins (Time == 0) an achievement for a
// player. Seq is the position of the event in its source log.
type PinEvent struct {
	Player        Address `json:"player" yaml:"player"`
	AchievementID string  `json:"achievement_id" yaml:"achievement_id"`
	Time          int64   `json:"time" yaml:"time"`
	Seq           int64   `json:"seq,omitempty" yaml:"seq,omitempty"`
}

// Removal reports whether the event is the zero-time removal sentinel.
func (e PinEvent) Removal() bool {
	return e.Time == 0
}

// Key returns the event identity.
func (e PinEvent) Key() string {
	return joinKey(string(e.Player), e.AchievementID, strconv.FormatInt(e.Time, 10), strconv.FormatInt(e.Seq, 10))
}

// Validate checks the structural shape of the event.
func (e PinEvent) Validate() error {
	if e.Player.IsZero() {
		return NewValidationError(KindPin, "missing player")
	}
	if e.Time < 0 {
		return NewValidationError(KindPin, "negative time %d", e.Time)
	}
	return validID(KindPin, "achievement id", e.AchievementID)
}

// FollowEvent follows (Time > 0) or unfollows (Time == 0). Self-follow
// is not rejected here.
type FollowEvent struct {
	Follower Address `json:"follower" yaml:"follower"`
	Followed Address `json:"followed" yaml:"followed"`
	Time     int64   `json:"time" yaml:"time"`
	Seq      int64   `json:"seq,omitempty" yaml:"seq,omitempty"`
}

// Removal reports whether the event is the zero-time removal sentinel.
func (e FollowEvent) Removal() bool {
	return e.Time == 0
}

// Key returns the event identity.
func (e FollowEvent) Key() string {
	return joinKey(string(e.Follower), string(e.Followed), strconv.FormatInt(e.Time, 10), strconv.FormatInt(e.Seq, 10))
}

// Validate checks the structural shape of the event.
func (e FollowEvent) Validate() error {
	if e.Follower.IsZero() || e.Followed.IsZero() {
		return NewValidationError(KindFollow, "missing follower or followed")
	}
	if e.Time < 0 {
		return NewValidationError(KindFollow, "negative time %d", e.Time)
	}
	return nil
}

// Session is one playthrough of a project by a player.
type Session struct {
	Project string   `json:"project" yaml:"project"`
	Player  Address  `json:"player" yaml:"player"`
	Start   int64    `json:"start" yaml:"start"`
	End     int64    `json:"end" yaml:"end"`
	Actions []string `json:"actions" yaml:"actions"`
}

// Key returns the session identity.
func (s Session) Key() string {
	return joinKey(s.Project, string(s.Player), strconv.FormatInt(s.Start, 10))
}

// Contains reports whether t falls inside the closed session window.
func (s Session) Contains(t int64) bool {
	return t >= s.Start && t <= s.End
}

// Validate checks the structural shape of the session.
func (s Session) Validate() error {
	if err := validID(KindSession, "project", s.Project); err != nil {
		return err
	}
	if s.Player.IsZero() {
		return NewValidationError(KindSession, "missing player")
	}
	if s.Start <= 0 || s.End < s.Start {
		return NewValidationError(KindSession, "invalid window [%d, %d]", s.Start, s.End)
	}
	return nil
}

// Account maps a checksum address to a display username.
type Account struct {
	Address  Address `json:"address" yaml:"address"`
	Username string  `json:"username" yaml:"username"`
}

// Key returns the account identity.
func (a Account) Key() string {
	return string(a.Address)
}

// Validate checks the structural shape of the account.
func (a Account) Validate() error {
	if a.Address.IsZero() {
		return NewValidationError(KindAccount, "missing address")
	}
	if a.Username == "" {
		return NewValidationError(KindAccount, "missing username for %s", a.Address)
	}
	return nil
}

// NormalizeUsername trims and NFC-normalizes a username so that visually
// identical names compare equal.
func NormalizeUsername(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Edition is a registry entry describing one project.
type Edition struct {
	Project   string `json:"project" yaml:"project"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Model     string `json:"model,omitempty" yaml:"model,omitempty"`
	Name      string `json:"name" yaml:"name"`
	Game      string `json:"game,omitempty" yaml:"game,omitempty"`
	Priority  int    `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// Key returns the edition identity.
func (e Edition) Key() string {
	return e.Project
}

// Selector returns the transport selector for this edition.
func (e Edition) Selector() Selector {
	return Selector{Project: e.Project, Namespace: e.Namespace, Model: e.Model}
}

// Validate checks the structural shape of the edition.
func (e Edition) Validate() error {
	return validID(KindEdition, "project", e.Project)
}

func validID(kind Kind, field, v string) error {
	if v == "" {
		return NewValidationError(kind, "missing %s", field)
	}
	if strings.Contains(v, keySep) {
		return NewValidationError(kind, "%s %q contains %q", field, v, keySep)
	}
	return nil
}

// Keyed is implemented by every record type.
type Keyed interface {
	Key() string
}

// Row is a sealed sum type over every record type: only types in this
// package implement it. Kind is fixed per type, so a switch on Kind() or
// on the concrete type is exhaustive.
type Row interface {
	Keyed
	Kind() Kind
	Validate() error
	row()
}

func (TrophyDefinition) Kind() Kind { return KindTrophy }
func (ProgressRecord) Kind() Kind   { return KindProgress }
func (Session) Kind() Kind          { return KindSession }
func (Account) Kind() Kind          { return KindAccount }
func (PinEvent) Kind() Kind         { return KindPin }
func (FollowEvent) Kind() Kind      { return KindFollow }
func (Edition) Kind() Kind          { return KindEdition }

func (TrophyDefinition) row() {}
func (ProgressRecord) row()   {}
func (Session) row()          {}
func (Account) row()          {}
func (PinEvent) row()         {}
func (FollowEvent) row()      {}
func (Edition) row()          {}

// Keys returns the identity of every row in order.
func Keys[T Keyed](rows []T) []string {
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r.Key()
	}
	return keys
}

// Describe renders a kind-tagged identity for logs.
func Describe(r Row) string {
	return fmt.Sprintf("%s:%s", r.Kind(), r.Key())
}
