package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/arcade/internal/record"
	"github.com/roach88/arcade/internal/source"
)

var _ source.Reader = (*Store)(nil)

// Editions returns every registry entry, by priority then project.
func (s *Store) Editions(ctx context.Context) ([]record.Edition, error) {
	return query(ctx, s.db, "editions", `
		SELECT project, namespace, model, name, game, priority
		FROM editions
		ORDER BY priority DESC, project COLLATE BINARY ASC
	`, nil, func(rows *sql.Rows) (record.Edition, error) {
		var e record.Edition
		err := rows.Scan(&e.Project, &e.Namespace, &e.Model, &e.Name, &e.Game, &e.Priority)
		return e, err
	})
}

// Trophies returns the definitions of the selected projects, or all
// when projects is empty.
func (s *Store) Trophies(ctx context.Context, projects []record.Selector) ([]record.TrophyDefinition, error) {
	where, args := projectFilter(projects)
	return query(ctx, s.db, "trophies", `
		SELECT project, id, tasks, earning, hidden, idx, grp, title, description, icon
		FROM trophies`+where+`
		ORDER BY project COLLATE BINARY ASC, idx ASC, id COLLATE BINARY ASC
	`, args, func(rows *sql.Rows) (record.TrophyDefinition, error) {
		var t record.TrophyDefinition
		var tasks string
		if err := rows.Scan(&t.Project, &t.ID, &tasks, &t.Earning, &t.Hidden, &t.Index,
			&t.Group, &t.Title, &t.Description, &t.Icon); err != nil {
			return t, err
		}
		var err error
		t.Tasks, err = unmarshalTasks(tasks)
		return t, err
	})
}

// Progress returns the task records of the selected projects.
func (s *Store) Progress(ctx context.Context, projects []record.Selector) ([]record.ProgressRecord, error) {
	where, args := projectFilter(projects)
	return query(ctx, s.db, "progress", `
		SELECT project, player, achievement_id, task_id, count, total, completed_at
		FROM progress`+where+`
		ORDER BY project COLLATE BINARY ASC, player COLLATE BINARY ASC,
			achievement_id COLLATE BINARY ASC, task_id COLLATE BINARY ASC
	`, args, func(rows *sql.Rows) (record.ProgressRecord, error) {
		var p record.ProgressRecord
		var player string
		err := rows.Scan(&p.Project, &player, &p.AchievementID, &p.TaskID, &p.Count, &p.Total, &p.CompletedAt)
		p.Player = record.Address(player)
		return p, err
	})
}

// Sessions returns the sessions of the selected projects.
func (s *Store) Sessions(ctx context.Context, projects []record.Selector) ([]record.Session, error) {
	where, args := projectFilter(projects)
	return query(ctx, s.db, "sessions", `
		SELECT project, player, start_at, end_at, actions
		FROM sessions`+where+`
		ORDER BY start_at ASC, project COLLATE BINARY ASC, player COLLATE BINARY ASC
	`, args, func(rows *sql.Rows) (record.Session, error) {
		var sess record.Session
		var player, actions string
		if err := rows.Scan(&sess.Project, &player, &sess.Start, &sess.End, &actions); err != nil {
			return sess, err
		}
		sess.Player = record.Address(player)
		var err error
		sess.Actions, err = unmarshalActions(actions)
		return sess, err
	})
}

// Pins returns every pin event in log order. Pins are not partitioned
// by project.
func (s *Store) Pins(ctx context.Context, _ []record.Selector) ([]record.PinEvent, error) {
	return query(ctx, s.db, "pins", `
		SELECT seq, player, achievement_id, time FROM pins ORDER BY seq ASC
	`, nil, func(rows *sql.Rows) (record.PinEvent, error) {
		var e record.PinEvent
		var player string
		err := rows.Scan(&e.Seq, &player, &e.AchievementID, &e.Time)
		e.Player = record.Address(player)
		return e, err
	})
}

// Follows returns every follow event in log order.
func (s *Store) Follows(ctx context.Context, _ []record.Selector) ([]record.FollowEvent, error) {
	return query(ctx, s.db, "follows", `
		SELECT seq, follower, followed, time FROM follows ORDER BY seq ASC
	`, nil, func(rows *sql.Rows) (record.FollowEvent, error) {
		var e record.FollowEvent
		var follower, followed string
		err := rows.Scan(&e.Seq, &follower, &followed, &e.Time)
		e.Follower = record.Address(follower)
		e.Followed = record.Address(followed)
		return e, err
	})
}

// Accounts returns the accounts of the given addresses.
func (s *Store) Accounts(ctx context.Context, addresses []record.Address) ([]record.Account, error) {
	if len(addresses) == 0 {
		return []record.Account{}, nil
	}
	args := make([]any, len(addresses))
	for i, a := range addresses {
		args[i] = string(a)
	}
	return query(ctx, s.db, "accounts", `
		SELECT address, username FROM accounts
		WHERE address IN (`+placeholders(len(addresses))+`)
		ORDER BY address COLLATE BINARY ASC
	`, args, func(rows *sql.Rows) (record.Account, error) {
		var a record.Account
		var address string
		err := rows.Scan(&address, &a.Username)
		a.Address = record.Address(address)
		return a, err
	})
}

func projectFilter(projects []record.Selector) (string, []any) {
	if len(projects) == 0 {
		return "", nil
	}
	args := make([]any, len(projects))
	for i, p := range projects {
		args[i] = p.Project
	}
	return "\n\t\tWHERE project IN (" + placeholders(len(projects)) + ")", args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// query runs a read and scans every row. Returns an empty slice, never
// nil, when nothing matches.
func query[T any](ctx context.Context, db *sql.DB, table, q string, args []any, scan func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return out, nil
}
