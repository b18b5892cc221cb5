package snapshot

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/arcade/internal/record"
	"github.com/roach88/arcade/internal/source"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// WriteEdition inserts or replaces a registry entry.
func (s *Store) WriteEdition(ctx context.Context, e record.Edition) error {
	return writeEdition(ctx, s.db, e)
}

func writeEdition(ctx context.Context, db execer, e record.Edition) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO editions (project, namespace, model, name, game, priority)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(project) DO UPDATE SET
			namespace = excluded.namespace,
			model = excluded.model,
			name = excluded.name,
			game = excluded.game,
			priority = excluded.priority
	`, e.Project, e.Namespace, e.Model, e.Name, e.Game, e.Priority)
	if err != nil {
		return fmt.Errorf("write edition: %w", err)
	}
	return nil
}

// WriteTrophy inserts a definition. Definitions are immutable, so a
// second write of the same (project, id) is ignored.
func (s *Store) WriteTrophy(ctx context.Context, t record.TrophyDefinition) error {
	return writeTrophy(ctx, s.db, t)
}

func writeTrophy(ctx context.Context, db execer, t record.TrophyDefinition) error {
	tasks, err := marshalTasks(t.Tasks)
	if err != nil {
		return fmt.Errorf("write trophy: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO trophies (project, id, tasks, earning, hidden, idx, grp, title, description, icon)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project, id) DO NOTHING
	`, t.Project, t.ID, tasks, t.Earning, t.Hidden, t.Index, t.Group, t.Title, t.Description, t.Icon)
	if err != nil {
		return fmt.Errorf("write trophy: %w", err)
	}
	return nil
}

// WriteProgress inserts a task record, keeping the highest count seen.
func (s *Store) WriteProgress(ctx context.Context, p record.ProgressRecord) error {
	return writeProgress(ctx, s.db, p)
}

func writeProgress(ctx context.Context, db execer, p record.ProgressRecord) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO progress (project, player, achievement_id, task_id, count, total, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project, player, achievement_id, task_id) DO UPDATE SET
			count = excluded.count,
			total = excluded.total,
			completed_at = excluded.completed_at
		WHERE excluded.count > progress.count
	`, p.Project, string(p.Player), p.AchievementID, p.TaskID, p.Count, p.Total, p.CompletedAt)
	if err != nil {
		return fmt.Errorf("write progress: %w", err)
	}
	return nil
}

// WriteSession inserts a session. Duplicates are ignored.
func (s *Store) WriteSession(ctx context.Context, sess record.Session) error {
	return writeSession(ctx, s.db, sess)
}

func writeSession(ctx context.Context, db execer, sess record.Session) error {
	actions, err := marshalActions(sess.Actions)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO sessions (project, player, start_at, end_at, actions)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, sess.Project, string(sess.Player), sess.Start, sess.End, actions)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteAccount inserts or renames an account.
func (s *Store) WriteAccount(ctx context.Context, a record.Account) error {
	return writeAccount(ctx, s.db, a)
}

func writeAccount(ctx context.Context, db execer, a record.Account) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO accounts (address, username) VALUES (?, ?)
		ON CONFLICT(address) DO UPDATE SET username = excluded.username
	`, string(a.Address), a.Username)
	if err != nil {
		return fmt.Errorf("write account: %w", err)
	}
	return nil
}

// WritePin inserts a pin event at its log position. A position already
// taken is left unchanged.
func (s *Store) WritePin(ctx context.Context, e record.PinEvent) error {
	return writePin(ctx, s.db, e)
}

func writePin(ctx context.Context, db execer, e record.PinEvent) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO pins (seq, player, achievement_id, time) VALUES (?, ?, ?, ?)
		ON CONFLICT(seq) DO NOTHING
	`, e.Seq, string(e.Player), e.AchievementID, e.Time)
	if err != nil {
		return fmt.Errorf("write pin: %w", err)
	}
	return nil
}

// WriteFollow inserts a follow event at its log position.
func (s *Store) WriteFollow(ctx context.Context, e record.FollowEvent) error {
	return writeFollow(ctx, s.db, e)
}

func writeFollow(ctx context.Context, db execer, e record.FollowEvent) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO follows (seq, follower, followed, time) VALUES (?, ?, ?, ?)
		ON CONFLICT(seq) DO NOTHING
	`, e.Seq, string(e.Follower), string(e.Followed), e.Time)
	if err != nil {
		return fmt.Errorf("write follow: %w", err)
	}
	return nil
}

// ImportStats counts the rows offered to each table by Import.
type ImportStats struct {
	Editions int `json:"editions"`
	Trophies int `json:"trophies"`
	Progress int `json:"progress"`
	Sessions int `json:"sessions"`
	Accounts int `json:"accounts"`
	Pins     int `json:"pins"`
	Follows  int `json:"follows"`
}

// Import reads every record reachable from r and writes it in one
// transaction. Accounts are fetched for every address seen in progress,
// sessions and follows.
func (s *Store) Import(ctx context.Context, r source.Reader) (ImportStats, error) {
	var stats ImportStats

	editions, err := r.Editions(ctx)
	if err != nil {
		return stats, fmt.Errorf("import editions: %w", err)
	}
	selectors := make([]record.Selector, len(editions))
	for i, e := range editions {
		selectors[i] = e.Selector()
	}

	trophies, err := r.Trophies(ctx, selectors)
	if err != nil {
		return stats, fmt.Errorf("import trophies: %w", err)
	}
	progress, err := r.Progress(ctx, selectors)
	if err != nil {
		return stats, fmt.Errorf("import progress: %w", err)
	}
	sessions, err := r.Sessions(ctx, selectors)
	if err != nil {
		return stats, fmt.Errorf("import sessions: %w", err)
	}
	pins, err := r.Pins(ctx, selectors)
	if err != nil {
		return stats, fmt.Errorf("import pins: %w", err)
	}
	follows, err := r.Follows(ctx, selectors)
	if err != nil {
		return stats, fmt.Errorf("import follows: %w", err)
	}
	accounts, err := r.Accounts(ctx, record.Players(progress, sessions, follows))
	if err != nil {
		return stats, fmt.Errorf("import accounts: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("import: begin: %w", err)
	}
	defer tx.Rollback()

	if err := writeAll(ctx, tx, editions, writeEdition); err != nil {
		return stats, err
	}
	if err := writeAll(ctx, tx, trophies, writeTrophy); err != nil {
		return stats, err
	}
	if err := writeAll(ctx, tx, progress, writeProgress); err != nil {
		return stats, err
	}
	if err := writeAll(ctx, tx, sessions, writeSession); err != nil {
		return stats, err
	}
	if err := writeAll(ctx, tx, accounts, writeAccount); err != nil {
		return stats, err
	}
	if err := writeAll(ctx, tx, pins, writePin); err != nil {
		return stats, err
	}
	if err := writeAll(ctx, tx, follows, writeFollow); err != nil {
		return stats, err
	}
	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("import: commit: %w", err)
	}

	return ImportStats{
		Editions: len(editions),
		Trophies: len(trophies),
		Progress: len(progress),
		Sessions: len(sessions),
		Accounts: len(accounts),
		Pins:     len(pins),
		Follows:  len(follows),
	}, nil
}

func writeAll[T any](ctx context.Context, db execer, rows []T, write func(context.Context, execer, T) error) error {
	for _, r := range rows {
		if err := write(ctx, db, r); err != nil {
			return fmt.Errorf("import: %w", err)
		}
	}
	return nil
}
