package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/arcade/internal/record"
)

// Dataset is a plain record set, as written in YAML fixtures.
type Dataset struct {
	Editions []record.Edition          `yaml:"editions,omitempty" json:"editions"`
	Trophies []record.TrophyDefinition `yaml:"trophies,omitempty" json:"trophies"`
	Progress []record.ProgressRecord   `yaml:"progress,omitempty" json:"progress"`
	Sessions []record.Session          `yaml:"sessions,omitempty" json:"sessions"`
	Accounts []record.Account          `yaml:"accounts,omitempty" json:"accounts"`
	Pins     []record.PinEvent         `yaml:"pins,omitempty" json:"pins"`
	Follows  []record.FollowEvent      `yaml:"follows,omitempty" json:"follows"`
}

// Fixture serves a normalized Dataset as a Reader.
type Fixture struct {
	data Dataset
}

var _ Reader = (*Fixture)(nil)

// NewFixture normalizes d the way Client does: addresses to checksum
// form, usernames to NFC, absent actions to empty, events numbered when
// Seq is unset. Invalid rows are dropped and logged.
func NewFixture(d Dataset, logger *slog.Logger) *Fixture {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	out := Dataset{
		Editions: clean(logger, d.Editions, nil),
		Trophies: clean(logger, d.Trophies, nil),
		Progress: clean(logger, d.Progress, func(p *record.ProgressRecord) error {
			return normalize(&p.Player)
		}),
		Sessions: clean(logger, d.Sessions, func(s *record.Session) error {
			if s.Actions == nil {
				s.Actions = []string{}
			}
			return normalize(&s.Player)
		}),
		Accounts: clean(logger, d.Accounts, func(a *record.Account) error {
			a.Username = record.NormalizeUsername(a.Username)
			return normalize(&a.Address)
		}),
		Pins: clean(logger, d.Pins, func(e *record.PinEvent) error {
			return normalize(&e.Player)
		}),
		Follows: clean(logger, d.Follows, func(e *record.FollowEvent) error {
			return errors.Join(normalize(&e.Follower), normalize(&e.Followed))
		}),
	}
	for i := range out.Pins {
		if out.Pins[i].Seq == 0 {
			out.Pins[i].Seq = int64(i + 1)
		}
	}
	for i := range out.Follows {
		if out.Follows[i].Seq == 0 {
			out.Follows[i].Seq = int64(i + 1)
		}
	}
	return &Fixture{data: out}
}

// ParseFixture decodes a YAML dataset. Unknown fields are rejected.
func ParseFixture(r io.Reader, logger *slog.Logger) (*Fixture, error) {
	var d Dataset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return NewFixture(d, logger), nil
}

// LoadFixture reads a YAML dataset from path.
func LoadFixture(path string, logger *slog.Logger) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()
	return ParseFixture(f, logger)
}

// Dataset returns a copy of the normalized records.
func (f *Fixture) Dataset() Dataset {
	return Dataset{
		Editions: slices.Clone(f.data.Editions),
		Trophies: slices.Clone(f.data.Trophies),
		Progress: slices.Clone(f.data.Progress),
		Sessions: slices.Clone(f.data.Sessions),
		Accounts: slices.Clone(f.data.Accounts),
		Pins:     slices.Clone(f.data.Pins),
		Follows:  slices.Clone(f.data.Follows),
	}
}

func (f *Fixture) Editions(ctx context.Context) ([]record.Edition, error) {
	return slices.Clone(f.data.Editions), ctx.Err()
}

func (f *Fixture) Trophies(ctx context.Context, projects []record.Selector) ([]record.TrophyDefinition, error) {
	return inProjects(f.data.Trophies, projects, func(t record.TrophyDefinition) string { return t.Project }), ctx.Err()
}

func (f *Fixture) Progress(ctx context.Context, projects []record.Selector) ([]record.ProgressRecord, error) {
	return inProjects(f.data.Progress, projects, func(p record.ProgressRecord) string { return p.Project }), ctx.Err()
}

func (f *Fixture) Sessions(ctx context.Context, projects []record.Selector) ([]record.Session, error) {
	return inProjects(f.data.Sessions, projects, func(s record.Session) string { return s.Project }), ctx.Err()
}

// Pins ignores projects: social events are not partitioned by project.
func (f *Fixture) Pins(ctx context.Context, _ []record.Selector) ([]record.PinEvent, error) {
	return slices.Clone(f.data.Pins), ctx.Err()
}

// Follows ignores projects like Pins.
func (f *Fixture) Follows(ctx context.Context, _ []record.Selector) ([]record.FollowEvent, error) {
	return slices.Clone(f.data.Follows), ctx.Err()
}

func (f *Fixture) Accounts(ctx context.Context, addresses []record.Address) ([]record.Account, error) {
	out := []record.Account{}
	for _, a := range f.data.Accounts {
		if slices.Contains(addresses, a.Address) {
			out = append(out, a)
		}
	}
	return out, ctx.Err()
}

func normalize(a *record.Address) error {
	n, err := record.NormalizeAddress(string(*a))
	if err != nil {
		return err
	}
	*a = n
	return nil
}

// clean normalizes and validates rows, dropping failures.
func clean[R record.Row](logger *slog.Logger, rows []R, fix func(*R) error) []R {
	out := make([]R, 0, len(rows))
	for _, r := range rows {
		if fix != nil {
			if err := fix(&r); err != nil {
				drop(logger, record.NewValidationError(r.Kind(), "%v", err))
				continue
			}
		}
		if err := r.Validate(); err != nil {
			drop(logger, err, "row", record.Describe(r))
			continue
		}
		out = append(out, r)
	}
	return out
}

func inProjects[T any](rows []T, projects []record.Selector, project func(T) string) []T {
	if len(projects) == 0 {
		return slices.Clone(rows)
	}
	out := []T{}
	for _, r := range rows {
		if slices.ContainsFunc(projects, func(s record.Selector) bool { return s.Project == project(r) }) {
			out = append(out, r)
		}
	}
	return out
}
