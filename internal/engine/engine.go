package engine

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roach88/arcade/internal/achievement"
	"github.com/roach88/arcade/internal/collection"
	"github.com/roach88/arcade/internal/discovery"
	"github.com/roach88/arcade/internal/fingerprint"
	"github.com/roach88/arcade/internal/follow"
	"github.com/roach88/arcade/internal/leaderboard"
	"github.com/roach88/arcade/internal/pin"
	"github.com/roach88/arcade/internal/query"
	"github.com/roach88/arcade/internal/record"
	"github.com/roach88/arcade/internal/source"
)

// DefaultCap is the leaderboard display cap used when a request does not
// set one.
const DefaultCap = 10

// DefaultParallelism bounds the project-scoped loads running at once in
// a pass.
const DefaultParallelism = 4

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger shared by the engine, its store and views.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithTokenGenerator replaces the UUIDv7 pass tokens.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(e *Engine) {
		e.tokens = g
	}
}

// WithClock sets the pass clock, e.g. to resume numbering.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithPinPolicy sets the featured-achievement display rule.
func WithPinPolicy(p pin.Policy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithDisplayCap sets the default leaderboard cap. Zero or less shows
// every row.
func WithDisplayCap(n int) Option {
	return func(e *Engine) {
		e.cap = n
	}
}

// WithRegistry pins the project set to editions instead of asking the
// reader for it.
func WithRegistry(editions []record.Edition) Option {
	return func(e *Engine) {
		e.registry = slices.Clone(editions)
		e.hasRegistry = true
	}
}

// WithParallelism bounds concurrent loads within a pass.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.parallel = n
		}
	}
}

// WithInterval makes Run queue a refresh every d. Zero disables it.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.interval = d
	}
}

// View names a derived collection exposed by the engine.
type View string

const (
	ViewItems       View = "items"
	ViewStats       View = "stats"
	ViewPins        View = "pins"
	ViewFollows     View = "follows"
	ViewPlayers     View = "players"
	ViewLeaderboard View = "leaderboard"
	ViewFeed        View = "feed"
)

// Views lists every view in dependency order.
func Views() []View {
	return []View{ViewItems, ViewStats, ViewPins, ViewFollows, ViewPlayers, ViewLeaderboard, ViewFeed}
}

// summary carries one aggregation result through a live view.
type summary struct {
	achievement.Result
}

type view interface {
	Name() string
	Version() uint64
	Stale() bool
	Close()
	query.Notifier
}

// Engine owns the base collections and the views derived from them.
//
// Reads are safe from any goroutine and never fetch. Refresh passes are
// serialized whether they come from Refresh or from the Run loop.
type Engine struct {
	reader      source.Reader
	store       *collection.Store
	logger      *slog.Logger
	clock       *Clock
	tokens      TokenGenerator
	queue       *requestQueue
	policy      pin.Policy
	cap         int
	parallel    int
	interval    time.Duration
	registry    []record.Edition
	hasRegistry bool

	passMu sync.Mutex // held for a whole pass
	closed atomic.Bool

	lastMu sync.RWMutex
	last   Pass

	editions *collection.Slot[record.Edition]
	trophies *collection.Slot[record.TrophyDefinition]
	progress *collection.Slot[record.ProgressRecord]
	sessions *collection.Slot[record.Session]
	pins     *collection.Slot[record.PinEvent]
	follows  *collection.Slot[record.FollowEvent]
	accounts *collection.Slot[record.Account]

	summary *query.Live[summary]
	items   *query.Live[achievement.Item]
	stats   *query.Live[achievement.Stats]
	pinned  *query.Live[record.PinEvent]
	edges   *query.Live[follow.Edge]
	players *query.Live[leaderboard.Player]
	ranking *query.Live[leaderboard.Entry]
	feed    *query.Live[discovery.Activity]
	views   map[View]view
}

// New builds an engine over reader. Nothing is fetched until the first
// refresh pass.
func New(reader source.Reader, opts ...Option) *Engine {
	e := &Engine{
		reader:   reader,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:    NewClock(),
		tokens:   UUIDv7Generator{},
		queue:    newRequestQueue(),
		policy:   pin.DefaultPolicy(),
		cap:      DefaultCap,
		parallel: DefaultParallelism,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.store = collection.NewStore(collection.WithLogger(e.logger))
	e.editions = collection.NewSlot(e.store, "editions", collection.WithFingerprint(editionFingerprint))
	e.trophies = collection.NewSlot(e.store, "trophies", collection.WithFingerprint(trophyFingerprint))
	e.progress = collection.NewSlot(e.store, "progress", collection.WithFingerprint(progressFingerprint))
	e.sessions = collection.NewSlot(e.store, "sessions", collection.WithFingerprint(sessionFingerprint))
	e.pins = collection.NewSlot[record.PinEvent](e.store, "pins")
	e.follows = collection.NewSlot[record.FollowEvent](e.store, "follows")
	e.accounts = collection.NewSlot(e.store, "accounts", collection.WithFingerprint(accountFingerprint))

	e.materialize()
	return e
}

func (e *Engine) materialize() {
	opt := query.WithLogger(e.logger)

	e.summary = query.Materialize("summary",
		query.Combine(
			query.From[record.TrophyDefinition](e.trophies),
			query.From[record.ProgressRecord](e.progress),
			func(defs []record.TrophyDefinition, progress []record.ProgressRecord) []summary {
				return []summary{{achievement.Aggregate(defs, progress)}}
			}),
		func(summary) string { return "summary" }, opt)

	e.pinned = query.Materialize(string(ViewPins),
		query.Transform(query.From[record.PinEvent](e.pins), func(events []record.PinEvent) []record.PinEvent {
			return pin.Replay(events).Active()
		}),
		func(p record.PinEvent) string { return string(p.Player) + "/" + p.AchievementID }, opt)

	e.items = query.Materialize(string(ViewItems),
		query.Combine(
			query.From[summary](e.summary),
			query.From[record.PinEvent](e.pinned),
			func(s []summary, active []record.PinEvent) []achievement.Item {
				if len(s) == 0 {
					return nil
				}
				return pin.Mark(s[0].Items, pin.Replay(active))
			}),
		achievement.Item.Key, opt)

	e.stats = query.Materialize(string(ViewStats),
		query.Transform(query.From[summary](e.summary), func(s []summary) []achievement.Stats {
			if len(s) == 0 {
				return nil
			}
			return s[0].Stats
		}),
		achievement.Stats.Key, opt)

	e.edges = query.Materialize(string(ViewFollows),
		query.Transform(query.From[record.FollowEvent](e.follows), func(events []record.FollowEvent) []follow.Edge {
			return follow.Replay(events).Edges()
		}),
		follow.Edge.Key, opt)

	e.players = query.Materialize(string(ViewPlayers),
		query.Combine(
			query.From[achievement.Item](e.items),
			query.From[record.Account](e.accounts),
			leaderboard.BuildPlayers),
		leaderboard.Player.Key, opt)

	e.ranking = query.Materialize(string(ViewLeaderboard),
		query.Transform(query.From[leaderboard.Player](e.players), func(players []leaderboard.Player) []leaderboard.Entry {
			return leaderboard.Rank(leaderboard.Aggregate(players))
		}),
		leaderboard.Entry.Key, opt)

	e.feed = query.Materialize(string(ViewFeed),
		query.Derive(func() []discovery.Activity {
			return discovery.Correlate(e.sessions.Rows(), e.items.Rows(), e.accounts.Rows(), e.editions.Rows())
		}, e.sessions, e.items, e.accounts, e.editions),
		discovery.Activity.Key, opt)

	e.views = map[View]view{
		ViewItems:       e.items,
		ViewStats:       e.stats,
		ViewPins:        e.pinned,
		ViewFollows:     e.edges,
		ViewPlayers:     e.players,
		ViewLeaderboard: e.ranking,
		ViewFeed:        e.feed,
	}
}

// Close stops the Run loop, detaches every view and closes the store.
// Views keep their last rows.
func (e *Engine) Close() {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}
	e.queue.Close()
	e.summary.Close()
	for _, v := range Views() {
		e.views[v].Close()
	}
	e.store.Close()
}

// Content fingerprints for slots whose rows can change without changing
// identity.

func trophyFingerprint(rows []record.TrophyDefinition) uint64 {
	return contentFingerprint(rows, func(t record.TrophyDefinition) string {
		var b strings.Builder
		fmt.Fprintf(&b, "%s=%d|%t|%d|%s|%s|%s", t.Key(), t.Earning, t.Hidden, t.Index, t.Group, t.Title, t.Icon)
		for _, task := range t.Tasks {
			fmt.Fprintf(&b, "|%s:%d", task.ID, task.Total)
		}
		return b.String()
	})
}

func progressFingerprint(rows []record.ProgressRecord) uint64 {
	return contentFingerprint(rows, func(p record.ProgressRecord) string {
		return p.Key() + "#" + strconv.FormatUint(uint64(p.Count), 10) + "@" + strconv.FormatInt(p.CompletedAt, 10)
	})
}

func sessionFingerprint(rows []record.Session) uint64 {
	return contentFingerprint(rows, func(s record.Session) string {
		return s.Key() + "-" + strconv.FormatInt(s.End, 10) + "#" + strconv.Itoa(len(s.Actions))
	})
}

func accountFingerprint(rows []record.Account) uint64 {
	return contentFingerprint(rows, func(a record.Account) string {
		return a.Key() + "=" + a.Username
	})
}

func editionFingerprint(rows []record.Edition) uint64 {
	return contentFingerprint(rows, func(ed record.Edition) string {
		return fmt.Sprintf("%s|%s|%s|%s|%s|%d", ed.Project, ed.Namespace, ed.Model, ed.Name, ed.Game, ed.Priority)
	})
}

func contentFingerprint[T any](rows []T, key func(T) string) uint64 {
	return fingerprint.OfSorted(query.Map(rows, key))
}
