package query

import (
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/arcade/internal/signal"
)

// LiveOption configures a Live collection.
type LiveOption func(*liveConfig)

type liveConfig struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for recompute events.
func WithLogger(l *slog.Logger) LiveOption {
	return func(c *liveConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Live is a materialized derived collection.
//
// When any upstream publishes, Live marks itself stale and notifies its
// own observers at once. The query runs again, in full, on the next Rows
// call. Rows sharing a getKey identity collapse to one.
//
// A Live is a Source, so Lives compose.
type Live[T any] struct {
	name   string
	query  Query[T]
	getKey func(T) string
	logger *slog.Logger
	hub    *signal.Hub

	mu      sync.Mutex
	stale   bool
	closed  bool
	rows    []T
	index   map[string]int
	version uint64
	subs    []signal.Subscription
}

// Materialize binds q to its upstreams and returns the live view.
func Materialize[T any](name string, q Query[T], getKey func(T) string, opts ...LiveOption) *Live[T] {
	cfg := liveConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	l := &Live[T]{
		name:   name,
		query:  q,
		getKey: getKey,
		logger: cfg.logger,
		hub:    signal.NewHub(),
		stale:  true,
	}
	for _, up := range q.upstreams {
		l.subs = append(l.subs, up.OnInvalidate(l.invalidate))
	}
	return l
}

// Name returns the view name.
func (l *Live[T]) Name() string {
	return l.name
}

func (l *Live[T]) invalidate() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.stale = true
	l.mu.Unlock()

	l.hub.Publish()
}

// Rows returns the current rows, recomputing first if an upstream has
// changed since the last call. The returned slice must not be modified.
func (l *Live[T]) Rows() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refreshLocked()
	return l.rows
}

// Get returns the row with the given identity.
func (l *Live[T]) Get(key string) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refreshLocked()
	i, ok := l.index[key]
	if !ok {
		var zero T
		return zero, false
	}
	return l.rows[i], true
}

func (l *Live[T]) refreshLocked() {
	if !l.stale {
		return
	}
	rows := Dedup(l.query.Run(), l.getKey)
	index := make(map[string]int, len(rows))
	for i, r := range rows {
		index[l.getKey(r)] = i
	}
	l.rows = rows
	l.index = index
	l.stale = false
	l.version++

	l.logger.Debug("view recomputed",
		"view", l.name,
		"rows", len(rows),
		"version", l.version,
	)
}

// Version counts recomputations. It is zero until the first Rows call.
func (l *Live[T]) Version() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.version
}

// Stale reports whether an upstream changed since the last recompute.
func (l *Live[T]) Stale() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stale
}

// OnInvalidate registers fn to run whenever the view becomes stale.
func (l *Live[T]) OnInvalidate(fn func()) signal.Subscription {
	return l.hub.Subscribe(fn)
}

// Close detaches the view from its upstreams and drops its observers.
// The last computed rows stay readable.
func (l *Live[T]) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	subs := l.subs
	l.subs = nil
	l.mu.Unlock()

	for _, s := range subs {
		s.Cancel()
	}
	l.hub.Clear()
}
