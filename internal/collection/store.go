package collection

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/roach88/arcade/internal/record"
)

// ErrClosed is returned by loads on a closed store.
var ErrClosed = errors.New("collection: store closed")

// entry is immutable once stored; state changes replace the pointer.
type entry struct {
	status Status
	rows   any
	err    error
}

// Store is the keyed cache. Construct with NewStore and release with
// Close; a zero Store is not usable.
type Store struct {
	mu      sync.RWMutex
	entries map[Key]*entry
	closed  bool
	group   singleflight.Group
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		entries: make(map[Key]*entry),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Status returns the state of key.
func (s *Store) Status(key Key) Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entries[key]; ok {
		return e.status
	}
	return StatusIdle
}

// Err returns the error of the last failed fetch for key, if the entry
// is in StatusError.
func (s *Store) Err(key Key) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entries[key]; ok {
		return e.err
	}
	return nil
}

// Keys returns every cached key in sorted order.
func (s *Store) Keys() []Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]Key, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Evict drops key. A fetch still in flight for it completes for its
// waiters but its result is not stored.
func (s *Store) Evict(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; ok {
		delete(s.entries, key)
		s.logger.Debug("collection evicted", "key", key)
	}
}

// Close drops every entry. Later loads fail with ErrClosed.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = make(map[Key]*entry)
}

// Peek returns the rows last published under key, whatever its status.
func Peek[T any](s *Store, key Key) ([]T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok || e.rows == nil {
		return nil, false
	}
	rows, ok := e.rows.([]T)
	return rows, ok
}

// Load returns the ready rows of key, fetching them with loader when the
// key is absent or failed.
func Load[T any](ctx context.Context, s *Store, key Key, loader func(context.Context) ([]T, error)) ([]T, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if ok && e.status == StatusReady {
		if rows, ok := e.rows.([]T); ok {
			return rows, nil
		}
	}
	return Fetch(ctx, s, key, loader)
}

// Fetch always runs loader for key, sharing an in-flight fetch with any
// concurrent caller of the same key. On success the result replaces the
// entry wholesale.
//
// The shared fetch does not inherit the caller's cancellation: a caller
// whose ctx ends stops waiting, the fetch continues for the others.
func Fetch[T any](ctx context.Context, s *Store, key Key, loader func(context.Context) ([]T, error)) ([]T, error) {
	ch := s.group.DoChan(string(key), func() (any, error) {
		return fetch(context.WithoutCancel(ctx), s, key, loader)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]T), nil
	}
}

func fetch[T any](ctx context.Context, s *Store, key Key, loader func(context.Context) ([]T, error)) ([]T, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	loading := &entry{status: StatusLoading}
	if prev, ok := s.entries[key]; ok {
		loading.rows = prev.rows
	}
	s.entries[key] = loading
	s.mu.Unlock()

	s.logger.Debug("collection fetch started", "key", key)
	rows, err := loader(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.entries[key] == loading

	if err != nil {
		ferr := record.NewFetchError(string(key), err)
		if current {
			s.entries[key] = &entry{status: StatusError, rows: loading.rows, err: ferr}
		}
		s.logger.Warn("collection fetch failed", "key", key, "error", err)
		return nil, ferr
	}

	if rows == nil {
		rows = []T{}
	}
	if current {
		s.entries[key] = &entry{status: StatusReady, rows: rows}
	} else {
		s.logger.Debug("collection fetch result discarded", "key", key)
	}
	s.logger.Debug("collection fetch finished", "key", key, "rows", len(rows))
	return rows, nil
}
