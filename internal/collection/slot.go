package collection

import (
	"context"
	"errors"
	"sync"

	"github.com/roach88/arcade/internal/fingerprint"
	"github.com/roach88/arcade/internal/record"
	"github.com/roach88/arcade/internal/signal"
)

// ErrSuperseded is returned by a slot load whose key was replaced by a
// newer load before it resolved. Its result was dropped.
var ErrSuperseded = errors.New("collection: key superseded")

// SlotOption configures a Slot.
type SlotOption[T record.Keyed] func(*Slot[T])

// WithFingerprint replaces the membership fingerprint of a slot. Use it
// when rows can change content without changing identity.
func WithFingerprint[T record.Keyed](fn func([]T) uint64) SlotOption[T] {
	return func(s *Slot[T]) {
		s.fpFunc = fn
	}
}

// Slot is one named logical resource bound to its current key.
//
// Observers are notified when the published fingerprint changes or the
// slot enters StatusError. Rows stay at the last successful load while
// a later load is pending or has failed.
type Slot[T record.Keyed] struct {
	name   string
	store  *Store
	fpFunc func([]T) uint64
	hub    *signal.Hub

	mu        sync.RWMutex
	key       Key // requested
	published Key // backing the current rows
	rows      []T
	fp        uint64
	status    Status
	err       error
}

// NewSlot creates an idle slot backed by store.
func NewSlot[T record.Keyed](store *Store, name string, opts ...SlotOption[T]) *Slot[T] {
	s := &Slot[T]{
		name:   name,
		store:  store,
		fpFunc: fingerprint.Records[T],
		hub:    signal.NewHub(),
		fp:     fingerprint.Empty,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the slot name.
func (s *Slot[T]) Name() string {
	return s.name
}

// Load switches the slot to key, reusing cached rows when the key is
// already ready.
func (s *Slot[T]) Load(ctx context.Context, key Key, loader func(context.Context) ([]T, error)) error {
	return s.load(ctx, key, loader, Load[T])
}

// Refresh switches the slot to key and always refetches.
func (s *Slot[T]) Refresh(ctx context.Context, key Key, loader func(context.Context) ([]T, error)) error {
	return s.load(ctx, key, loader, Fetch[T])
}

type getter[T any] func(context.Context, *Store, Key, func(context.Context) ([]T, error)) ([]T, error)

func (s *Slot[T]) load(ctx context.Context, key Key, loader func(context.Context) ([]T, error), get getter[T]) error {
	s.mu.Lock()
	s.key = key
	s.status = StatusLoading
	s.mu.Unlock()

	rows, err := get(ctx, s.store, key, loader)

	s.mu.Lock()
	if s.key != key {
		orphan := key != s.published
		s.mu.Unlock()
		if orphan {
			s.store.Evict(key)
		}
		return ErrSuperseded
	}
	if err != nil {
		s.status = StatusError
		s.err = err
		s.mu.Unlock()
		s.hub.Publish()
		return err
	}

	fp := s.fpFunc(rows)
	changed := fp != s.fp || s.published == ""
	prev := s.published
	s.rows = rows
	s.fp = fp
	s.published = key
	s.status = StatusReady
	s.err = nil
	s.mu.Unlock()

	if prev != "" && prev != key {
		s.store.Evict(prev)
	}
	if changed {
		s.hub.Publish()
	}
	return nil
}

// Rows returns the rows of the last successful load.
func (s *Slot[T]) Rows() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rows
}

// Key returns the key backing the current rows.
func (s *Slot[T]) Key() Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.published
}

// Fingerprint returns the fingerprint of the current rows. Dependent
// collections embed it in their keys.
func (s *Slot[T]) Fingerprint() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fp
}

// Status returns the slot state.
func (s *Slot[T]) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Err returns the error of the last load when Status is StatusError.
func (s *Slot[T]) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// OnInvalidate registers fn to run when the slot publishes.
func (s *Slot[T]) OnInvalidate(fn func()) signal.Subscription {
	return s.hub.Subscribe(fn)
}
