package query

import (
	"slices"
	"sync"

	"github.com/roach88/arcade/internal/signal"
)

// Table is an in-memory Source whose rows are replaced wholesale.
type Table[T any] struct {
	mu   sync.RWMutex
	rows []T
	hub  *signal.Hub
}

// NewTable creates a table holding a copy of rows.
func NewTable[T any](rows ...T) *Table[T] {
	return &Table[T]{rows: slices.Clone(rows), hub: signal.NewHub()}
}

// Rows returns the current rows.
func (t *Table[T]) Rows() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rows
}

// Set replaces the rows and notifies observers.
func (t *Table[T]) Set(rows ...T) {
	t.mu.Lock()
	t.rows = slices.Clone(rows)
	t.mu.Unlock()
	t.hub.Publish()
}

// OnInvalidate registers fn to run after every Set.
func (t *Table[T]) OnInvalidate(fn func()) signal.Subscription {
	return t.hub.Subscribe(fn)
}
