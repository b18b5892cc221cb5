package query

import (
	"slices"

	"github.com/roach88/arcade/internal/signal"
)

// Source is a readable collection that announces changes. Rows returns
// the current published rows; callers must not modify the slice.
type Source[T any] interface {
	Rows() []T
	OnInvalidate(fn func()) signal.Subscription
}

// Notifier is the invalidation half of a Source. It lets a query track
// upstreams of different row types.
type Notifier interface {
	OnInvalidate(fn func()) signal.Subscription
}

// Query is an immutable pipeline description. Each builder method
// returns a new Query; the receiver is left unchanged.
//
// Ordering and limit are held open until another operator needs the
// rows, so consecutive OrderBy calls chain into one stable sort.
type Query[T any] struct {
	upstreams []Notifier
	run       func() []T
	orders    []Compare[T]
	limit     int
}

// From starts a query reading every row of src.
func From[T any](src Source[T]) Query[T] {
	return Query[T]{upstreams: []Notifier{src}, run: src.Rows, limit: -1}
}

// Rows starts a query over a fixed slice. It never invalidates.
func Rows[T any](rows []T) Query[T] {
	return Query[T]{run: func() []T { return rows }, limit: -1}
}

// eval returns a function producing the final rows of q.
func (q Query[T]) eval() func() []T {
	run, orders, limit := q.run, q.orders, q.limit
	if len(orders) == 0 && limit < 0 {
		return run
	}
	return func() []T {
		return Limit(Sort(run(), orders...), limit)
	}
}

// seal folds pending ordering and limit into run.
func (q Query[T]) seal() Query[T] {
	return Query[T]{upstreams: q.upstreams, run: q.eval(), limit: -1}
}

// Where keeps rows for which keep is true. Applied after a Limit it
// filters the limited rows.
func (q Query[T]) Where(keep func(T) bool) Query[T] {
	s := q.seal()
	run := s.run
	s.run = func() []T { return Filter(run(), keep) }
	return s
}

// OrderBy adds a sort key. The first call is the primary key; each
// later call only breaks ties left by the earlier ones.
func (q Query[T]) OrderBy(c Compare[T]) Query[T] {
	if q.limit >= 0 {
		q = q.seal()
	}
	q.orders = append(slices.Clone(q.orders), c)
	return q
}

// Limit keeps the first n rows after sorting. A negative n removes no
// rows.
func (q Query[T]) Limit(n int) Query[T] {
	if q.limit >= 0 {
		q = q.seal()
	}
	if n < 0 {
		return q
	}
	q.limit = n
	return q
}

// Run evaluates the pipeline against the current upstream rows.
func (q Query[T]) Run() []T {
	return q.eval()()
}

// Select projects every row through fn. fn must be pure.
func Select[T, U any](q Query[T], fn func(T) U) Query[U] {
	run := q.eval()
	return Query[U]{
		upstreams: q.upstreams,
		run:       func() []U { return Map(run(), fn) },
		limit:     -1,
	}
}

// Join inner-joins two queries on equal keys.
func Join[L, R any, K comparable](left Query[L], right Query[R], leftKey func(L) K, rightKey func(R) K) Query[Joined[L, R]] {
	lrun, rrun := left.eval(), right.eval()
	return Query[Joined[L, R]]{
		upstreams: merge(left.upstreams, right.upstreams),
		run:       func() []Joined[L, R] { return InnerJoin(lrun(), rrun(), leftKey, rightKey) },
		limit:     -1,
	}
}

// LeftJoinQuery left-joins two queries on equal keys.
func LeftJoinQuery[L, R any, K comparable](left Query[L], right Query[R], leftKey func(L) K, rightKey func(R) K) Query[Joined[L, R]] {
	lrun, rrun := left.eval(), right.eval()
	return Query[Joined[L, R]]{
		upstreams: merge(left.upstreams, right.upstreams),
		run:       func() []Joined[L, R] { return LeftJoin(lrun(), rrun(), leftKey, rightKey) },
		limit:     -1,
	}
}

// Transform applies a whole-collection function. Use it for aggregations
// that are not expressible row by row; fn must be pure.
func Transform[T, U any](q Query[T], fn func([]T) []U) Query[U] {
	run := q.eval()
	return Query[U]{
		upstreams: q.upstreams,
		run:       func() []U { return fn(run()) },
		limit:     -1,
	}
}

// Combine feeds the rows of two queries to one function.
func Combine[A, B, U any](a Query[A], b Query[B], fn func([]A, []B) []U) Query[U] {
	arun, brun := a.eval(), b.eval()
	return Query[U]{
		upstreams: merge(a.upstreams, b.upstreams),
		run:       func() []U { return fn(arun(), brun()) },
		limit:     -1,
	}
}

// Derive builds a query from a function that reads upstreams directly.
// fn must be pure and read nothing but the listed upstreams, or the
// resulting view will miss invalidations.
func Derive[T any](fn func() []T, upstreams ...Notifier) Query[T] {
	return Query[T]{upstreams: slices.Clone(upstreams), run: fn, limit: -1}
}

// Fold evaluates q and reduces the rows to a scalar.
func Fold[T, A any](q Query[T], seed A, fn func(A, T) A) A {
	return Reduce(q.Run(), seed, fn)
}

func merge(a, b []Notifier) []Notifier {
	out := make([]Notifier, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
